package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"food-network-backend/internal/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *S3Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:           "us-east-1",
		Credentials:      credentials.NewStaticCredentialsProvider("key", "secret", ""),
		BaseEndpoint:     aws.String(srv.URL),
		UsePathStyle:     true,
		RetryMaxAttempts: 1,
	})
	return NewS3StoreFromClient(client, "pics", "https://cdn.example.com/")
}

func TestS3Store_PutAndDelete(t *testing.T) {
	var gotMethod, gotPath, gotType string
	var gotBody []byte
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	url, err := store.Put(context.Background(), "profile-pictures/u1.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/profile-pictures/u1.png", url)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/pics/profile-pictures/u1.png", gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Contains(t, string(gotBody), "png-bytes")

	require.NoError(t, store.Delete(context.Background(), url))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/pics/profile-pictures/u1.png", gotPath)
}

func TestS3Store_DeleteIgnoresForeignURL(t *testing.T) {
	var calls int32
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	require.NoError(t, store.Delete(context.Background(), "https://images.unsplash.com/photo-1"))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestS3Store_BreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	})

	for i := 0; i < 3; i++ {
		_, err := store.Put(context.Background(), "k", "image/jpeg", []byte("x"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperr.ErrUnavailable)
	}

	_, err := store.Put(context.Background(), "k", "image/jpeg", []byte("x"))
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(S3Config{PublicBaseURL: "https://cdn.example.com"}))
	assert.Equal(t, "http://minio:9000/pics", publicBaseURL(S3Config{Endpoint: "http://minio:9000/", Bucket: "pics"}))
	assert.Equal(t, "https://pics.s3.eu-west-1.amazonaws.com", publicBaseURL(S3Config{Bucket: "pics", Region: "eu-west-1"}))
}
