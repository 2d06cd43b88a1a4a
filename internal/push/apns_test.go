package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPNsNotifier_Send(t *testing.T) {
	var path, topic string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		topic = r.Header.Get("apns-topic")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("apns-id", "abc")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewAPNsNotifierFromClient(&apns2.Client{Host: srv.URL, HTTPClient: http.DefaultClient}, "edu.ucf.foodnetwork")

	err := n.Send(context.Background(), "device-1", "Jane Smith started following you", map[string]any{"follower_id": "u2"})
	require.NoError(t, err)

	assert.Equal(t, "/3/device/device-1", path)
	assert.Equal(t, "edu.ucf.foodnetwork", topic)
	assert.Equal(t, "u2", body["follower_id"])
	aps, ok := body["aps"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jane Smith started following you", aps["alert"])
}

func TestAPNsNotifier_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"reason":"BadDeviceToken"}`))
	}))
	defer srv.Close()

	n := NewAPNsNotifierFromClient(&apns2.Client{Host: srv.URL, HTTPClient: http.DefaultClient}, "topic")

	err := n.Send(context.Background(), "bad", "hi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BadDeviceToken")
}
