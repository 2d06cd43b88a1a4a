package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"
	"food-network-backend/internal/services/servicestest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newUserFixture() (*UserService, *servicestest.Users, *servicestest.Blobs) {
	users := servicestest.NewUsers()
	blobs := &servicestest.Blobs{}
	svc := NewUserService(users, blobs, "test-secret", time.Hour)
	svc.hashCost = bcrypt.MinCost
	return svc, users, blobs
}

func registerAda(t *testing.T, svc *UserService) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "A@X.edu ",
		Password:  "password123",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterHashesAndNormalizes(t *testing.T) {
	svc, users, _ := newUserFixture()
	u := registerAda(t, svc)

	assert.Equal(t, "a@x.edu", u.Email)
	stored, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserFixture()
	registerAda(t, svc)

	_, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Other", LastName: "Ada", Email: "a@x.edu", Password: "password456",
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newUserFixture()
	cases := []RegisterRequest{
		{LastName: "L", Email: "a@x.edu", Password: "password123"},
		{FirstName: "F", Email: "a@x.edu", Password: "password123"},
		{FirstName: "F", LastName: "L", Email: "not-an-email", Password: "password123"},
		{FirstName: "F", LastName: "L", Email: "a@x.edu", Password: "short"},
	}
	for _, req := range cases {
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, apperr.ErrValidation, "%+v", req)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserFixture()
	u := registerAda(t, svc)

	res, err := svc.Authenticate(ctx, "a@x.edu", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.ID)
	assert.Equal(t, "Ada", res.FirstName)
	assert.Equal(t, "Lovelace", res.LastName)

	userID, err := svc.ValidateJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserFixture()
	registerAda(t, svc)

	_, wrongPassword := svc.Authenticate(ctx, "a@x.edu", "password999")
	_, unknownEmail := svc.Authenticate(ctx, "nobody@x.edu", "password123")

	require.ErrorIs(t, wrongPassword, apperr.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, apperr.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestValidateJWTRejectsForeignSecret(t *testing.T) {
	svc, _, _ := newUserFixture()
	other := NewUserService(servicestest.NewUsers(), nil, "other-secret", time.Hour)

	token, err := other.GenerateJWT("u1")
	require.NoError(t, err)
	_, err = svc.ValidateJWT(token)
	assert.Error(t, err)
}

func TestUploadProfilePictureReplacesOld(t *testing.T) {
	ctx := context.Background()
	svc, users, blobs := newUserFixture()
	u := registerAda(t, svc)

	first, err := svc.UploadProfilePicture(ctx, u.ID, "", pngHeader)
	require.NoError(t, err)
	require.NotNil(t, first.ProfilePic)
	require.Len(t, blobs.Puts(), 1)
	assert.True(t, strings.HasPrefix(blobs.Puts()[0], "profile-pictures/"+u.ID+"-"))
	assert.True(t, strings.HasSuffix(blobs.Puts()[0], ".png"))

	second, err := svc.UploadProfilePicture(ctx, u.ID, "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(*second.ProfilePic, ".jpg"))
	assert.Equal(t, []string{*first.ProfilePic}, blobs.Deleted())

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ProfilePic, stored.ProfilePic)
}

func TestUploadProfilePictureRejectsNonImage(t *testing.T) {
	svc, _, blobs := newUserFixture()
	u := registerAda(t, svc)

	_, err := svc.UploadProfilePicture(context.Background(), u.ID, "", []byte("just some text"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.UploadProfilePicture(context.Background(), u.ID, "image/png", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, blobs.Puts())
}

func TestDeleteProfilePicture(t *testing.T) {
	ctx := context.Background()
	svc, _, blobs := newUserFixture()
	u := registerAda(t, svc)

	up, err := svc.UploadProfilePicture(ctx, u.ID, "image/png", pngHeader)
	require.NoError(t, err)

	cleared, err := svc.DeleteProfilePicture(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.ProfilePic)
	assert.Equal(t, []string{*up.ProfilePic}, blobs.Deleted())

	again, err := svc.DeleteProfilePicture(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, again.ProfilePic)
	assert.Len(t, blobs.Deleted(), 1)
}

func TestUpdateProfileAndPushToken(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newUserFixture()
	u := registerAda(t, svc)

	_, err := svc.UpdateProfile(ctx, u.ID, models.ProfileUpdate{FirstName: ptr(" ")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	updated, err := svc.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Bio: ptr("likes soup")})
	require.NoError(t, err)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "likes soup", *updated.Bio)
	assert.Equal(t, "Ada", updated.FirstName)

	require.NoError(t, svc.UpdatePushToken(ctx, u.ID, "device-1"))
	stored, _ := users.GetByID(ctx, u.ID)
	require.NotNil(t, stored.PushToken)
	assert.Equal(t, "device-1", *stored.PushToken)

	require.NoError(t, svc.UpdatePushToken(ctx, u.ID, ""))
	stored, _ = users.GetByID(ctx, u.ID)
	assert.Nil(t, stored.PushToken)
}
