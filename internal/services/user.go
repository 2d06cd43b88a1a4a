package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"food-network-backend/internal/apperr"
	"food-network-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const profilePicturePrefix = "profile-pictures"

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
	SetProfilePic(ctx context.Context, id string, url *string) error
	UpdatePushToken(ctx context.Context, id string, pushToken *string) error
	AppendMeal(ctx context.Context, userID, mealID string) error
	RemoveMeal(ctx context.Context, userID, mealID string) error
}

// BlobStore stores uploaded files and returns stable URLs for them
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// UserService handles user-related business logic
type UserService struct {
	users     UserStore
	blobs     BlobStore
	jwtSecret string
	jwtTTL    time.Duration
	hashCost  int
	now       func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users UserStore, blobs BlobStore, jwtSecret string, jwtTTL time.Duration) *UserService {
	return &UserService{
		users:     users,
		blobs:     blobs,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		hashCost:  bcrypt.DefaultCost,
		now:       time.Now,
	}
}

// RegisterRequest represents a registration
type RegisterRequest struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Bio        *string `json:"bio"`
	ProfilePic *string `json:"profile_pic"`
}

// LoginResponse is returned by Authenticate
type LoginResponse struct {
	models.UserSummary
	Token string `json:"token"`
}

// Register creates a user. A taken email fails with apperr.ErrDuplicateEmail.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := requireText("first_name", req.FirstName); err != nil {
		return nil, err
	}
	if err := requireText("last_name", req.LastName); err != nil {
		return nil, err
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, apperr.Invalid("password", "must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		PasswordHash: string(hash),
		ProfilePic:   req.ProfilePic,
		Bio:          req.Bio,
		CreatedAt:    s.now(),
		Meals:        []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// dummyHash keeps unknown-email logins as slow as wrong-password logins
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// Authenticate checks an email/password pair. Unknown emails and wrong passwords both
// return apperr.ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{
		UserSummary: models.UserSummary{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
		Token: token,
	}, nil
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.jwtTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if err := validateID("user_id", id); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// ListUsers retrieves every user
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// UpdateProfile replaces the provided profile fields
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	if upd.FirstName != nil {
		if err := requireText("first_name", *upd.FirstName); err != nil {
			return nil, err
		}
	}
	if upd.LastName != nil {
		if err := requireText("last_name", *upd.LastName); err != nil {
			return nil, err
		}
	}
	return s.users.UpdateProfile(ctx, id, upd)
}

// UpdatePushToken registers or, with an empty token, clears the user's device token
func (s *UserService) UpdatePushToken(ctx context.Context, id, token string) error {
	var ptr *string
	if token = strings.TrimSpace(token); token != "" {
		ptr = &token
	}
	return s.users.UpdatePushToken(ctx, id, ptr)
}

// UploadProfilePicture stores an image and points the user's profile at it. The previous
// picture is removed on a best-effort basis.
func (s *UserService) UploadProfilePicture(ctx context.Context, userID, contentType string, data []byte) (*models.User, error) {
	if len(data) == 0 {
		return nil, apperr.Invalid("file", "is required")
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	ext, err := imageExtension(contentType)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s-%d%s", profilePicturePrefix, userID, s.now().UnixNano(), ext)
	url, err := s.blobs.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store profile picture: %w", err)
	}

	if err := s.users.SetProfilePic(ctx, userID, &url); err != nil {
		return nil, err
	}

	if user.ProfilePic != nil {
		s.deleteBlob(ctx, userID, *user.ProfilePic)
	}
	user.ProfilePic = &url
	return user, nil
}

// DeleteProfilePicture clears the user's picture and removes the stored object
func (s *UserService) DeleteProfilePicture(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ProfilePic == nil {
		return user, nil
	}

	if err := s.users.SetProfilePic(ctx, userID, nil); err != nil {
		return nil, err
	}
	s.deleteBlob(ctx, userID, *user.ProfilePic)
	user.ProfilePic = nil
	return user, nil
}

func (s *UserService) deleteBlob(ctx context.Context, userID, url string) {
	if err := s.blobs.Delete(ctx, url); err != nil {
		log.Warn().
			Err(err).
			Str("user_id", userID).
			Str("url", url).
			Msg("Failed to delete old profile picture")
	}
}

func imageExtension(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", apperr.Invalid("file", "must be an image")
	}
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return exts[0], nil
	}
	return "." + strings.TrimPrefix(mediaType, "image/"), nil
}
