package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

const (
	tokenTTL          = 24 * time.Hour
	denylistKeyPrefix = "auth:denylist:"
)

// AuthService issues and validates bearer tokens and manages passwords.
// The redis client is optional; without it logout revocation is skipped.
type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret string
}

func NewAuthService(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		jwtSecret: jwtSecret,
	}
}

// Register creates a user with a hashed password. Email and username
// collisions surface as field-scoped validation errors.
func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) (*models.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &FieldError{Field: "email", Message: "a user with this email already exists"}
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &FieldError{Field: "username", Message: "a user with this username already exists"}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &FieldError{Field: "email", Message: "a user with this email or username already exists"}
		}
		return nil, err
	}
	return &user, nil
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.GenerateToken(&user)
}

// GenerateToken signs a token for the given user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses the token, checks the signature and expiry, and
// rejects tokens revoked by Logout.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	var claims types.TokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if s.redis != nil && claims.ID != "" {
		revoked, err := s.redis.Exists(context.Background(), denylistKeyPrefix+claims.ID).Result()
		if err == nil && revoked > 0 {
			return nil, errors.New("token has been revoked")
		}
	}
	return &claims, nil
}

// Logout denylists the token until its natural expiry so it can no
// longer authenticate. Without redis the call is a no-op.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return err
	}
	if s.redis == nil || claims.ID == "" {
		return nil
	}
	ttl := tokenTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, denylistKeyPrefix+claims.ID, "1", ttl).Err()
}

// SetPassword re-checks the current password and stores a new hash.
func (s *AuthService) SetPassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return &FieldError{Field: "current_password", Message: "the submitted and current passwords do not match"}
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
