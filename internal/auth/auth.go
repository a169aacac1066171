package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carbvium/internal/db"
	"github.com/ukydev/carbvium/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrRevokedToken       = errors.New("token revoked")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user is inactive")
	ErrEmailTaken         = errors.New("email already registered")
)

// ValidationError reports a rejected signup field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Session is the result of a successful login
type Session struct {
	User         models.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Service handles account creation, login and token checks
type Service struct {
	jwtSecret   []byte
	tokenExp    time.Duration
	users       db.UserCollection
	revocations db.TokenRevocations
	now         func() time.Time
}

// NewService creates a new authentication service. users and revocations
// may be nil when only token operations are needed.
func NewService(secret string, tokenExp time.Duration, users db.UserCollection, revocations db.TokenRevocations) *Service {
	if secret == "" {
		secret = "default-secret-key-change-in-production"
	}
	if tokenExp <= 0 {
		tokenExp = 24 * time.Hour
	}

	return &Service{
		jwtSecret:   []byte(secret),
		tokenExp:    tokenExp,
		users:       users,
		revocations: revocations,
		now:         time.Now,
	}
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash
func (s *Service) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken generates a JWT access token for a user
func (s *Service) GenerateToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.tokenExp)
	claims := jwt.MapClaims{
		"user_id":  user.ID.Hex(),
		"email":    user.Email,
		"username": user.Username,
		"jti":      uuid.NewString(),
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// GenerateRefreshToken generates a refresh token
func (s *Service) GenerateRefreshToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	// Remove "Bearer " prefix if present
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// Extract claims
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	tokenID, ok := claims["jti"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	username, _ := claims["username"].(string)

	return &models.Claims{
		UserID:   userID,
		Email:    email,
		Username: username,
		TokenID:  tokenID,
		Exp:      int64(exp),
	}, nil
}

// ValidateSession validates the token and checks it has not been logged out
func (s *Service) ValidateSession(ctx context.Context, tokenString string) (*models.Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if s.revocations == nil {
		return claims, nil
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// ExtractTokenFromHeader extracts token from Authorization header
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}

// ValidatePassword validates password strength
func (s *Service) ValidatePassword(password string) error {
	if len(password) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters long"}
	}
	return nil
}

// ValidateEmail validates email format
func (s *Service) ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, ".") {
		return &ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateUsername validates username format
func (s *Service) ValidateUsername(username string) error {
	if len(username) < 3 {
		return &ValidationError{Field: "username", Message: "username must be at least 3 characters long"}
	}
	if len(username) > 50 {
		return &ValidationError{Field: "username", Message: "username must be less than 50 characters"}
	}
	return nil
}

// CreateAccount registers a new user and returns its id
func (s *Service) CreateAccount(ctx context.Context, email, password, username string) (string, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)

	if err := s.ValidateEmail(email); err != nil {
		return "", err
	}
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}
	if err := s.ValidateUsername(username); err != nil {
		return "", err
	}

	_, err := s.users.FindUserByEmail(ctx, email)
	if err == nil {
		return "", ErrEmailTaken
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return "", err
	}

	now := s.now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicateUser) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	log.WithFields(log.Fields{"user_id": user.ID.Hex(), "username": username}).Info("Created account")
	return user.ID.Hex(), nil
}

// Authenticate verifies credentials and issues a session
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, exp, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	// a stale last-login timestamp is not worth failing the login over
	if err := s.users.UpdateLastLogin(ctx, user.ID.Hex()); err != nil {
		log.WithError(err).WithField("user_id", user.ID.Hex()).Warn("Failed to update last login")
	}

	return &Session{
		User:         *user,
		AccessToken:  token,
		RefreshToken: refreshToken,
		ExpiresAt:    exp,
	}, nil
}

// Logout revokes an access token until it expires
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.ValidateSession(ctx, accessToken)
	if err != nil {
		return err
	}
	if s.revocations == nil {
		return nil
	}

	return s.revocations.RevokeToken(ctx, models.RevokedToken{
		TokenID:   claims.TokenID,
		UserID:    claims.UserID,
		ExpiresAt: time.Unix(claims.Exp, 0),
		RevokedAt: s.now(),
	})
}

// Profile loads the user behind a set of claims
func (s *Service) Profile(ctx context.Context, claims *models.Claims) (*models.User, error) {
	return s.users.FindUserByID(ctx, claims.UserID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
