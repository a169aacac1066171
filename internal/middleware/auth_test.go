package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/ukydev/carbvium/internal/auth"
	"github.com/ukydev/carbvium/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockRevocations is a mock implementation of TokenRevocations
type MockRevocations struct {
	mock.Mock
}

func (m *MockRevocations) RevokeToken(ctx context.Context, token models.RevokedToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService := auth.NewService("secret", time.Hour, nil, nil)
	middleware := NewAuthMiddleware(authService)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "test@example.com",
		Username: "testuser",
	}

	// Test successful authentication
	t.Run("valid token", func(t *testing.T) {
		token, _, _ := authService.GenerateToken(user)

		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			claims, ok := GetUserFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, user.Username, claims.Username)
			assert.Equal(t, user.ID.Hex(), claims.UserID)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	// Test missing authorization header
	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authorization header required")
	})

	// Test invalid token
	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		token, _, _ := authService.GenerateToken(user)
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()

		middleware.Authenticate(http.NotFoundHandler()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	revocations := new(MockRevocations)
	authService := auth.NewService("secret", time.Hour, nil, revocations)
	middleware := NewAuthMiddleware(authService)

	token, _, _ := authService.GenerateToken(&models.User{ID: primitive.NewObjectID()})
	revocations.On("IsRevoked", mock.Anything, mock.Anything).Return(true, nil)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handlerCalled := false
	middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})).ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	revocations.AssertExpectations(t)
}

func TestAuthMiddleware_Identify(t *testing.T) {
	authService := auth.NewService("secret", time.Hour, nil, nil)
	middleware := NewAuthMiddleware(authService)
	user := &models.User{ID: primitive.NewObjectID(), Username: "testuser"}
	token, _, _ := authService.GenerateToken(user)

	tests := []struct {
		name       string
		header     string
		expectUser bool
	}{
		{"anonymous", "", false},
		{"bad token", "Bearer nope", false},
		{"valid token", "Bearer " + token, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/vehicles", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handlerCalled := false
			middleware.Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				_, ok := GetUserFromContext(r.Context())
				assert.Equal(t, tt.expectUser, ok)
			})).ServeHTTP(w, req)

			assert.True(t, handlerCalled)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestAuthMiddleware_IdentifyChecksRevocation(t *testing.T) {
	tests := []struct {
		name       string
		revoked    bool
		err        error
		expectUser bool
	}{
		{"active session", false, nil, true},
		{"logged out token", true, nil, false},
		{"revocation store down", false, errors.New("db down"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revocations := new(MockRevocations)
			revocations.On("IsRevoked", mock.Anything, mock.Anything).Return(tt.revoked, tt.err)
			authService := auth.NewService("secret", time.Hour, nil, revocations)
			token, _, err := authService.GenerateToken(&models.User{ID: primitive.NewObjectID(), Username: "testuser"})
			assert.NoError(t, err)

			req := httptest.NewRequest("GET", "/api/vehicles", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			handlerCalled := false
			NewAuthMiddleware(authService).Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				_, ok := GetUserFromContext(r.Context())
				assert.Equal(t, tt.expectUser, ok)
			})).ServeHTTP(w, req)

			assert.True(t, handlerCalled)
			assert.Equal(t, http.StatusOK, w.Code)
			revocations.AssertExpectations(t)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware()

	t.Run("rate limit not exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		rateLimitHandler := middleware.RateLimit(5, 60)(handler)
		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "192.168.1.2:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		rateLimitHandler := middleware.RateLimit(1, 60)(handler)

		// First request should succeed
		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)

		// Second request should be rate limited
		w = httptest.NewRecorder()
		handlerCalled = false
		rateLimitHandler.ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("window slides", func(t *testing.T) {
		limiter := NewRateLimitMiddleware()
		now := time.Unix(1_700_000_000, 0)
		limiter.now = func() time.Time { return now }

		handler := limiter.RateLimit(1, 60)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "192.168.1.3:12345"

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		now = now.Add(61 * time.Second)
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("idle clients are dropped", func(t *testing.T) {
		limiter := NewRateLimitMiddleware()
		now := time.Unix(1_700_000_000, 0)
		limiter.now = func() time.Time { return now }

		handler := limiter.RateLimit(5, 60)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		for i := 0; i < 20; i++ {
			req := httptest.NewRequest("GET", "/api/test", nil)
			req.RemoteAddr = fmt.Sprintf("10.1.0.%d:4000", i)
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}
		assert.Len(t, limiter.requests, 20)

		now = now.Add(61 * time.Second)
		req := httptest.NewRequest("GET", "/api/test", nil)
		req.RemoteAddr = "10.2.0.1:4000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, limiter.requests, 1)
		assert.Contains(t, limiter.requests, "10.2.0.1")
	})
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", getClientIP(req))
}

func TestGetUserFromContext(t *testing.T) {
	claims := &models.Claims{
		UserID:   "test-id",
		Username: "testuser",
	}

	ctx := context.WithValue(context.Background(), UserContextKey, claims)

	retrievedClaims, ok := GetUserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims.UserID, retrievedClaims.UserID)
	assert.Equal(t, claims.Username, retrievedClaims.Username)

	// Test with no user in context
	_, ok = GetUserFromContext(context.Background())
	assert.False(t, ok)
}
