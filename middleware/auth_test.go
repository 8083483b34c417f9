package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"medialeader/config"
	"medialeader/models"
	"medialeader/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func guardTestSetup(t *testing.T, finder UserFinder) (*gin.Engine, *services.TokenService) {
	t.Helper()

	tokens := services.NewTokenService(&config.Config{JWT: config.JWTConfig{Secret: "test-secret"}})

	router := gin.New()
	router.GET("/protected", Auth(tokens, finder), func(c *gin.Context) {
		user := c.MustGet(CurrentUserKey).(*models.User)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	return router, tokens
}

func staticFinder(user *models.User) UserFinder {
	return func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
		if user != nil && user.ID == id {
			return user, nil
		}
		return nil, errors.New("not found")
	}
}

func TestAuthGuard(t *testing.T) {
	user := &models.User{
		ID:              primitive.NewObjectID(),
		Email:           "reporter@example.com",
		Role:            models.RoleJournalist,
		IsEmailVerified: true,
	}

	router, tokens := guardTestSetup(t, staticFinder(user))
	validToken, err := tokens.GenerateSessionToken(user)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + validToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAuthGuardRejectsUnknownUser(t *testing.T) {
	user := &models.User{
		ID:              primitive.NewObjectID(),
		Email:           "gone@example.com",
		Role:            models.RoleUser,
		IsEmailVerified: true,
	}

	// Finder knows nobody: simulates a deleted account with a live token.
	router, tokens := guardTestSetup(t, staticFinder(nil))
	token, err := tokens.GenerateSessionToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthGuardRejectsUnverifiedUser(t *testing.T) {
	user := &models.User{
		ID:              primitive.NewObjectID(),
		Email:           "pending@example.com",
		Role:            models.RoleUser,
		IsEmailVerified: false,
	}

	router, tokens := guardTestSetup(t, staticFinder(user))
	token, err := tokens.GenerateSessionToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthGuardRejectsStaleToken(t *testing.T) {
	id := primitive.NewObjectID()

	tokenUser := &models.User{
		ID: id, Email: "reporter@example.com",
		Role: models.RoleUser, IsEmailVerified: true,
	}
	// Stored record promoted to journalist after the token was issued.
	storedUser := &models.User{
		ID: id, Email: "reporter@example.com",
		Role: models.RoleJournalist, IsEmailVerified: true,
	}

	router, tokens := guardTestSetup(t, staticFinder(storedUser))
	token, err := tokens.GenerateSessionToken(tokenUser)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
