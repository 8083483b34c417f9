package middleware

import (
	"context"
	"net/http"
	"strings"

	"medialeader/models"
	"medialeader/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CurrentUserKey holds the resolved *models.User on authenticated
// requests.
const CurrentUserKey = "currentUser"

// UserFinder loads the user a token points at. The guard re-fetches on
// every request so revoked or stale accounts are rejected immediately.
type UserFinder func(ctx context.Context, id primitive.ObjectID) (*models.User, error)

func Auth(tokens *services.TokenService, findUser UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "No auth token provided")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := tokens.ParseSessionToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		user, err := findUser(c.Request.Context(), userID)
		if err != nil || !user.IsEmailVerified {
			abortUnauthorized(c, "User not found or not verified")
			return
		}

		// Stale-token detection: the token was issued before the
		// stored email or role changed.
		if user.Email != claims.Email || user.Role != claims.Role {
			abortUnauthorized(c, "Token invalid or expired")
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"message": message,
	})
	c.Abort()
}
