package handlers

import (
	"context"
	"time"

	"medialeader/middleware"
	"medialeader/models"

	"github.com/gin-gonic/gin"
)

const dbTimeout = 10 * time.Second

// dbContext bounds every store operation the way each handler needs.
func dbContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

// currentUser returns the user the auth guard attached to the request.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(middleware.CurrentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// All responses use the `{status, data|message}` envelope.

func respondSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{
		"status": "success",
		"data":   data,
	})
}

func respondMessage(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":  "success",
		"message": message,
	})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":  "error",
		"message": message,
	})
}
