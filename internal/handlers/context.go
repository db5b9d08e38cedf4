package handlers

import (
	"github.com/alx-polly/backend/internal/entity"
	"github.com/alx-polly/backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

func userIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}

func profileFromContext(c *gin.Context) (entity.Profile, bool) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return entity.Profile{}, false
	}
	email, _ := c.Get(middleware.UserEmailKey)
	emailStr, _ := email.(string)
	return entity.Profile{ID: userID, Email: emailStr}, true
}
