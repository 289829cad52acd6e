package handlers

import (
	"sweetholic/internal/middleware"
	"sweetholic/internal/models"
	"sweetholic/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Error writes the uniform failure payload
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"message": message,
	})
}

// CurrentUser returns the session user resolved by middleware.LoadUser,
// or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(middleware.CheckUserKey); exists {
		return v.(*models.User)
	}
	return nil
}

// Pagination resolves limit/offset query params with defaults and caps.
// Every listing endpoint echoes the resolved values back.
func Pagination(c *gin.Context) (limit, offset int) {
	limit = defaultLimit
	if n := utils.StringToInt(c.Query("limit")); n > 0 {
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if n := utils.StringToInt(c.Query("offset")); n > 0 {
		offset = n
	}
	return limit, offset
}

// ParseID parses a numeric path param, 0 means invalid
func ParseID(c *gin.Context, name string) uint {
	id := utils.StringToInt(c.Param(name))
	if id <= 0 {
		return 0
	}
	return uint(id)
}
