package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/univ-academics-api/internal/middleware"
	"github.com/noah-isme/univ-academics-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// canViewStudent reports whether the caller may read studentID's records.
// Students are limited to their own.
func canViewStudent(c *gin.Context, studentID string) bool {
	claims := claimsFromContext(c)
	if claims == nil {
		return false
	}
	if claims.Role == models.RoleStudent {
		return claims.UserID == studentID
	}
	return true
}

// pageParams reads page and page_size, accepting limit as an alias of page_size.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	raw := c.Query("page_size")
	if raw == "" {
		raw = c.DefaultQuery("limit", "20")
	}
	size, _ := strconv.Atoi(raw)
	return models.NormalizePage(page, size)
}
