package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/classfolio/record-api/internal/middleware"
	"github.com/classfolio/record-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.TeacherClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.TeacherClaims)
	if !ok {
		return nil
	}
	return claims
}
