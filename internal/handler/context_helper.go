package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/courshub/courshub-api/internal/middleware"
	"github.com/courshub/courshub-api/internal/models"
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

func principalFromContext(c *gin.Context) models.Principal {
	value, exists := c.Get(middleware.ContextPrincipalKey)
	if !exists {
		return models.Principal{}
	}
	principal, ok := value.(models.Principal)
	if !ok {
		return models.Principal{}
	}
	return principal
}
