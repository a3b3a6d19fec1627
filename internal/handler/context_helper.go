package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/notsogambhir/obe-portal-api/internal/middleware"
	"github.com/notsogambhir/obe-portal-api/internal/models"
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

func scopeFromContext(c *gin.Context) models.Scope {
	return models.ScopeFromClaims(claimsFromContext(c))
}
