package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tirs/dashboard/internal/middleware"
	"github.com/tirs/dashboard/internal/models"
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

// authContextFromGin lowers the verified claims into the explicit principal
// context the services require. Returns false when no claims are attached,
// which means the JWT middleware did not run on this route.
func authContextFromGin(c *gin.Context) (models.AuthContext, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.AuthContext{}, false
	}
	return models.AuthContextFromClaims(claims), true
}
