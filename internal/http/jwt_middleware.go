package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dataset-market/internal/domain"
	"dataset-market/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida access tokens y guarda los claims en el contexto.
func JWTAuthMiddleware(tokenSvc *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := tokenSvc.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// RequireRole exige que el access token tenga el rol indicado.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok || claims.Role != string(role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAuthClaims obtiene los claims del access token desde el contexto.
func GetAuthClaims(c *gin.Context) (service.AccessClaims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.AccessClaims{}, false
	}
	claims, ok := val.(service.AccessClaims)
	return claims, ok
}
