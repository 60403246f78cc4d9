package middleware

import (
	"context"
	"strings"

	"hotspotportal/services"
	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextAccountID = "account_id"
	ContextRole      = "role"
	ContextClaims    = "claims"
)

type TokenParser interface {
	ParseToken(tokenString string) (*services.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) bool
}

// AuthMiddleware validates the bearer token and stores the account id, role
// and claims on the context. revoked may be nil.
func AuthMiddleware(tokens TokenParser, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.Unauthorized(c, "Missing or invalid token")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			utils.TokenUsage.WithLabelValues("access", "rejected").Inc()
			utils.Unauthorized(c, "Invalid token")
			return
		}

		if revoked != nil && revoked.IsRevoked(c.Request.Context(), claims.ID) {
			utils.TokenUsage.WithLabelValues("access", "revoked").Inc()
			utils.Unauthorized(c, "Token has been invalidated")
			return
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.Forbidden(c, "Insufficient permissions")
	}
}
