package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/internal/auth"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/rs/zerolog/log"
)

const (
	HeaderAuthorization = "Authorization"
	claimsKey           = "authClaims"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader(HeaderAuthorization)
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing bearer token"})
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Token validation failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid or expired token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches the principal when a valid token is present and
// lets anonymous requests through.
func OptionalAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := tokens.Parse(token); err == nil {
				c.Set(claimsKey, claims)
			} else {
				log.Debug().Err(err).Msg("Ignoring invalid optional token")
			}
		}
		c.Next()
	}
}

// PrincipalID returns the authenticated user id, if any.
func PrincipalID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return 0, false
	}
	claims, ok := v.(*auth.Claims)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
