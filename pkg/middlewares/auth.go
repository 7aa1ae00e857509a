package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/auth"
)

// Authenticate resolves the bearer token into a typed auth.Identity and puts
// it on the context. Missing or unknown tokens abort with 401; handlers
// behind this middleware can assume GetIdentity succeeds.
func Authenticate(logger *zap.Logger, sessions auth.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithCode(c, pkg.ErrUnauthorizedCode)
			return
		}

		identity, err := sessions.Fetch(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrSessionNotFound) {
				logger.Error("session lookup failed", zap.Error(err))
			}
			abortWithCode(c, pkg.ErrUnauthorizedCode)
			return
		}

		c.Set(pkg.Identity, identity)
		c.Next()
	}
}

// RequireRole gates a route group on the authenticated role. Must be mounted
// after Authenticate.
func RequireRole(role pkg.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			abortWithCode(c, pkg.ErrUnauthorizedCode)
			return
		}
		if identity.Role != role {
			abortWithCode(c, pkg.ErrForbiddenCode)
			return
		}
		c.Next()
	}
}

// InternalToken guards operational endpoints (the cron-triggered NAV refresh)
// with a static shared secret.
func InternalToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || c.Request.Header.Get(pkg.HeaderInternalToken) != token {
			abortWithCode(c, pkg.ErrForbiddenCode)
			return
		}
		c.Next()
	}
}

// GetIdentity returns the authenticated identity set by Authenticate.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(pkg.Identity)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

func bearerToken(c *gin.Context) string {
	header := c.Request.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func abortWithCode(c *gin.Context, code pkg.ErrorCode) {
	c.AbortWithStatusJSON(code.Status, pkg.ErrorResponse{
		Status:  code.Status,
		Code:    code.Code,
		Message: code.Message,
	})
}
