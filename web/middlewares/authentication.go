package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trackai.dev/trackai/security"
	"trackai.dev/trackai/web/common"
)

const (
	identityKey = "identity"
	userIDKey   = "userID"
)

type ctxKey int

const userIDCtxKey ctxKey = iota

func WithUserID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, id)
}

// UserIDFromContext returns the authenticated user id, or 0 outside an
// authenticated request.
func UserIDFromContext(ctx context.Context) uint {
	if id, ok := ctx.Value(userIDCtxKey).(uint); ok {
		return id
	}
	return 0
}

// Authentication checks for a valid Bearer token (or the application
// cookie) and puts the parsed identity into the request context.
func Authentication(base64Secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Try to get from cookie
			cookie, err := c.Cookie("trackai.ApplicationCookie")
			if err != nil {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = parts[1]
		}

		claims, err := security.ParseIdentityToken(tokenStr, base64Secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(identityKey, claims)
		c.Set(userIDKey, uint(claims.Identity.ID))

		// Also thread the user id through the request context so non-HTTP
		// layers (the per-user token manager) can see it.
		ctx := WithUserID(c.Request.Context(), uint(claims.Identity.ID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CurrentUserID returns the authenticated user id set by Authentication.
func CurrentUserID(c *gin.Context) uint {
	if id, ok := c.Get(userIDKey); ok {
		if uid, ok := id.(uint); ok {
			return uid
		}
	}
	return 0
}

// CurrentIdentity returns the full parsed claims, or nil outside the
// protected group.
func CurrentIdentity(c *gin.Context) *security.IdentityClaims {
	if v, ok := c.Get(identityKey); ok {
		if claims, ok := v.(*security.IdentityClaims); ok {
			return claims
		}
	}
	return nil
}
