package api

import (
	"log/slog"
	"net/http"
	"strings"

	"goldpawn/api/token"
	"goldpawn/lifecycle"

	"github.com/gin-gonic/gin"
)

const (
	CookieAccessToken = "access_token"

	contextKeyActor = "goldpawn-actor"
)

// Authenticate resolves the caller from the access token cookie or a bearer
// header. Requests without a valid token continue anonymously.
func Authenticate(issuer *token.Issuer, admins AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}
		claims, err := issuer.Parse(raw)
		if err != nil {
			slog.Debug("Ignore invalid access token", slog.String("path", c.FullPath()), slog.Any("error", err))
			c.Next()
			return
		}
		userID, _ := claims.UserID()
		c.Set(contextKeyActor, lifecycle.Actor{
			UserID:   userID,
			Username: claims.Username,
			Email:    claims.Email,
			Admin:    admins.IsAdmin(claims.Email),
		})
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
	}
	if cookie, err := c.Cookie(CookieAccessToken); err == nil {
		return cookie
	}
	return ""
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := actorFrom(c); !ok {
			reject(c, http.StatusUnauthorized, "Please sign in first")
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers outside the admin allowlist with 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			reject(c, http.StatusUnauthorized, "Please sign in first")
			return
		}
		if !actor.Admin {
			reject(c, http.StatusForbidden, "Administrator access required")
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) (lifecycle.Actor, bool) {
	v, ok := c.Get(contextKeyActor)
	if !ok {
		return lifecycle.Actor{}, false
	}
	actor, ok := v.(lifecycle.Actor)
	return actor, ok
}

// optionalActor returns nil for anonymous callers.
func optionalActor(c *gin.Context) *lifecycle.Actor {
	actor, ok := actorFrom(c)
	if !ok {
		return nil
	}
	return &actor
}
