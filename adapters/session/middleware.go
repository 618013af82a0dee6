package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DefaultSessionKeyForContext = "goldpawn-session"
	DefaultSessionKeyForCookie  = "session"
)

var ErrSessionNotFound = errors.New("session not found")

type MiddlewareOptions struct {
	sessionKeyForCookie  string
	sessionKeyForContext string
	cookieMaxAge         time.Duration
	cookiePath           string
	cookieDomain         string
	cookieSecure         bool
	cookieHTTPOnly       bool
	cookieSameSite       http.SameSite
}

type MiddlewareOption func(*MiddlewareOptions)

func WithSessionKeyForCookie(key string) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.sessionKeyForCookie = key
	}
}

func WithSessionKeyForContext(key string) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.sessionKeyForContext = key
	}
}

func WithCookieMaxAge(maxAge time.Duration) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.cookieMaxAge = maxAge
	}
}

func WithCookiePath(path string) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.cookiePath = path
	}
}

func WithCookieDomain(domain string) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.cookieDomain = domain
	}
}

// WithCookieSecure restricts the cookie to HTTPS. Disable it for local development only.
func WithCookieSecure(secure bool) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.cookieSecure = secure
	}
}

func WithCookieHTTPOnly(httpOnly bool) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.cookieHTTPOnly = httpOnly
	}
}

func WithCookieSameSite(sameSite http.SameSite) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.cookieSameSite = sameSite
	}
}

func defaultOptions() MiddlewareOptions {
	return MiddlewareOptions{
		sessionKeyForCookie:  DefaultSessionKeyForCookie,
		sessionKeyForContext: DefaultSessionKeyForContext,
		cookieMaxAge:         24 * time.Hour,
		cookiePath:           "/",
		cookieSecure:         true,
		cookieHTTPOnly:       true,
		cookieSameSite:       http.SameSiteLaxMode,
	}
}

// GinMiddleware attaches a session to every request, issuing a new id when the
// cookie is missing. The cookie is refreshed before the handler writes the response.
func GinMiddleware(store IStore, opts ...MiddlewareOption) gin.HandlerFunc {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return func(c *gin.Context) {
		sessionID, err := c.Cookie(options.sessionKeyForCookie)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.NewString()
		}

		c.SetSameSite(options.cookieSameSite)
		c.SetCookie(
			options.sessionKeyForCookie,
			sessionID,
			int(options.cookieMaxAge/time.Second),
			options.cookiePath,
			options.cookieDomain,
			options.cookieSecure,
			options.cookieHTTPOnly,
		)
		c.Set(options.sessionKeyForContext, NewSession(c.Request.Context(), sessionID, store))

		c.Next()
	}
}

// GetSession returns the loaded session stored in ctx by GinMiddleware.
func GetSession(ctx context.Context, opts ...MiddlewareOption) (ISession, error) {
	const op = "session.GetSession"
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	v := ctx.Value(options.sessionKeyForContext)
	if v == nil {
		return nil, ErrSessionNotFound
	}
	session, ok := v.(ISession)
	if !ok {
		return nil, fmt.Errorf("[%s] Fail to read session, invalid type %T in context", op, v)
	}
	if err := session.Load(); err != nil {
		return nil, fmt.Errorf("[%s] Fail to load session, err=%w", op, err)
	}
	return session, nil
}
