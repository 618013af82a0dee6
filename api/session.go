package api

import (
	"goldpawn/adapters/redis"
	"goldpawn/adapters/session"

	"github.com/gin-gonic/gin"
)

const (
	SESSION_KEY_REQUEST_STATE = "request_state"
	SESSION_KEY_REQUEST_NONCE = "request_nonce"
	SESSION_KEY_REDIRECT_URL  = "redirect_url"
	SESSION_KEY_THEME         = "theme"
)

func (impl *ServerImpl) SessionMiddleware() gin.HandlerFunc {
	store := redis.NewStore(
		impl.redisClient,
		redis.WithStorePrefix(impl.config.Redis.KeyPrefix+"session:"),
		redis.WithStoreTTL(impl.config.Session.CookieMaxAge),
	)
	return session.GinMiddleware(
		store,
		session.WithSessionKeyForCookie(impl.config.Session.KeyForCookie),
		session.WithCookieMaxAge(impl.config.Session.CookieMaxAge),
		session.WithCookieSecure(impl.config.Auth.CookieSecure),
	)
}
