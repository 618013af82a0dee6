package api

import (
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldpawn/api/token"
	"goldpawn/lifecycle"
)

func newTestIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return token.NewIssuer(key, "goldpawn", "goldpawn", time.Hour)
}

func newAuthRouter(issuer *token.Issuer, admins AdminConfig) *gin.Engine {
	router := gin.New()
	router.Use(Authenticate(issuer, admins))
	router.GET("/whoami", func(c *gin.Context) {
		actor, ok := actorFrom(c)
		c.JSON(http.StatusOK, gin.H{"signed_in": ok, "user_id": actor.UserID, "admin": actor.Admin})
	})
	router.GET("/user", RequireUser(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return router
}

func TestAuthenticate(t *testing.T) {
	issuer := newTestIssuer(t)
	admins := AdminConfig{Emails: []string{"boss@goldpawn.test"}}
	router := newAuthRouter(issuer, admins)

	userID := uuid.New()
	userToken, err := issuer.Issue(userID, "alice", "alice@goldpawn.test")
	require.NoError(t, err)
	adminToken, err := issuer.Issue(uuid.New(), "boss", "Boss@goldpawn.test")
	require.NoError(t, err)
	foreignToken, err := newTestIssuer(t).Issue(userID, "alice", "alice@goldpawn.test")
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		setup     func(*http.Request)
		wantCode  int
		wantAdmin bool
	}{
		{
			name:     "anonymous may reach public routes",
			path:     "/whoami",
			setup:    func(*http.Request) {},
			wantCode: http.StatusOK,
		},
		{
			name:     "anonymous is rejected on user routes",
			path:     "/user",
			setup:    func(*http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "cookie token",
			path: "/user",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: userToken})
			},
			wantCode: http.StatusNoContent,
		},
		{
			name: "bearer token",
			path: "/user",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+userToken)
			},
			wantCode: http.StatusNoContent,
		},
		{
			name: "token signed by another key is ignored",
			path: "/user",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+foreignToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "user is not an admin",
			path: "/admin",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+userToken)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "allowlisted email is an admin",
			path: "/admin",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: adminToken})
			},
			wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestActorFrom(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := actorFrom(c)
	assert.False(t, ok)
	assert.Nil(t, optionalActor(c))
	assert.Nil(t, viewerID(c))

	actor := lifecycle.Actor{UserID: uuid.New(), Username: "alice"}
	c.Set(contextKeyActor, actor)

	got, ok := actorFrom(c)
	assert.True(t, ok)
	assert.Equal(t, actor, got)
	require.NotNil(t, viewerID(c))
	assert.Equal(t, actor.UserID, *viewerID(c))
}
