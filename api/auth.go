package api

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"goldpawn/adapters/oidc"
	"goldpawn/adapters/session"
	"goldpawn/models"
)

// GetAuthSsoProviderLogin redirects to the provider's login page.
// (GET /api/auth/sso/:provider/login)
func (impl *ServerImpl) GetAuthSsoProviderLogin(c *gin.Context) {
	const op = "GetAuthLogin"
	provider, ok := impl.oidcProviders[models.SSOProviderName(c.Param("provider"))]
	if !ok {
		reject(c, http.StatusNotFound, "Unknown sign-in provider")
		return
	}

	state, err := generateID("st")
	if err != nil {
		fail(c, op, fmt.Errorf("[%s] Unable to generate state, err=%w", op, err))
		return
	}
	nonce, err := generateID("n")
	if err != nil {
		fail(c, op, fmt.Errorf("[%s] Unable to generate nonce, err=%w", op, err))
		return
	}

	sess, err := session.GetSession(c)
	if err != nil {
		fail(c, op, err)
		return
	}
	sess.Set(SESSION_KEY_REQUEST_STATE, state)
	sess.Set(SESSION_KEY_REQUEST_NONCE, nonce)
	sess.Set(SESSION_KEY_REDIRECT_URL, impl.safeRedirect(c.Query("redirect_url")))
	if err := sess.Save(); err != nil {
		fail(c, op, err)
		return
	}
	c.Redirect(http.StatusFound, provider.AuthURL(state, nonce))
}

// GetAuthSsoProviderCallback exchanges the authorization code and signs the user in.
// (GET /api/auth/sso/:provider/callback)
func (impl *ServerImpl) GetAuthSsoProviderCallback(c *gin.Context) {
	const op = "GetAuthCallback"
	providerName := models.SSOProviderName(c.Param("provider"))
	provider, ok := impl.oidcProviders[providerName]
	if !ok {
		reject(c, http.StatusNotFound, "Unknown sign-in provider")
		return
	}

	sess, err := session.GetSession(c)
	if err != nil {
		fail(c, op, err)
		return
	}
	verifier := oidc.NewExchangeVerifier(sess.Get(SESSION_KEY_REQUEST_STATE), sess.Get(SESSION_KEY_REQUEST_NONCE))
	redirectURL := sess.Get(SESSION_KEY_REDIRECT_URL)
	// state and nonce are single use
	sess.Delete(SESSION_KEY_REQUEST_STATE)
	sess.Delete(SESSION_KEY_REQUEST_NONCE)
	sess.Delete(SESSION_KEY_REDIRECT_URL)
	if err := sess.Save(); err != nil {
		fail(c, op, err)
		return
	}

	exchanged, err := provider.Exchange(c, verifier, c.Query("code"), c.Query("state"))
	if errors.Is(err, oidc.ErrStateMismatch) || errors.Is(err, oidc.ErrNonceMismatch) {
		reject(c, http.StatusBadRequest, "Sign-in request expired, please try again")
		return
	}
	if err != nil {
		fail(c, op, fmt.Errorf("[%s] Fail to exchange token, err=%w", op, err))
		return
	}

	claims := exchanged.IDToken
	// an unverified address must never reach the admin allowlist
	email := ""
	if claims.EmailVerified {
		email = claims.Email.Email
	}
	user, err := impl.identities.LinkIdentity(c, providerName, claims.Sub, claims.DisplayName())
	if err != nil {
		fail(c, op, err)
		return
	}
	profile := &models.Profile{
		UserID:      user.ID,
		DisplayName: claims.DisplayName(),
		Email:       email,
		AvatarURL:   claims.Picture,
	}
	if err := impl.identities.EnsureProfile(c, profile); err != nil {
		slog.Warn("Fail to upsert profile on sign-in", slog.String("user_id", user.ID.String()), slog.Any("error", err))
	}

	accessToken, err := impl.issuer.Issue(user.ID, user.Username, email)
	if err != nil {
		fail(c, op, err)
		return
	}
	impl.setAccessCookie(c, accessToken, impl.issuer.TTL())
	c.Redirect(http.StatusFound, impl.safeRedirect(redirectURL))
}

// GetAuthLogout only clears the cookie, the token itself stays valid until it expires.
// (GET /api/auth/logout)
func (impl *ServerImpl) GetAuthLogout(c *gin.Context) {
	impl.setAccessCookie(c, "", -time.Second)
	respond(c, http.StatusOK, "Signed out", nil)
}

// GetMe returns the signed-in user.
// (GET /api/me)
func (impl *ServerImpl) GetMe(c *gin.Context) {
	actor, _ := actorFrom(c)
	respond(c, http.StatusOK, "", gin.H{
		"id":       actor.UserID,
		"username": actor.Username,
		"email":    actor.Email,
		"is_admin": actor.Admin,
	})
}

func (impl *ServerImpl) setAccessCookie(c *gin.Context, value string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieAccessToken, value, int(maxAge/time.Second), "/", "", impl.config.Auth.CookieSecure, true)
}

// safeRedirect only allows local paths and URLs under the public origin.
func (impl *ServerImpl) safeRedirect(target string) string {
	if target == "" {
		return "/"
	}
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, "/\\") {
		return target
	}
	if base := strings.TrimSuffix(impl.config.PublicURL, "/"); base != "" && (target == base || strings.HasPrefix(target, base+"/")) {
		return target
	}
	return "/"
}

func generateID(prefix string) (string, error) {
	const op = "generateID"
	bytes := make([]byte, 20)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("[%s] Fail to generate unique id, err=%w", op, err)
	}
	return prefix + "_" + base64.URLEncoding.EncodeToString(bytes), nil
}
