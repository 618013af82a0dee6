package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"goldpawn/adapters/session"
	"goldpawn/validation"
)

const defaultTheme = "light"

type ThemeForm struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// GetPreferencesTheme
// (GET /api/preferences/theme)
func (impl *ServerImpl) GetPreferencesTheme(c *gin.Context) {
	const op = "GetPreferencesTheme"

	sess, err := session.GetSession(c)
	if err != nil {
		fail(c, op, err)
		return
	}
	theme := sess.Get(SESSION_KEY_THEME)
	if theme == "" {
		theme = defaultTheme
	}
	respond(c, http.StatusOK, "", ThemeForm{Theme: theme})
}

// PutPreferencesTheme stores the theme in the session.
// (PUT /api/preferences/theme)
func (impl *ServerImpl) PutPreferencesTheme(c *gin.Context) {
	const op = "PutPreferencesTheme"

	var form ThemeForm
	if !bindJSON(c, &form) {
		return
	}
	if err := validation.Check(impl.validate, form); err != nil {
		fail(c, op, err)
		return
	}
	sess, err := session.GetSession(c)
	if err != nil {
		fail(c, op, err)
		return
	}
	sess.Set(SESSION_KEY_THEME, form.Theme)
	if err := sess.Save(); err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "Theme saved", form)
}
