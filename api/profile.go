package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"goldpawn/adapters/s3"
	"goldpawn/models"
	"goldpawn/store"
	"goldpawn/validation"
)

type ProfileForm struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	Address     *string `json:"address" validate:"omitempty,max=1000"`
}

// GetProfile returns the caller's profile, empty when none was saved yet.
// (GET /api/profile)
func (impl *ServerImpl) GetProfile(c *gin.Context) {
	const op = "GetProfile"
	actor, _ := actorFrom(c)

	profile, err := impl.store.GetProfile(c, actor.UserID)
	if err != nil {
		fail(c, op, err)
		return
	}
	if profile == nil {
		profile = &models.Profile{UserID: actor.UserID, DisplayName: actor.Username, Email: actor.Email}
	}
	respond(c, http.StatusOK, "", profile)
}

// PatchProfile updates the fields present in the body.
// (PATCH /api/profile)
func (impl *ServerImpl) PatchProfile(c *gin.Context) {
	const op = "PatchProfile"
	actor, _ := actorFrom(c)

	var form ProfileForm
	if !bindJSON(c, &form) {
		return
	}
	for _, field := range []*string{form.DisplayName, form.Phone, form.Address} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
	if err := validation.Check(impl.validate, form); err != nil {
		fail(c, op, err)
		return
	}

	update := store.ProfileUpdate{
		DisplayName: form.DisplayName,
		Phone:       form.Phone,
		Address:     form.Address,
	}
	if err := impl.store.UpdateProfile(c, actor.UserID, update); err != nil {
		fail(c, op, err)
		return
	}
	impl.GetProfile(c)
}

// PostProfileAvatar replaces the avatar. The previous one is removed on a best-effort basis.
// (POST /api/profile/avatar)
func (impl *ServerImpl) PostProfileAvatar(c *gin.Context) {
	const op = "PostProfileAvatar"
	actor, _ := actorFrom(c)

	previous, err := impl.store.GetProfile(c, actor.UserID)
	if err != nil {
		fail(c, op, err)
		return
	}
	url, err := impl.uploadBody(c, actor.UserID, "avatars")
	if err != nil {
		fail(c, op, err)
		return
	}
	if err := impl.store.UpdateProfile(c, actor.UserID, store.ProfileUpdate{AvatarURL: &url}); err != nil {
		fail(c, op, err)
		return
	}

	if previous != nil && previous.AvatarURL != "" && previous.AvatarURL != url {
		// avatars from the sign-in provider are not ours to delete
		if err := impl.s3Operator.DeleteByURL(c, previous.AvatarURL); err != nil && !errors.Is(err, s3.ErrForeignURL) {
			slog.Warn("Fail to delete previous avatar", slog.String("url", previous.AvatarURL), slog.Any("error", err))
		}
	}
	respond(c, http.StatusOK, "Avatar updated", gin.H{"avatar_url": url})
}
