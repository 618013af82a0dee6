package store

import (
	"context"
	"fmt"
	"time"

	"goldpawn/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// LinkIdentity returns the user behind an SSO subject, creating both on first sign-in.
func (s *Store) LinkIdentity(ctx context.Context, provider models.SSOProviderName, subject, username string) (*models.User, error) {
	const op = "LinkIdentity"

	db := s.db.WithContext(ctx)
	ssoProvider := models.SsoProvider{Name: provider}
	if result := db.Where(&ssoProvider).FirstOrCreate(&ssoProvider); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to find sso provider %s, err=%w", op, provider, result.Error)
	}

	identity := models.UserIdentity{
		SsoProviderID: ssoProvider.ID,
		Identity:      subject,
	}
	result := db.Preload("User").Where(&identity).First(&identity)
	if result.Error != nil && !notFound(result.Error) {
		return nil, fmt.Errorf("[%s] Fail to get user identity, err=%w", op, result.Error)
	}
	if result.Error != nil {
		identity.User = &models.User{Username: username}
		if result := db.Create(&identity); result.Error != nil {
			return nil, fmt.Errorf("[%s] Fail to create user identity, err=%w", op, result.Error)
		}
	}
	return identity.User, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "GetUser"

	var user models.User
	if result := s.db.WithContext(ctx).Where("id = ?", id).Take(&user); result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, fmt.Errorf("[%s] Fail to get user, err=%w", op, result.Error)
	}
	return &user, nil
}

// EnsureProfile creates the profile on first sign-in and refreshes the email afterwards.
func (s *Store) EnsureProfile(ctx context.Context, profile *models.Profile) error {
	const op = "EnsureProfile"

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "updated_at"}),
	}).Create(profile)
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to upsert profile, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "GetProfile"

	var profile models.Profile
	if result := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&profile); result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, fmt.Errorf("[%s] Fail to get profile, err=%w", op, result.Error)
	}
	return &profile, nil
}

// ProfileUpdate carries the editable profile fields; nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	Phone       *string
	Address     *string
	AvatarURL   *string
}

func (s *Store) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) error {
	const op = "UpdateProfile"

	updates := map[string]any{"updated_at": time.Now()}
	if update.DisplayName != nil {
		updates["display_name"] = *update.DisplayName
	}
	if update.Phone != nil {
		updates["phone"] = *update.Phone
	}
	if update.Address != nil {
		updates["address"] = *update.Address
	}
	if update.AvatarURL != nil {
		updates["avatar_url"] = *update.AvatarURL
	}
	result := s.db.WithContext(ctx).Model(&models.Profile{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update profile, err=%w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		profile := models.Profile{UserID: userID}
		if update.DisplayName != nil {
			profile.DisplayName = *update.DisplayName
		}
		if update.Phone != nil {
			profile.Phone = *update.Phone
		}
		if update.Address != nil {
			profile.Address = *update.Address
		}
		if update.AvatarURL != nil {
			profile.AvatarURL = *update.AvatarURL
		}
		if result := s.db.WithContext(ctx).Create(&profile); result.Error != nil {
			return fmt.Errorf("[%s] Fail to create profile, err=%w", op, result.Error)
		}
	}
	return nil
}
