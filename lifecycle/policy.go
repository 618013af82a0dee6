package lifecycle

import (
	"fmt"

	"goldpawn/models"

	"github.com/google/uuid"
)

// Actor is the caller of a lifecycle operation. Admin is resolved from the allowlist per request.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Admin    bool
}

func (a Actor) Owns(item *models.Item) bool {
	return a.UserID != uuid.Nil && item.UserID == a.UserID
}

// authorize checks whether actor may apply action to item.
func authorize(actor Actor, item *models.Item, action Action) error {
	if actor.Admin {
		return nil
	}

	switch action {
	case ActionMarkSold:
		if actor.Owns(item) {
			return nil
		}
		return fmt.Errorf("%w: cannot %s another user's item", ErrForbidden, action)
	case ActionDelete:
		if !actor.Owns(item) {
			return fmt.Errorf("%w: cannot %s another user's item", ErrForbidden, action)
		}
		if item.Status != models.StatusPending {
			return fmt.Errorf("%w: only pending items can be deleted by their owner", ErrForbidden)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s requires an administrator", ErrForbidden, action)
	}
}

// CanView reports whether actor may read item details.
func CanView(actor Actor, item *models.Item) bool {
	return actor.Admin || actor.Owns(item)
}
