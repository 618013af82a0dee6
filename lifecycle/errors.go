package lifecycle

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrKindMismatch      = errors.New("action does not apply to this item type")
	ErrForbidden         = errors.New("action not permitted")
	ErrNotFound          = errors.New("item not found")
)
