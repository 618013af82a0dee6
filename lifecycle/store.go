package lifecycle

import (
	"context"

	"goldpawn/models"

	"github.com/google/uuid"
)

// Store is the persistence the lifecycle needs.
// GetItem returns (nil, nil) when the item does not exist.
type Store interface {
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	// SetItemStatus writes status and touches updated_at. A non-nil transactionID is linked too.
	SetItemStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus, transactionID *uuid.UUID) error
	CreatePawnTransaction(ctx context.Context, tx *models.PawnTransaction) error
	DeleteRequestRow(ctx context.Context, itemID uuid.UUID, kind models.ItemType) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	// Transaction runs fn against a store bound to one database transaction.
	// Returning an error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
