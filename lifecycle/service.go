package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"goldpawn/models"
	"goldpawn/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service applies lifecycle actions to stored items.
type Service struct {
	store    Store
	blobs    BlobRemover
	events   EventSink
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithBlobRemover(blobs BlobRemover) ServiceOption {
	return func(s *Service) {
		s.blobs = blobs
	}
}

func WithEventSink(events EventSink) ServiceOption {
	return func(s *Service) {
		s.events = events
	}
}

func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		validate: validation.New(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("caller", "lifecycle.Service"))
	return s
}

// Approve moves a pending or rejected item to approved.
func (s *Service) Approve(ctx context.Context, actor Actor, itemID uuid.UUID) (*models.Item, error) {
	return s.setStatus(ctx, "Approve", actor, itemID, ActionApprove)
}

// Reject moves a pending item to rejected.
func (s *Service) Reject(ctx context.Context, actor Actor, itemID uuid.UUID) (*models.Item, error) {
	return s.setStatus(ctx, "Reject", actor, itemID, ActionReject)
}

// MarkSold closes an approved sell item. The requested amount stays as submitted.
func (s *Service) MarkSold(ctx context.Context, actor Actor, itemID uuid.UUID) (*models.Item, error) {
	return s.setStatus(ctx, "MarkSold", actor, itemID, ActionMarkSold)
}

// MarkPawned records the loan for an approved pawn item and marks it pawned.
// The transaction insert and the item update commit together.
func (s *Service) MarkPawned(ctx context.Context, actor Actor, itemID uuid.UUID, form TransactionForm) (*models.Item, *models.PawnTransaction, error) {
	const op = "MarkPawned"

	item, err := s.load(ctx, op, itemID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(actor, item, ActionMarkPawned); err != nil {
		return nil, nil, err
	}
	next, err := Next(item.ItemType, item.Status, ActionMarkPawned)
	if err != nil {
		return nil, nil, err
	}
	maturity, due, err := form.check(s.validate)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	record := form.toTransaction(item, actor, maturity, due, now)
	err = s.store.Transaction(ctx, func(tx Store) error {
		if err := tx.CreatePawnTransaction(ctx, record); err != nil {
			return fmt.Errorf("[%s] Fail to create pawn transaction, err=%w", op, err)
		}
		if err := tx.SetItemStatus(ctx, item.ID, next, &record.ID); err != nil {
			return fmt.Errorf("[%s] Fail to update item status, err=%w", op, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	item.Status = next
	item.TransactionID = &record.ID
	item.UpdatedAt = now
	s.emit(ctx, actor, item, ActionMarkPawned)
	return item, record, nil
}

// Delete removes an item together with its request row.
// Stored images of reviewed items are removed first on a best-effort basis.
func (s *Service) Delete(ctx context.Context, actor Actor, itemID uuid.UUID) error {
	const op = "Delete"

	item, err := s.load(ctx, op, itemID)
	if err != nil {
		return err
	}
	if err := authorize(actor, item, ActionDelete); err != nil {
		return err
	}

	s.removeImages(ctx, item)

	err = s.store.Transaction(ctx, func(tx Store) error {
		if err := tx.DeleteRequestRow(ctx, item.ID, item.ItemType); err != nil {
			return fmt.Errorf("[%s] Fail to delete %s request, err=%w", op, item.ItemType, err)
		}
		if err := tx.DeleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("[%s] Fail to delete item, err=%w", op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	item.Status = ""
	s.emit(ctx, actor, item, ActionDelete)
	return nil
}

func (s *Service) setStatus(ctx context.Context, op string, actor Actor, itemID uuid.UUID, action Action) (*models.Item, error) {
	item, err := s.load(ctx, op, itemID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, item, action); err != nil {
		return nil, err
	}
	next, err := Next(item.ItemType, item.Status, action)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetItemStatus(ctx, item.ID, next, nil); err != nil {
		return nil, fmt.Errorf("[%s] Fail to update item status, err=%w", op, err)
	}

	item.Status = next
	item.UpdatedAt = s.now()
	s.emit(ctx, actor, item, action)
	return item, nil
}

func (s *Service) load(ctx context.Context, op string, itemID uuid.UUID) (*models.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to get item, err=%w", op, err)
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// removeImages only touches items that went through review; pending and rejected
// uploads are left to the storage lifecycle rules.
func (s *Service) removeImages(ctx context.Context, item *models.Item) {
	if s.blobs == nil {
		return
	}
	switch item.Status {
	case models.StatusApproved, models.StatusSold, models.StatusPawned:
	default:
		return
	}

	for _, url := range item.StoredImages() {
		if err := s.blobs.DeleteByURL(ctx, url); err != nil {
			s.logger.Warn("Fail to delete item image",
				slog.String("item_id", item.ID.String()),
				slog.String("url", url),
				slog.Any("error", err),
			)
		}
	}
}

func (s *Service) emit(ctx context.Context, actor Actor, item *models.Item, action Action) {
	if s.events == nil {
		return
	}
	event := ItemEvent{
		ItemID:   item.ID,
		ItemType: item.ItemType,
		Action:   action,
		Status:   item.Status,
		ActorID:  actor.UserID,
		At:       s.now(),
	}
	if err := s.events.PublishItemEvent(ctx, event); err != nil {
		s.logger.Warn("Fail to publish item event",
			slog.String("item_id", item.ID.String()),
			slog.String("action", string(action)),
			slog.Any("error", err),
		)
	}
}
