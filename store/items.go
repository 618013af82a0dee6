package store

import (
	"context"
	"fmt"
	"time"

	"goldpawn/lifecycle"
	"goldpawn/models"
	"goldpawn/submission"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetItem returns nil without error when the item does not exist.
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	const op = "GetItem"

	var item models.Item
	if result := s.db.WithContext(ctx).Where("id = ?", id).Take(&item); result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, fmt.Errorf("[%s] Fail to get item, err=%w", op, result.Error)
	}
	return &item, nil
}

// GetItemDetail loads an item with its request row.
func (s *Store) GetItemDetail(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	const op = "GetItemDetail"

	var item models.Item
	result := s.db.WithContext(ctx).
		Preload("SellRequest").
		Preload("PawnRequest").
		Where("id = ?", id).
		Take(&item)
	if result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, fmt.Errorf("[%s] Fail to get item, err=%w", op, result.Error)
	}
	return &item, nil
}

func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	const op = "CreateItem"

	if result := s.db.WithContext(ctx).Omit(clause.Associations).Create(item); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create item, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) SetItemImages(ctx context.Context, id uuid.UUID, primary string, rest []string) error {
	const op = "SetItemImages"

	result := s.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"image_url":  primary,
			"images":     models.ImageList(rest),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update item images, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) SetItemStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus, transactionID *uuid.UUID) error {
	const op = "SetItemStatus"

	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}
	if transactionID != nil {
		updates["transaction_id"] = *transactionID
	}
	result := s.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update item status, err=%w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	const op = "DeleteItem"

	if result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{}); result.Error != nil {
		return fmt.Errorf("[%s] Fail to delete item, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) CreateSellRequest(ctx context.Context, req *models.SellRequest) error {
	const op = "CreateSellRequest"

	if result := s.db.WithContext(ctx).Create(req); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create sell request, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) CreatePawnRequest(ctx context.Context, req *models.PawnRequest) error {
	const op = "CreatePawnRequest"

	if result := s.db.WithContext(ctx).Create(req); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create pawn request, err=%w", op, result.Error)
	}
	return nil
}

// DeleteRequestRow removes the sell or pawn request attached to an item.
func (s *Store) DeleteRequestRow(ctx context.Context, itemID uuid.UUID, kind models.ItemType) error {
	const op = "DeleteRequestRow"

	var model any
	switch kind {
	case models.ItemTypeSell:
		model = &models.SellRequest{}
	case models.ItemTypePawn:
		model = &models.PawnRequest{}
	default:
		return fmt.Errorf("[%s] Unknown item type %q", op, kind)
	}
	if result := s.db.WithContext(ctx).Where("item_id = ?", itemID).Delete(model); result.Error != nil {
		return fmt.Errorf("[%s] Fail to delete request row, err=%w", op, result.Error)
	}
	return nil
}

// UpdateRequestContact rewrites the contact fields on the request row of an item.
func (s *Store) UpdateRequestContact(ctx context.Context, itemID uuid.UUID, kind models.ItemType, contact submission.Contact) error {
	const op = "UpdateRequestContact"

	var model any
	switch kind {
	case models.ItemTypeSell:
		model = &models.SellRequest{}
	case models.ItemTypePawn:
		model = &models.PawnRequest{}
	default:
		return fmt.Errorf("[%s] Unknown item type %q", op, kind)
	}
	result := s.db.WithContext(ctx).Model(model).Where("item_id = ?", itemID).Updates(map[string]any{
		"full_name":      contact.FullName,
		"contact_number": contact.ContactNumber,
		"email":          contact.Email,
		"updated_at":     time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update contact, err=%w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}

// ListItemsByUser returns a user's items, newest first, with their request rows.
func (s *Store) ListItemsByUser(ctx context.Context, userID uuid.UUID) ([]models.Item, error) {
	const op = "ListItemsByUser"

	var items []models.Item
	result := s.db.WithContext(ctx).
		Preload("SellRequest").
		Preload("PawnRequest").
		Where("user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list items, err=%w", op, result.Error)
	}
	return items, nil
}

// ItemFilter narrows the admin console item query. Zero values mean no restriction.
type ItemFilter struct {
	Status     models.ItemStatus
	ItemType   models.ItemType
	From       *time.Time
	To         *time.Time
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	GoldOrigin string
	GoldColor  string
	Category   string
	Sort       string
	Desc       bool
}

var itemSortColumns = map[string]string{
	"date":   "created_at",
	"price":  "amount",
	"weight": "weight",
	"title":  "title",
}

func SortableItemColumn(key string) bool {
	_, ok := itemSortColumns[key]
	return ok
}

func (f ItemFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.ItemType != "" {
		db = db.Where("item_type = ?", f.ItemType)
	}
	if f.From != nil {
		db = db.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("created_at < ?", *f.To)
	}
	if f.MinPrice != nil {
		db = db.Where("amount >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("amount <= ?", *f.MaxPrice)
	}
	if f.GoldOrigin != "" {
		db = db.Where("gold_origin = ?", f.GoldOrigin)
	}
	if f.GoldColor != "" {
		db = db.Where("gold_color = ?", f.GoldColor)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}

	column, ok := itemSortColumns[f.Sort]
	if !ok {
		column = "created_at"
	}
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: f.Desc})
}

// ListItems runs one filtered query for the admin console. Paging is left to the caller.
func (s *Store) ListItems(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	const op = "ListItems"

	var items []models.Item
	if result := filter.apply(s.db.WithContext(ctx).Model(&models.Item{})).Find(&items); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list items, err=%w", op, result.Error)
	}
	return items, nil
}

// CountItemsByStatus counts every item per status, ignoring console filters.
func (s *Store) CountItemsByStatus(ctx context.Context) (map[models.ItemStatus]int64, error) {
	const op = "CountItemsByStatus"

	var rows []struct {
		Status models.ItemStatus
		Count  int64
	}
	result := s.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("status, count(*) AS count").
		Group("status").
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to count items, err=%w", op, result.Error)
	}

	counts := make(map[models.ItemStatus]int64, len(models.Statuses))
	for _, status := range models.Statuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
