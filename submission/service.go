// Package submission validates the sell and pawn wizards and stores new items.
package submission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"goldpawn/lifecycle"
	"goldpawn/models"
	"goldpawn/notify"
	"goldpawn/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// Store is the persistence a submission needs. GetItem returns (nil, nil) when missing.
type Store interface {
	CreateItem(ctx context.Context, item *models.Item) error
	SetItemImages(ctx context.Context, id uuid.UUID, primary string, rest []string) error
	CreateSellRequest(ctx context.Context, req *models.SellRequest) error
	CreatePawnRequest(ctx context.Context, req *models.PawnRequest) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	UpdateRequestContact(ctx context.Context, itemID uuid.UUID, kind models.ItemType, contact Contact) error
}

// Uploader stores one item photo and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, ownerID uuid.UUID, image ImageFile) (string, error)
}

// Publisher queues a notification for asynchronous delivery.
type Publisher interface {
	Publish(req notify.Request) error
}

type Service struct {
	store     Store
	uploader  Uploader
	publisher Publisher
	validate  *validator.Validate
	policy    *bluemonday.Policy
	logger    *slog.Logger
}

type ServiceOption func(*Service)

func WithPublisher(publisher Publisher) ServiceOption {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(store Store, uploader Uploader, opts ...ServiceOption) *Service {
	v := validation.New()
	v.RegisterStructValidation(validateAttributes, ItemAttributes{})

	s := &Service{
		store:    store,
		uploader: uploader,
		validate: v,
		policy:   bluemonday.UGCPolicy(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("caller", "submission.Service"))
	return s
}

// SubmitSell stores a new sell item with its photos and contact details.
func (s *Service) SubmitSell(ctx context.Context, owner lifecycle.Actor, form SellForm, images []ImageFile) (*models.Item, error) {
	const op = "SubmitSell"

	if err := s.check(form, images); err != nil {
		return nil, err
	}

	item := s.newItem(owner, form.ItemAttributes, models.ItemTypeSell, form.Amount)
	if err := s.createWithImages(ctx, op, owner, item, images); err != nil {
		return nil, err
	}

	req := &models.SellRequest{
		ItemID:        item.ID,
		FullName:      strings.TrimSpace(form.FullName),
		ContactNumber: strings.TrimSpace(form.ContactNumber),
		Email:         strings.TrimSpace(form.Email),
	}
	if err := s.store.CreateSellRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("[%s] Fail to create sell request, err=%w", op, err)
	}
	item.SellRequest = req

	s.announce(item, form.Contact, fmt.Sprintf("Sell request for %s %s %s (%s g), asking %s.",
		item.Purity, item.GoldColor, item.Category, item.Weight.String(), item.Amount.StringFixed(2)))
	return item, nil
}

// SubmitPawn stores a new pawn item with its photos and meeting proposal.
func (s *Service) SubmitPawn(ctx context.Context, owner lifecycle.Actor, form PawnForm, images []ImageFile) (*models.Item, error) {
	const op = "SubmitPawn"

	if err := s.check(form, images); err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(form.MeetingDates))
	for _, raw := range form.MeetingDates {
		// Format already checked by the datetime rule.
		d, _ := time.Parse(lifecycle.DateLayout, raw)
		dates = append(dates, d)
	}

	item := s.newItem(owner, form.ItemAttributes, models.ItemTypePawn, form.PawnPrice)
	if err := s.createWithImages(ctx, op, owner, item, images); err != nil {
		return nil, err
	}

	req := &models.PawnRequest{
		ItemID:        item.ID,
		FullName:      strings.TrimSpace(form.FullName),
		ContactNumber: strings.TrimSpace(form.ContactNumber),
		Email:         strings.TrimSpace(form.Email),
		Address:       strings.TrimSpace(form.Address),
		MeetingPlace:  strings.TrimSpace(form.MeetingPlace),
		MeetingTime:   form.MeetingTime,
		PawnPrice:     form.PawnPrice,
	}
	slots := []**time.Time{&req.MeetingDate1, &req.MeetingDate2, &req.MeetingDate3}
	for i := range dates {
		*slots[i] = &dates[i]
	}
	if err := s.store.CreatePawnRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("[%s] Fail to create pawn request, err=%w", op, err)
	}
	item.PawnRequest = req

	s.announce(item, form.Contact, fmt.Sprintf("Pawn request for %s %s %s (%s g), asking %s. Proposed meeting at %s, %s.",
		item.Purity, item.GoldColor, item.Category, item.Weight.String(), item.Amount.StringFixed(2), req.MeetingPlace, req.MeetingTime))
	return item, nil
}

// UpdateContact rewrites the contact details on the owner's request row.
func (s *Service) UpdateContact(ctx context.Context, owner lifecycle.Actor, itemID uuid.UUID, contact Contact) error {
	const op = "UpdateContact"

	contact.FullName = strings.TrimSpace(contact.FullName)
	contact.ContactNumber = strings.TrimSpace(contact.ContactNumber)
	contact.Email = strings.TrimSpace(contact.Email)
	if err := validation.Check(s.validate, contact); err != nil {
		return err
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("[%s] Fail to get item, err=%w", op, err)
	}
	if item == nil {
		return lifecycle.ErrNotFound
	}
	if !owner.Owns(item) {
		return fmt.Errorf("%w: only the owner can edit contact details", lifecycle.ErrForbidden)
	}
	if err := s.store.UpdateRequestContact(ctx, itemID, item.ItemType, contact); err != nil {
		return fmt.Errorf("[%s] Fail to update contact, err=%w", op, err)
	}
	return nil
}

func (s *Service) check(form any, images []ImageFile) error {
	if err := validation.Check(s.validate, form); err != nil {
		return err
	}
	return checkImages(images)
}

func (s *Service) newItem(owner lifecycle.Actor, attrs ItemAttributes, kind models.ItemType, amount decimal.Decimal) *models.Item {
	return &models.Item{
		UserID:     owner.UserID,
		Title:      strings.TrimSpace(attrs.Title),
		Category:   strings.TrimSpace(attrs.Category),
		Purity:     strings.TrimSpace(attrs.Purity),
		GoldColor:  strings.TrimSpace(attrs.GoldColor),
		GoldOrigin: strings.TrimSpace(attrs.GoldOrigin),
		Weight:     attrs.Weight,
		Brand:      strings.TrimSpace(attrs.Brand),
		Details:    s.policy.Sanitize(strings.TrimSpace(attrs.Details)),
		Amount:     amount,
		ItemType:   kind,
		Status:     models.StatusPending,
		Images:     models.ImageList{},
	}
}

// createWithImages inserts the pending item, uploads the photos one by one and links them.
// The first photo that uploads becomes the primary image.
func (s *Service) createWithImages(ctx context.Context, op string, owner lifecycle.Actor, item *models.Item, images []ImageFile) error {
	if err := s.store.CreateItem(ctx, item); err != nil {
		return fmt.Errorf("[%s] Fail to create item, err=%w", op, err)
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := s.uploader.Upload(ctx, owner.UserID, img)
		if err != nil {
			s.logger.Warn("Fail to upload item image",
				slog.String("item_id", item.ID.String()),
				slog.String("file", img.Name),
				slog.Any("error", err),
			)
			continue
		}
		urls = append(urls, url)
	}
	if len(urls) == 0 {
		return fmt.Errorf("[%s] Fail to upload any image for item %s", op, item.ID)
	}

	if err := s.store.SetItemImages(ctx, item.ID, urls[0], urls[1:]); err != nil {
		return fmt.Errorf("[%s] Fail to link item images, err=%w", op, err)
	}
	item.ImageURL = urls[0]
	item.Images = models.ImageList(urls[1:])
	return nil
}

func (s *Service) announce(item *models.Item, contact Contact, message string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(notify.Request{
		Name:      contact.FullName,
		Email:     contact.Email,
		Phone:     contact.ContactNumber,
		Message:   message,
		ItemTitle: item.Title,
	})
	if err != nil {
		s.logger.Warn("Fail to queue new listing notification", slog.String("item_id", item.ID.String()), slog.Any("error", err))
	}
}
