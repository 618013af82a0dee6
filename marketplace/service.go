// Package marketplace runs the public listings page: browsing, likes, comments and inquiries.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"goldpawn/lifecycle"
	"goldpawn/models"
	"goldpawn/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrCommentNotFound = errors.New("comment not found")
)

type ListingForm struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description" validate:"max=5000"`
	Category    string          `json:"category" validate:"required,max=64"`
	Purity      string          `json:"purity" validate:"max=32"`
	GoldColor   string          `json:"gold_color" validate:"max=64"`
	Weight      decimal.Decimal `json:"weight" validate:"gt=0"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	Images      []string        `json:"images" validate:"max=3,dive,url"`
}

type CommentForm struct {
	Body string `json:"body" validate:"required,max=2000"`
}

type InquiryForm struct {
	Name          string `json:"name" validate:"max=255"`
	ContactNumber string `json:"contact_number" validate:"required,max=32"`
	Message       string `json:"message" validate:"required,max=2000"`
}

type Service struct {
	store    Store
	blobs    lifecycle.BlobRemover
	validate *validator.Validate
	// comments and inquiries are plain text
	strict *bluemonday.Policy
	// listing descriptions keep basic formatting
	ugc    *bluemonday.Policy
	logger *slog.Logger
}

type ServiceOption func(*Service)

func WithBlobRemover(blobs lifecycle.BlobRemover) ServiceOption {
	return func(s *Service) {
		s.blobs = blobs
	}
}

func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		validate: validation.New(),
		strict:   bluemonday.StrictPolicy(),
		ugc:      bluemonday.UGCPolicy(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("caller", "marketplace.Service"))
	return s
}

func (s *Service) List(ctx context.Context, q ListingQuery) ([]models.Listing, error) {
	const op = "List"

	listings, err := s.store.ListListings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list listings, err=%w", op, err)
	}
	return listings, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Listing, error) {
	const op = "Get"

	listing, err := s.store.GetListing(ctx, id, viewer)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to get listing, err=%w", op, err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// Publish puts a new piece on the listings page. Admin only.
func (s *Service) Publish(ctx context.Context, actor lifecycle.Actor, form ListingForm) (*models.Listing, error) {
	const op = "Publish"

	if !actor.Admin {
		return nil, fmt.Errorf("%w: publishing listings requires an administrator", lifecycle.ErrForbidden)
	}
	if err := validation.Check(s.validate, form); err != nil {
		return nil, err
	}

	listing := &models.Listing{
		CreatedBy:   actor.UserID,
		Title:       strings.TrimSpace(form.Title),
		Description: s.ugc.Sanitize(form.Description),
		Category:    form.Category,
		Purity:      form.Purity,
		GoldColor:   form.GoldColor,
		Weight:      form.Weight,
		Price:       form.Price,
		ImageURL:    form.ImageURL,
		Images:      models.ImageList(form.Images),
	}
	if listing.ImageURL == "" && len(listing.Images) > 0 {
		listing.ImageURL, listing.Images = listing.Images[0], listing.Images[1:]
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("[%s] Fail to create listing, err=%w", op, err)
	}
	return listing, nil
}

// Remove deletes a listing and, best effort, its stored images. Admin only.
func (s *Service) Remove(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) error {
	const op = "Remove"

	if !actor.Admin {
		return fmt.Errorf("%w: removing listings requires an administrator", lifecycle.ErrForbidden)
	}
	listing, err := s.Get(ctx, id, nil)
	if err != nil {
		return err
	}
	if err := s.store.DeleteListing(ctx, id); err != nil {
		return fmt.Errorf("[%s] Fail to delete listing, err=%w", op, err)
	}

	if s.blobs == nil || listing.ImageURL == "" {
		return nil
	}
	for _, url := range append([]string{listing.ImageURL}, listing.Images...) {
		if err := s.blobs.DeleteByURL(ctx, url); err != nil {
			s.logger.Warn("Fail to delete listing image", slog.String("listing_id", id.String()), slog.String("url", url), slog.Any("error", err))
		}
	}
	return nil
}

// ToggleLike flips the caller's like and returns the new state with the new total.
func (s *Service) ToggleLike(ctx context.Context, actor lifecycle.Actor, listingID uuid.UUID) (bool, int64, error) {
	const op = "ToggleLike"

	if _, err := s.Get(ctx, listingID, nil); err != nil {
		return false, 0, err
	}

	liked, err := s.store.HasLike(ctx, listingID, actor.UserID)
	if err != nil {
		return false, 0, fmt.Errorf("[%s] Fail to read like, err=%w", op, err)
	}
	if liked {
		err = s.store.RemoveLike(ctx, listingID, actor.UserID)
	} else {
		err = s.store.AddLike(ctx, listingID, actor.UserID)
	}
	if err != nil {
		return false, 0, fmt.Errorf("[%s] Fail to toggle like, err=%w", op, err)
	}

	count, err := s.store.CountLikes(ctx, listingID)
	if err != nil {
		return false, 0, fmt.Errorf("[%s] Fail to count likes, err=%w", op, err)
	}
	return !liked, count, nil
}

func (s *Service) Comments(ctx context.Context, listingID uuid.UUID) ([]models.ListingComment, error) {
	const op = "Comments"

	if _, err := s.Get(ctx, listingID, nil); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list comments, err=%w", op, err)
	}
	return comments, nil
}

func (s *Service) AddComment(ctx context.Context, actor lifecycle.Actor, listingID uuid.UUID, form CommentForm) (*models.ListingComment, error) {
	const op = "AddComment"

	body, err := s.cleanComment(form)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, listingID, nil); err != nil {
		return nil, err
	}

	author := actor.Username
	if author == "" {
		author = actor.Email
	}
	comment := &models.ListingComment{
		ListingID:  listingID,
		UserID:     actor.UserID,
		AuthorName: author,
		Body:       body,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("[%s] Fail to create comment, err=%w", op, err)
	}
	return comment, nil
}

// EditComment rewrites a comment body. Only the author or an admin may edit.
func (s *Service) EditComment(ctx context.Context, actor lifecycle.Actor, commentID uuid.UUID, form CommentForm) (*models.ListingComment, error) {
	const op = "EditComment"

	body, err := s.cleanComment(form)
	if err != nil {
		return nil, err
	}
	comment, err := s.ownedComment(ctx, op, actor, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateCommentBody(ctx, commentID, body); err != nil {
		return nil, fmt.Errorf("[%s] Fail to update comment, err=%w", op, err)
	}
	comment.Body = body
	return comment, nil
}

// DeleteComment removes a comment. Only the author or an admin may delete.
func (s *Service) DeleteComment(ctx context.Context, actor lifecycle.Actor, commentID uuid.UUID) error {
	const op = "DeleteComment"

	if _, err := s.ownedComment(ctx, op, actor, commentID); err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("[%s] Fail to delete comment, err=%w", op, err)
	}
	return nil
}

// Inquire records a buyer's question about a listing. The caller may be anonymous.
func (s *Service) Inquire(ctx context.Context, actor *lifecycle.Actor, listingID uuid.UUID, form InquiryForm) (*models.ListingInquiry, error) {
	const op = "Inquire"

	form.Name = strings.TrimSpace(s.strict.Sanitize(form.Name))
	form.ContactNumber = strings.TrimSpace(form.ContactNumber)
	form.Message = strings.TrimSpace(s.strict.Sanitize(form.Message))
	if err := validation.Check(s.validate, form); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, listingID, nil); err != nil {
		return nil, err
	}

	inquiry := &models.ListingInquiry{
		ListingID:     listingID,
		Name:          form.Name,
		ContactNumber: form.ContactNumber,
		Message:       form.Message,
	}
	if actor != nil {
		inquiry.UserID = &actor.UserID
	}
	if err := s.store.CreateInquiry(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("[%s] Fail to create inquiry, err=%w", op, err)
	}
	return inquiry, nil
}

func (s *Service) cleanComment(form CommentForm) (string, error) {
	form.Body = strings.TrimSpace(s.strict.Sanitize(form.Body))
	if err := validation.Check(s.validate, form); err != nil {
		return "", err
	}
	return form.Body, nil
}

func (s *Service) ownedComment(ctx context.Context, op string, actor lifecycle.Actor, commentID uuid.UUID) (*models.ListingComment, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to get comment, err=%w", op, err)
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if !actor.Admin && comment.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: only the author can change this comment", lifecycle.ErrForbidden)
	}
	return comment, nil
}
