package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"goldpawn/marketplace"
	"goldpawn/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const listingColumns = "listings.*, " +
	"(SELECT count(*) FROM listing_likes WHERE listing_likes.listing_id = listings.id) AS like_count, " +
	"(SELECT count(*) FROM listing_comments WHERE listing_comments.listing_id = listings.id) AS comment_count"

func selectListing(db *gorm.DB, viewer *uuid.UUID) *gorm.DB {
	if viewer == nil {
		return db.Select(listingColumns)
	}
	return db.Select(listingColumns+", EXISTS (SELECT 1 FROM listing_likes WHERE listing_likes.listing_id = listings.id AND listing_likes.user_id = ?) AS liked", *viewer)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) ListListings(ctx context.Context, q marketplace.ListingQuery) ([]models.Listing, error) {
	const op = "ListListings"

	query := selectListing(s.db.WithContext(ctx).Model(&models.Listing{}), q.Viewer)
	if search := strings.TrimSpace(q.Search); search != "" {
		query = query.Where("listings.title ILIKE ?", "%"+likeEscaper.Replace(search)+"%")
	}
	if q.Category != "" {
		query = query.Where("listings.category = ?", q.Category)
	}
	column := "created_at"
	if q.Sort == "price" {
		column = "price"
	}
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Table: "listings", Name: column}, Desc: q.Desc})
	if q.Limit > 0 {
		query = query.Limit(q.Limit).Offset(q.Offset)
	}

	var listings []models.Listing
	if result := query.Find(&listings); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list listings, err=%w", op, result.Error)
	}
	return listings, nil
}

func (s *Store) GetListing(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Listing, error) {
	const op = "GetListing"

	var listing models.Listing
	result := selectListing(s.db.WithContext(ctx).Model(&models.Listing{}), viewer).
		Where("listings.id = ?", id).
		Take(&listing)
	if result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, fmt.Errorf("[%s] Fail to get listing, err=%w", op, result.Error)
	}
	return &listing, nil
}

func (s *Store) CreateListing(ctx context.Context, listing *models.Listing) error {
	const op = "CreateListing"

	if result := s.db.WithContext(ctx).Create(listing); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create listing, err=%w", op, result.Error)
	}
	return nil
}

// DeleteListing removes a listing; likes, comments and inquiries cascade.
func (s *Store) DeleteListing(ctx context.Context, id uuid.UUID) error {
	const op = "DeleteListing"

	if result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Listing{}); result.Error != nil {
		return fmt.Errorf("[%s] Fail to delete listing, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) HasLike(ctx context.Context, listingID, userID uuid.UUID) (bool, error) {
	const op = "HasLike"

	var count int64
	result := s.db.WithContext(ctx).
		Model(&models.ListingLike{}).
		Where("listing_id = ? AND user_id = ?", listingID, userID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("[%s] Fail to check like, err=%w", op, result.Error)
	}
	return count > 0, nil
}

func (s *Store) AddLike(ctx context.Context, listingID, userID uuid.UUID) error {
	const op = "AddLike"

	like := models.ListingLike{ListingID: listingID, UserID: userID, CreatedAt: time.Now()}
	if result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Omit("Listing").Create(&like); result.Error != nil {
		return fmt.Errorf("[%s] Fail to add like, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) RemoveLike(ctx context.Context, listingID, userID uuid.UUID) error {
	const op = "RemoveLike"

	result := s.db.WithContext(ctx).
		Where("listing_id = ? AND user_id = ?", listingID, userID).
		Delete(&models.ListingLike{})
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to remove like, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) CountLikes(ctx context.Context, listingID uuid.UUID) (int64, error) {
	const op = "CountLikes"

	var count int64
	if result := s.db.WithContext(ctx).Model(&models.ListingLike{}).Where("listing_id = ?", listingID).Count(&count); result.Error != nil {
		return 0, fmt.Errorf("[%s] Fail to count likes, err=%w", op, result.Error)
	}
	return count, nil
}

func (s *Store) ListComments(ctx context.Context, listingID uuid.UUID) ([]models.ListingComment, error) {
	const op = "ListComments"

	var comments []models.ListingComment
	result := s.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}}).
		Find(&comments)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list comments, err=%w", op, result.Error)
	}
	return comments, nil
}

func (s *Store) GetComment(ctx context.Context, id uuid.UUID) (*models.ListingComment, error) {
	const op = "GetComment"

	var comment models.ListingComment
	if result := s.db.WithContext(ctx).Where("id = ?", id).Take(&comment); result.Error != nil {
		if notFound(result.Error) {
			return nil, nil
		}
		return nil, fmt.Errorf("[%s] Fail to get comment, err=%w", op, result.Error)
	}
	return &comment, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *models.ListingComment) error {
	const op = "CreateComment"

	if result := s.db.WithContext(ctx).Omit("Listing").Create(comment); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create comment, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) UpdateCommentBody(ctx context.Context, id uuid.UUID, body string) error {
	const op = "UpdateCommentBody"

	result := s.db.WithContext(ctx).
		Model(&models.ListingComment{}).
		Where("id = ?", id).
		Updates(map[string]any{"body": body, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update comment, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id uuid.UUID) error {
	const op = "DeleteComment"

	if result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ListingComment{}); result.Error != nil {
		return fmt.Errorf("[%s] Fail to delete comment, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) CreateInquiry(ctx context.Context, inquiry *models.ListingInquiry) error {
	const op = "CreateInquiry"

	if result := s.db.WithContext(ctx).Omit("Listing").Create(inquiry); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create inquiry, err=%w", op, result.Error)
	}
	return nil
}
