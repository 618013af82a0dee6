package marketplace

import (
	"context"

	"goldpawn/models"

	"github.com/google/uuid"
)

// ListingQuery filters the public listings page.
type ListingQuery struct {
	Search   string
	Category string
	// Sort is "date" or "price".
	Sort   string
	Desc   bool
	Limit  int
	Offset int
	// Viewer, when set, fills Listing.Liked.
	Viewer *uuid.UUID
}

// Store is the persistence the marketplace needs.
// Get methods return (nil, nil) when the row does not exist.
type Store interface {
	ListListings(ctx context.Context, q ListingQuery) ([]models.Listing, error)
	GetListing(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Listing, error)
	CreateListing(ctx context.Context, listing *models.Listing) error
	DeleteListing(ctx context.Context, id uuid.UUID) error

	HasLike(ctx context.Context, listingID, userID uuid.UUID) (bool, error)
	AddLike(ctx context.Context, listingID, userID uuid.UUID) error
	RemoveLike(ctx context.Context, listingID, userID uuid.UUID) error
	CountLikes(ctx context.Context, listingID uuid.UUID) (int64, error)

	ListComments(ctx context.Context, listingID uuid.UUID) ([]models.ListingComment, error)
	GetComment(ctx context.Context, id uuid.UUID) (*models.ListingComment, error)
	CreateComment(ctx context.Context, comment *models.ListingComment) error
	UpdateCommentBody(ctx context.Context, id uuid.UUID, body string) error
	DeleteComment(ctx context.Context, id uuid.UUID) error

	CreateInquiry(ctx context.Context, inquiry *models.ListingInquiry) error
}
