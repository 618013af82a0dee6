package marketplace

import (
	"context"
	"errors"
	"testing"

	"goldpawn/lifecycle"
	"goldpawn/models"
	"goldpawn/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type likeKey struct{ listing, user uuid.UUID }

type memStore struct {
	listings  map[uuid.UUID]*models.Listing
	likes     map[likeKey]bool
	comments  map[uuid.UUID]*models.ListingComment
	inquiries []*models.ListingInquiry
}

func newMemStore(listings ...*models.Listing) *memStore {
	m := &memStore{
		listings: map[uuid.UUID]*models.Listing{},
		likes:    map[likeKey]bool{},
		comments: map[uuid.UUID]*models.ListingComment{},
	}
	for _, l := range listings {
		m.listings[l.ID] = l
	}
	return m
}

func (m *memStore) ListListings(_ context.Context, _ ListingQuery) ([]models.Listing, error) {
	out := make([]models.Listing, 0, len(m.listings))
	for _, l := range m.listings {
		out = append(out, *l)
	}
	return out, nil
}

func (m *memStore) GetListing(_ context.Context, id uuid.UUID, _ *uuid.UUID) (*models.Listing, error) {
	l, ok := m.listings[id]
	if !ok {
		return nil, nil
	}
	copied := *l
	return &copied, nil
}

func (m *memStore) CreateListing(_ context.Context, l *models.Listing) error {
	l.ID = uuid.New()
	m.listings[l.ID] = l
	return nil
}

func (m *memStore) DeleteListing(_ context.Context, id uuid.UUID) error {
	delete(m.listings, id)
	return nil
}

func (m *memStore) HasLike(_ context.Context, listingID, userID uuid.UUID) (bool, error) {
	return m.likes[likeKey{listingID, userID}], nil
}

func (m *memStore) AddLike(_ context.Context, listingID, userID uuid.UUID) error {
	m.likes[likeKey{listingID, userID}] = true
	return nil
}

func (m *memStore) RemoveLike(_ context.Context, listingID, userID uuid.UUID) error {
	delete(m.likes, likeKey{listingID, userID})
	return nil
}

func (m *memStore) CountLikes(_ context.Context, listingID uuid.UUID) (int64, error) {
	var n int64
	for k := range m.likes {
		if k.listing == listingID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListComments(_ context.Context, listingID uuid.UUID) ([]models.ListingComment, error) {
	var out []models.ListingComment
	for _, c := range m.comments {
		if c.ListingID == listingID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) GetComment(_ context.Context, id uuid.UUID) (*models.ListingComment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *memStore) CreateComment(_ context.Context, c *models.ListingComment) error {
	c.ID = uuid.New()
	m.comments[c.ID] = c
	return nil
}

func (m *memStore) UpdateCommentBody(_ context.Context, id uuid.UUID, body string) error {
	m.comments[id].Body = body
	return nil
}

func (m *memStore) DeleteComment(_ context.Context, id uuid.UUID) error {
	delete(m.comments, id)
	return nil
}

func (m *memStore) CreateInquiry(_ context.Context, inquiry *models.ListingInquiry) error {
	m.inquiries = append(m.inquiries, inquiry)
	return nil
}

var (
	alice = lifecycle.Actor{UserID: uuid.New(), Username: "alice", Email: "alice@example.com"}
	bob   = lifecycle.Actor{UserID: uuid.New(), Username: "bob", Email: "bob@example.com"}
	admin = lifecycle.Actor{UserID: uuid.New(), Username: "shop", Email: "admin@example.com", Admin: true}
)

func newListing() *models.Listing {
	return &models.Listing{
		ID:       uuid.New(),
		Title:    "18K Saudi Gold Bracelet",
		Category: "Bracelet",
		Weight:   decimal.RequireFromString("12.5"),
		Price:    decimal.NewFromInt(98000),
	}
}

func TestService_ToggleLike(t *testing.T) {
	listing := newListing()
	store := newMemStore(listing)
	store.likes[likeKey{listing.ID, bob.UserID}] = true
	svc := NewService(store)

	liked, count, err := svc.ToggleLike(context.Background(), alice, listing.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(2), count)

	liked, count, err = svc.ToggleLike(context.Background(), alice, listing.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(1), count)

	_, _, err = svc.ToggleLike(context.Background(), alice, uuid.New())
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestService_Comments(t *testing.T) {
	listing := newListing()
	store := newMemStore(listing)
	svc := NewService(store)
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, alice, listing.ID, CommentForm{Body: "  Is this <b>still</b> available?<script>x()</script> "})
	require.NoError(t, err)
	assert.Equal(t, "Is this still available?", comment.Body)
	assert.Equal(t, "alice", comment.AuthorName)

	t.Run("markup only body is rejected", func(t *testing.T) {
		_, err := svc.AddComment(ctx, alice, listing.ID, CommentForm{Body: "<img src=x>"})
		assert.ErrorIs(t, err, validation.ErrInvalid)
	})

	t.Run("unknown listing", func(t *testing.T) {
		_, err := svc.AddComment(ctx, alice, uuid.New(), CommentForm{Body: "hello"})
		assert.ErrorIs(t, err, ErrListingNotFound)
	})

	t.Run("other user cannot edit", func(t *testing.T) {
		_, err := svc.EditComment(ctx, bob, comment.ID, CommentForm{Body: "mine now"})
		assert.ErrorIs(t, err, lifecycle.ErrForbidden)
		assert.Equal(t, "Is this still available?", store.comments[comment.ID].Body)
	})

	t.Run("author edits", func(t *testing.T) {
		edited, err := svc.EditComment(ctx, alice, comment.ID, CommentForm{Body: "Still available?"})
		require.NoError(t, err)
		assert.Equal(t, "Still available?", edited.Body)
		assert.Equal(t, "Still available?", store.comments[comment.ID].Body)
	})

	t.Run("other user cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteComment(ctx, bob, comment.ID), lifecycle.ErrForbidden)
		assert.Contains(t, store.comments, comment.ID)
	})

	t.Run("admin deletes", func(t *testing.T) {
		require.NoError(t, svc.DeleteComment(ctx, admin, comment.ID))
		assert.NotContains(t, store.comments, comment.ID)
		assert.ErrorIs(t, svc.DeleteComment(ctx, admin, comment.ID), ErrCommentNotFound)
	})
}

func TestService_Inquire(t *testing.T) {
	listing := newListing()
	store := newMemStore(listing)
	svc := NewService(store)

	_, err := svc.Inquire(context.Background(), nil, listing.ID, InquiryForm{Message: "Price negotiable?"})
	assert.ErrorIs(t, err, validation.ErrInvalid)
	assert.Empty(t, store.inquiries)

	inquiry, err := svc.Inquire(context.Background(), &alice, listing.ID, InquiryForm{
		Name:          "Alice",
		ContactNumber: " 09171234567 ",
		Message:       "Price negotiable?",
	})
	require.NoError(t, err)
	assert.Equal(t, "09171234567", inquiry.ContactNumber)
	assert.Equal(t, alice.UserID, *inquiry.UserID)
	assert.Len(t, store.inquiries, 1)
}

func TestService_PublishAndRemove(t *testing.T) {
	ctrl := gomock.NewController(t)
	blobs := lifecycle.NewMockBlobRemover(ctrl)
	store := newMemStore()
	svc := NewService(store, WithBlobRemover(blobs))
	ctx := context.Background()

	form := ListingForm{
		Title:       "Necklace",
		Description: `<p>Fine chain</p><script>alert(1)</script>`,
		Category:    "Necklace",
		Weight:      decimal.NewFromInt(5),
		Price:       decimal.NewFromInt(30000),
		Images:      []string{"https://cdn.example.com/listings/a.png", "https://cdn.example.com/listings/b.png"},
	}

	_, err := svc.Publish(ctx, alice, form)
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)

	bad := form
	bad.Price = decimal.Zero
	_, err = svc.Publish(ctx, admin, bad)
	assert.ErrorIs(t, err, validation.ErrInvalid)

	listing, err := svc.Publish(ctx, admin, form)
	require.NoError(t, err)
	assert.Equal(t, "<p>Fine chain</p>", listing.Description)
	assert.Equal(t, "https://cdn.example.com/listings/a.png", listing.ImageURL)
	assert.Equal(t, models.ImageList{"https://cdn.example.com/listings/b.png"}, listing.Images)

	gomock.InOrder(
		blobs.EXPECT().DeleteByURL(gomock.Any(), "https://cdn.example.com/listings/a.png").Return(nil),
		blobs.EXPECT().DeleteByURL(gomock.Any(), "https://cdn.example.com/listings/b.png").Return(errors.New("gone")),
	)
	assert.ErrorIs(t, svc.Remove(ctx, bob, listing.ID), lifecycle.ErrForbidden)
	require.NoError(t, svc.Remove(ctx, admin, listing.ID))
	assert.Empty(t, store.listings)
}
