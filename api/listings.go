package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"goldpawn/marketplace"
	"goldpawn/validation"
)

// GetListings browses the public listings.
// (GET /api/listings)
func (impl *ServerImpl) GetListings(c *gin.Context) {
	const op = "GetListings"

	query := marketplace.ListingQuery{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: c.Query("category"),
		Sort:     c.DefaultQuery("sort", "date"),
		Desc:     !strings.EqualFold(c.Query("order"), "asc"),
		Limit:    defaultPageSize,
	}
	if query.Sort != "date" && query.Sort != "price" {
		fail(c, op, validation.Invalid("cannot sort by %q", query.Sort))
		return
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fail(c, op, validation.Invalid("limit must be a positive integer"))
			return
		}
		query.Limit = min(n, maxPageSize)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(c, op, validation.Invalid("offset must be a non-negative integer"))
			return
		}
		query.Offset = n
	}
	query.Viewer = viewerID(c)

	listings, err := impl.listings.List(c, query)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"listings": listings, "count": len(listings)})
}

// GetListing returns one listing with its engagement counts.
// (GET /api/listings/:id)
func (impl *ServerImpl) GetListing(c *gin.Context) {
	const op = "GetListing"
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	listing, err := impl.listings.Get(c, id, viewerID(c))
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "", listing)
}

// PostAdminListing
// (POST /api/admin/listings)
func (impl *ServerImpl) PostAdminListing(c *gin.Context) {
	const op = "PostAdminListing"
	actor, _ := actorFrom(c)

	var form marketplace.ListingForm
	if !bindJSON(c, &form) {
		return
	}
	listing, err := impl.listings.Publish(c, actor, form)
	if err != nil {
		fail(c, op, err)
		return
	}
	c.Header("Location", "/api/listings/"+listing.ID.String())
	respond(c, http.StatusCreated, "Listing published", listing)
}

// DeleteAdminListing
// (DELETE /api/admin/listings/:id)
func (impl *ServerImpl) DeleteAdminListing(c *gin.Context) {
	const op = "DeleteAdminListing"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := impl.listings.Remove(c, actor, id); err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "Listing removed", nil)
}

// PostListingLike toggles the caller's like.
// (POST /api/listings/:id/like)
func (impl *ServerImpl) PostListingLike(c *gin.Context) {
	const op = "PostListingLike"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	liked, count, err := impl.listings.ToggleLike(c, actor, id)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"liked": liked, "likes": count})
}

// GetListingComments
// (GET /api/listings/:id/comments)
func (impl *ServerImpl) GetListingComments(c *gin.Context) {
	const op = "GetListingComments"
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	comments, err := impl.listings.Comments(c, id)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"comments": comments, "count": len(comments)})
}

// PostListingComment
// (POST /api/listings/:id/comments)
func (impl *ServerImpl) PostListingComment(c *gin.Context) {
	const op = "PostListingComment"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var form marketplace.CommentForm
	if !bindJSON(c, &form) {
		return
	}
	comment, err := impl.listings.AddComment(c, actor, id, form)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusCreated, "Comment posted", comment)
}

// PatchComment edits a comment; only its author or an admin may.
// (PATCH /api/comments/:id)
func (impl *ServerImpl) PatchComment(c *gin.Context) {
	const op = "PatchComment"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var form marketplace.CommentForm
	if !bindJSON(c, &form) {
		return
	}
	comment, err := impl.listings.EditComment(c, actor, id, form)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "Comment updated", comment)
}

// DeleteComment
// (DELETE /api/comments/:id)
func (impl *ServerImpl) DeleteComment(c *gin.Context) {
	const op = "DeleteComment"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := impl.listings.DeleteComment(c, actor, id); err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "Comment deleted", nil)
}

// PostListingInquiry records a buyer inquiry. Signing in is optional.
// (POST /api/listings/:id/inquiries)
func (impl *ServerImpl) PostListingInquiry(c *gin.Context) {
	const op = "PostListingInquiry"
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var form marketplace.InquiryForm
	if !bindJSON(c, &form) {
		return
	}
	if _, err := impl.listings.Inquire(c, optionalActor(c), id, form); err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusCreated, "Thanks, we will contact you soon", nil)
}

func viewerID(c *gin.Context) *uuid.UUID {
	if actor := optionalActor(c); actor != nil {
		return &actor.UserID
	}
	return nil
}
