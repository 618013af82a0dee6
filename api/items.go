package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"goldpawn/lifecycle"
	"goldpawn/submission"
	"goldpawn/validation"
)

const (
	formFieldPayload = "payload"
	formFieldImages  = "images"
)

// GetMyItems lists the caller's submissions with their request rows.
// (GET /api/items/mine)
func (impl *ServerImpl) GetMyItems(c *gin.Context) {
	const op = "GetMyItems"
	actor, _ := actorFrom(c)

	items, err := impl.store.ListItemsByUser(c, actor.UserID)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"items": items, "count": len(items)})
}

// GetItem returns an item to its owner or an admin.
// (GET /api/items/:id)
func (impl *ServerImpl) GetItem(c *gin.Context) {
	const op = "GetItem"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := impl.store.GetItemDetail(c, id)
	if err != nil {
		fail(c, op, err)
		return
	}
	if item == nil {
		fail(c, op, lifecycle.ErrNotFound)
		return
	}
	if !lifecycle.CanView(actor, item) {
		fail(c, op, lifecycle.ErrForbidden)
		return
	}
	respond(c, http.StatusOK, "", gin.H{
		"item":    item,
		"actions": lifecycle.Available(item.ItemType, item.Status),
	})
}

// PostSellItem submits the sell wizard.
// (POST /api/items/sell)
func (impl *ServerImpl) PostSellItem(c *gin.Context) {
	const op = "PostSellItem"
	actor, _ := actorFrom(c)

	var form submission.SellForm
	images, ok := readSubmission(c, &form)
	if !ok {
		return
	}
	item, err := impl.submissions.SubmitSell(c, actor, form, images)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusCreated, "Your item was submitted for review", item)
}

// PostPawnItem submits the pawn wizard.
// (POST /api/items/pawn)
func (impl *ServerImpl) PostPawnItem(c *gin.Context) {
	const op = "PostPawnItem"
	actor, _ := actorFrom(c)

	var form submission.PawnForm
	images, ok := readSubmission(c, &form)
	if !ok {
		return
	}
	item, err := impl.submissions.SubmitPawn(c, actor, form, images)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusCreated, "Your pawn request was submitted for review", item)
}

// readSubmission decodes the JSON payload field into form and loads the images.
func readSubmission(c *gin.Context, form any) ([]submission.ImageFile, bool) {
	const op = "readSubmission"

	multipart, err := c.MultipartForm()
	if err != nil {
		reject(c, http.StatusBadRequest, "Expected a multipart form")
		return nil, false
	}
	payload := multipart.Value[formFieldPayload]
	if len(payload) == 0 {
		fail(c, op, validation.Invalid("%s is required", formFieldPayload))
		return nil, false
	}
	if err := binding.JSON.BindBody([]byte(payload[0]), form); err != nil {
		reject(c, http.StatusBadRequest, "Malformed payload: "+err.Error())
		return nil, false
	}
	images, err := submission.ReadImages(multipart.File[formFieldImages])
	if err != nil {
		fail(c, op, err)
		return nil, false
	}
	return images, true
}

// PatchItemContact lets the owner correct the contact details of a submission.
// (PATCH /api/items/:id/contact)
func (impl *ServerImpl) PatchItemContact(c *gin.Context) {
	const op = "PatchItemContact"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var contact submission.Contact
	if !bindJSON(c, &contact) {
		return
	}
	if err := impl.submissions.UpdateContact(c, actor, id, contact); err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "Contact details updated", nil)
}

// PostItemSold marks an approved sell item sold, by its owner or an admin.
// (POST /api/items/:id/sold and POST /api/admin/items/:id/sold)
func (impl *ServerImpl) PostItemSold(c *gin.Context) {
	const op = "PostItemSold"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := impl.items.MarkSold(c, actor, id)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "Item marked as sold", item)
}

// DeleteItem removes an item. Owners may only delete pending items.
// (DELETE /api/items/:id and DELETE /api/admin/items/:id)
func (impl *ServerImpl) DeleteItem(c *gin.Context) {
	const op = "DeleteItem"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := impl.items.Delete(c, actor, id); err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "Item deleted", nil)
}
