package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"goldpawn/adapters/sse"
	"goldpawn/lifecycle"
	"goldpawn/models"
	"goldpawn/store"
	"goldpawn/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	sseKeepAlive = 30 * time.Second
)

type pageRequest struct {
	Page     int
	PageSize int
}

// bounds returns the slice bounds of the page.
func (p pageRequest) bounds() (int, int) {
	start := (p.Page - 1) * p.PageSize
	return start, start + p.PageSize
}

// parseItemFilter reads the admin console query string.
func parseItemFilter(c *gin.Context) (store.ItemFilter, pageRequest, error) {
	filter := store.ItemFilter{
		Status:     models.ItemStatus(strings.ToLower(c.Query("status"))),
		ItemType:   models.ItemType(strings.ToLower(c.Query("item_type"))),
		GoldOrigin: c.Query("gold_origin"),
		GoldColor:  c.Query("gold_color"),
		Category:   c.Query("category"),
		Sort:       c.DefaultQuery("sort", "date"),
		Desc:       !strings.EqualFold(c.Query("order"), "asc"),
	}
	page := pageRequest{Page: 1, PageSize: defaultPageSize}

	if filter.Status == "all" {
		filter.Status = ""
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, page, validation.Invalid("unknown status %q", filter.Status)
	}
	if filter.ItemType != "" && !filter.ItemType.Valid() {
		return filter, page, validation.Invalid("unknown item_type %q", filter.ItemType)
	}
	if !store.SortableItemColumn(filter.Sort) {
		return filter, page, validation.Invalid("cannot sort by %q", filter.Sort)
	}

	if v := c.Query("from"); v != "" {
		from, err := time.Parse(lifecycle.DateLayout, v)
		if err != nil {
			return filter, page, validation.Invalid("from must be a date (YYYY-MM-DD)")
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(lifecycle.DateLayout, v)
		if err != nil {
			return filter, page, validation.Invalid("to must be a date (YYYY-MM-DD)")
		}
		// inclusive end date
		filter.To = lo.ToPtr(to.AddDate(0, 0, 1))
	}
	if v := c.Query("min_price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return filter, page, validation.Invalid("min_price must be a number")
		}
		filter.MinPrice = &price
	}
	if v := c.Query("max_price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return filter, page, validation.Invalid("max_price must be a number")
		}
		filter.MaxPrice = &price
	}

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, page, validation.Invalid("page must be a positive integer")
		}
		page.Page = n
	}
	if v := c.Query("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, page, validation.Invalid("page_size must be a positive integer")
		}
		page.PageSize = min(n, maxPageSize)
	}
	return filter, page, nil
}

// GetAdminItems is the review console list. Counts cover all items regardless of filters.
// (GET /api/admin/items)
func (impl *ServerImpl) GetAdminItems(c *gin.Context) {
	const op = "GetAdminItems"

	filter, page, err := parseItemFilter(c)
	if err != nil {
		fail(c, op, err)
		return
	}
	items, err := impl.store.ListItems(c, filter)
	if err != nil {
		fail(c, op, err)
		return
	}
	counts, err := impl.store.CountItemsByStatus(c)
	if err != nil {
		fail(c, op, err)
		return
	}

	start, end := page.bounds()
	respond(c, http.StatusOK, "", gin.H{
		"items":     lo.Slice(items, start, end),
		"total":     len(items),
		"page":      page.Page,
		"page_size": page.PageSize,
		"counts":    counts,
	})
}

// PostAdminItemApprove
// (POST /api/admin/items/:id/approve)
func (impl *ServerImpl) PostAdminItemApprove(c *gin.Context) {
	const op = "PostAdminItemApprove"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := impl.items.Approve(c, actor, id)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "Item approved", item)
}

// PostAdminItemReject
// (POST /api/admin/items/:id/reject)
func (impl *ServerImpl) PostAdminItemReject(c *gin.Context) {
	const op = "PostAdminItemReject"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := impl.items.Reject(c, actor, id)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "Item rejected", item)
}

// PostAdminItemPawned records the loan and marks the item pawned.
// (POST /api/admin/items/:id/pawned)
func (impl *ServerImpl) PostAdminItemPawned(c *gin.Context) {
	const op = "PostAdminItemPawned"
	actor, _ := actorFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var form lifecycle.TransactionForm
	if !bindJSON(c, &form) {
		return
	}
	item, record, err := impl.items.MarkPawned(c, actor, id, form)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "Item marked as pawned", gin.H{"item": item, "transaction": record})
}

// GetAdminTransactions lists the pawn ledger, newest first.
// (GET /api/admin/transactions)
func (impl *ServerImpl) GetAdminTransactions(c *gin.Context) {
	const op = "GetAdminTransactions"

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(c, op, validation.Invalid("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	txs, err := impl.store.ListPawnTransactions(c, limit)
	if err != nil {
		fail(c, op, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"transactions": txs, "count": len(txs)})
}

// GetAdminItemEvents streams lifecycle transitions to the console.
// (GET /api/admin/items/events)
func (impl *ServerImpl) GetAdminItemEvents(c *gin.Context) {
	ch, err := impl.sseManager.Subscribe(adminEventsChannel)
	if err != nil {
		reject(c, http.StatusServiceUnavailable, "Live updates are not available")
		return
	}
	defer impl.sseManager.Unsubscribe(adminEventsChannel, ch)

	sse.Serve(c, "item", ch, sseKeepAlive)
}
