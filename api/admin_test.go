package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldpawn/models"
	"goldpawn/validation"
)

func queryContext(rawQuery string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/items?"+rawQuery, nil)
	return c
}

func TestParseItemFilter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		filter, page, err := parseItemFilter(queryContext(""))
		require.NoError(t, err)

		assert.Empty(t, filter.Status)
		assert.Equal(t, "date", filter.Sort)
		assert.True(t, filter.Desc)
		assert.Equal(t, pageRequest{Page: 1, PageSize: defaultPageSize}, page)
	})

	t.Run("all filters", func(t *testing.T) {
		c := queryContext("status=Approved&item_type=pawn&from=2024-05-01&to=2024-05-31" +
			"&min_price=1000&max_price=50000.50&gold_origin=Saudi+Gold&gold_color=Yellow+Gold" +
			"&category=Ring&sort=price&order=asc&page=3&page_size=500")

		filter, page, err := parseItemFilter(c)
		require.NoError(t, err)

		assert.Equal(t, models.StatusApproved, filter.Status)
		assert.Equal(t, models.ItemTypePawn, filter.ItemType)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *filter.From)
		// to is inclusive, so the bound is the next midnight
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *filter.To)
		assert.Equal(t, "1000", filter.MinPrice.String())
		assert.Equal(t, "50000.5", filter.MaxPrice.String())
		assert.Equal(t, "Saudi Gold", filter.GoldOrigin)
		assert.Equal(t, "Yellow Gold", filter.GoldColor)
		assert.Equal(t, "Ring", filter.Category)
		assert.Equal(t, "price", filter.Sort)
		assert.False(t, filter.Desc)
		assert.Equal(t, pageRequest{Page: 3, PageSize: maxPageSize}, page)
	})

	t.Run("all tab clears the status", func(t *testing.T) {
		filter, _, err := parseItemFilter(queryContext("status=all"))
		require.NoError(t, err)
		assert.Empty(t, filter.Status)
	})

	for _, query := range []string{
		"status=archived",
		"item_type=auction",
		"sort=popularity",
		"from=yesterday",
		"to=2024-13-01",
		"min_price=cheap",
		"max_price=1e",
		"page=0",
		"page_size=-5",
	} {
		t.Run("rejects "+query, func(t *testing.T) {
			_, _, err := parseItemFilter(queryContext(query))
			assert.True(t, errors.Is(err, validation.ErrInvalid), "got %v", err)
		})
	}
}

func TestPageRequest_Bounds(t *testing.T) {
	items := lo.Range(45)

	tests := []struct {
		page pageRequest
		want []int
	}{
		{pageRequest{Page: 1, PageSize: 20}, lo.Range(20)},
		{pageRequest{Page: 3, PageSize: 20}, []int{40, 41, 42, 43, 44}},
		{pageRequest{Page: 4, PageSize: 20}, []int{}},
	}
	for _, tt := range tests {
		start, end := tt.page.bounds()
		assert.Equal(t, tt.want, lo.Slice(items, start, end))
	}
}
