package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"goldpawn/lifecycle"
	"goldpawn/models"
)

func dbMock(t *testing.T) (*sql.DB, *Store, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqldb}), &gorm.Config{})
	require.NoError(t, err)
	return sqldb, New(db), mock
}

func TestStore_GetItem(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT * FROM "items" WHERE id = $1 LIMIT $2`)

	t.Run("found", func(t *testing.T) {
		_, s, mock := dbMock(t)
		id := uuid.New()
		mock.ExpectQuery(query).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "item_type", "status"}).
				AddRow(id.String(), "18K Ring", "sell", "pending"))

		item, err := s.GetItem(context.Background(), id)

		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, id, item.ID)
		assert.Equal(t, models.ItemTypeSell, item.ItemType)
		assert.Equal(t, models.StatusPending, item.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		_, s, mock := dbMock(t)
		mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		item, err := s.GetItem(context.Background(), uuid.New())

		assert.NoError(t, err)
		assert.Nil(t, item)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		_, s, mock := dbMock(t)
		mock.ExpectQuery(query).WillReturnError(errors.New("connection reset"))

		_, err := s.GetItem(context.Background(), uuid.New())

		assert.ErrorContains(t, err, "[GetItem]")
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestStore_SetItemStatus(t *testing.T) {
	update := `UPDATE "items" SET .* WHERE id = \$\d`

	t.Run("records the transaction", func(t *testing.T) {
		_, s, mock := dbMock(t)
		id, txID := uuid.New(), uuid.New()
		mock.ExpectBegin()
		mock.ExpectExec(update).
			WithArgs(models.StatusPawned, txID, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.SetItemStatus(context.Background(), id, models.StatusPawned, &txID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row updated", func(t *testing.T) {
		_, s, mock := dbMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := s.SetItemStatus(context.Background(), uuid.New(), models.StatusApproved, nil)

		assert.ErrorIs(t, err, lifecycle.ErrNotFound)
	})
}

func TestStore_CountItemsByStatus(t *testing.T) {
	_, s, mock := dbMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, count(*) AS count FROM "items" GROUP BY "status"`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 3).
			AddRow("sold", 1))

	counts, err := s.CountItemsByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[models.ItemStatus]int64{
		models.StatusPending:  3,
		models.StatusApproved: 0,
		models.StatusRejected: 0,
		models.StatusSold:     1,
		models.StatusPawned:   0,
	}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListItems(t *testing.T) {
	_, s, mock := dbMock(t)
	minPrice := decimal.NewFromInt(1000)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "items" WHERE status = $1 AND item_type = $2 AND amount >= $3 AND category = $4 ORDER BY "amount"`)).
		WithArgs(models.StatusApproved, models.ItemTypePawn, minPrice, "Ring").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(uuid.NewString(), "Bangle").
			AddRow(uuid.NewString(), "Chain"))

	items, err := s.ListItems(context.Background(), ItemFilter{
		Status:   models.StatusApproved,
		ItemType: models.ItemTypePawn,
		MinPrice: &minPrice,
		Category: "Ring",
		Sort:     "price",
	})

	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Transaction(t *testing.T) {
	newTx := func(itemID uuid.UUID) *models.PawnTransaction {
		return &models.PawnTransaction{
			TransactionNo:  "PT-0001",
			ItemID:         &itemID,
			ItemTitle:      "Bangle",
			CustomerName:   "Maria",
			AppraisedValue: decimal.NewFromInt(20000),
			LoanAmount:     decimal.NewFromInt(15000),
			InterestRate:   decimal.NewFromFloat(3.5),
			MaturityDate:   time.Now().AddDate(0, 1, 0),
			DueDate:        time.Now().AddDate(0, 4, 0),
		}
	}

	t.Run("commits both writes", func(t *testing.T) {
		_, s, mock := dbMock(t)
		itemID, txID := uuid.New(), uuid.New()
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "pawn_transactions" .* RETURNING "id"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(txID.String()))
		mock.ExpectExec(`UPDATE "items" SET .* WHERE id = \$\d`).
			WithArgs(models.StatusPawned, txID, sqlmock.AnyArg(), itemID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.Transaction(context.Background(), func(tx lifecycle.Store) error {
			record := newTx(itemID)
			if err := tx.CreatePawnTransaction(context.Background(), record); err != nil {
				return err
			}
			return tx.SetItemStatus(context.Background(), itemID, models.StatusPawned, &record.ID)
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		_, s, mock := dbMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "pawn_transactions"`).WillReturnError(errors.New("duplicate transaction_no"))
		mock.ExpectRollback()

		err := s.Transaction(context.Background(), func(tx lifecycle.Store) error {
			return tx.CreatePawnTransaction(context.Background(), newTx(uuid.New()))
		})

		assert.ErrorContains(t, err, "duplicate transaction_no")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
