package store

import (
	"context"
	"fmt"

	"goldpawn/models"

	"gorm.io/gorm/clause"
)

func (s *Store) CreatePawnTransaction(ctx context.Context, tx *models.PawnTransaction) error {
	const op = "CreatePawnTransaction"

	if result := s.db.WithContext(ctx).Omit(clause.Associations).Create(tx); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create pawn transaction, err=%w", op, result.Error)
	}
	return nil
}

// ListPawnTransactions returns the loan ledger, newest first.
func (s *Store) ListPawnTransactions(ctx context.Context, limit int) ([]models.PawnTransaction, error) {
	const op = "ListPawnTransactions"

	var txs []models.PawnTransaction
	query := s.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&txs); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list pawn transactions, err=%w", op, result.Error)
	}
	return txs, nil
}
