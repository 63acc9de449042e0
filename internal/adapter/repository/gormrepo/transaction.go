package gormrepo

import (
	"context"

	txDomain "line-of-credit/internal/domain/transaction"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// amountScale matches the decimal(18,2) amount column. SQLite keeps such values as REAL,
// so its SUM comes back as a float and is rounded to the column scale.
const amountScale = 2

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Append(ctx context.Context, t *txDomain.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TransactionRepository) Sum(ctx context.Context, applicationID uint64, typ txDomain.Type) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&txDomain.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("application_id = ? AND transaction_type = ?", applicationID, typ).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, translate(err)
	}
	return total.Round(amountScale), nil
}

func (r *TransactionRepository) ListByApplicationID(ctx context.Context, applicationID uint64) ([]txDomain.Transaction, error) {
	var out []txDomain.Transaction
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, translate(err)
}
