package transaction

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// Append writes a new immutable ledger entry
	Append(ctx context.Context, t *Transaction) error

	// Sum of amounts of one type for an application (numeric FK); zero when none
	Sum(ctx context.Context, applicationID uint64, typ Type) (decimal.Decimal, error)

	// ListByApplicationID returns entries oldest first
	ListByApplicationID(ctx context.Context, applicationID uint64) ([]Transaction, error)
}
