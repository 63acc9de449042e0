package transactionmock

import (
	"context"

	domain "line-of-credit/internal/domain/transaction"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	AppendFn              func(ctx context.Context, t *domain.Transaction) error
	SumFn                 func(ctx context.Context, applicationID uint64, typ domain.Type) (decimal.Decimal, error)
	ListByApplicationIDFn func(ctx context.Context, applicationID uint64) ([]domain.Transaction, error)
}

func (m *Repo) Append(ctx context.Context, t *domain.Transaction) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, t)
	}
	return nil
}

func (m *Repo) Sum(ctx context.Context, applicationID uint64, typ domain.Type) (decimal.Decimal, error) {
	if m.SumFn != nil {
		return m.SumFn(ctx, applicationID, typ)
	}
	return decimal.Zero, nil
}

func (m *Repo) ListByApplicationID(ctx context.Context, applicationID uint64) ([]domain.Transaction, error) {
	if m.ListByApplicationIDFn != nil {
		return m.ListByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}
