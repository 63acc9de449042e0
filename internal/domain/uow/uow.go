package uow

import (
	"context"

	"line-of-credit/internal/domain/application"
	"line-of-credit/internal/domain/transaction"
)

// Repos are bound to the same db transaction.
type Repos struct {
	Applications application.Repository
	Transactions transaction.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the application row first, then pass it in; fn runs inside the same tx
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *application.Application) error) error
}
