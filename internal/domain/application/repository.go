package application

import "context"

type Repository interface {
	Create(ctx context.Context, a *Application) error
	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	// Same as GetByApplicationID but takes a row lock; only meaningful inside a tx
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*Application, error)

	// UpdateState moves a from its current state to `to`. The write only lands if the
	// stored row is still in a.State; otherwise ErrConflict. On success a is updated in place.
	UpdateState(ctx context.Context, a *Application, to State) error

	// ListByUserID returns the user's applications newest first
	ListByUserID(ctx context.Context, userID string) ([]Application, error)
}
