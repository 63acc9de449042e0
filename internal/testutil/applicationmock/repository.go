package applicationmock

import (
	"context"

	domain "line-of-credit/internal/domain/application"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset funcs are no-ops for writes and return context.Canceled for reads.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.Application) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.Application, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.Application, error)
	UpdateStateFn                 func(ctx context.Context, a *domain.Application, to domain.State) error
	ListByUserIDFn                func(ctx context.Context, userID string) ([]domain.Application, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

// UpdateState default mimics the real store: state and timestamp change in place.
func (m *Repo) UpdateState(ctx context.Context, a *domain.Application, to domain.State) error {
	if m.UpdateStateFn != nil {
		return m.UpdateStateFn(ctx, a, to)
	}
	a.State = to
	return nil
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Application, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}
