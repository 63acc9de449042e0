package gormrepo

import (
	"context"
	"time"

	appDomain "line-of-credit/internal/domain/application"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.Application) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*appDomain.Application, error) {
	var out appDomain.Application
	if err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*appDomain.Application, error) {
	var out appDomain.Application
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID).
		First(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *ApplicationRepository) UpdateState(ctx context.Context, a *appDomain.Application, to appDomain.State) error {
	now := time.Now().UTC()
	// compare-and-set on the state we read; a concurrent writer leaves zero rows matched
	res := r.db.WithContext(ctx).
		Model(&appDomain.Application{}).
		Where("id = ? AND state = ?", a.ID, a.State).
		Updates(map[string]any{"state": to, "updated_at": now})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return appDomain.ErrConflict
	}
	a.State = to
	a.UpdatedAt = now
	return nil
}

func (r *ApplicationRepository) ListByUserID(ctx context.Context, userID string) ([]appDomain.Application, error) {
	var out []appDomain.Application
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, translate(err)
}
