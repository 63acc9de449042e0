package gormrepo

import (
	"errors"
	"fmt"

	appDomain "line-of-credit/internal/domain/application"

	"gorm.io/gorm"
)

// translate maps gorm/driver errors onto the domain taxonomy. Requires gorm.Config.TranslateError.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case isDomainErr(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return appDomain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return appDomain.ErrDuplicate
	default:
		return fmt.Errorf("%w: %w", appDomain.ErrStoreUnavailable, err)
	}
}

func isDomainErr(err error) bool {
	var te *appDomain.TransitionError
	var ve *appDomain.ValidationError
	if errors.As(err, &te) || errors.As(err, &ve) {
		return true
	}
	for _, s := range []error{
		appDomain.ErrNotFound,
		appDomain.ErrDuplicate,
		appDomain.ErrConflict,
		appDomain.ErrUnauthorized,
		appDomain.ErrDisbursementExceedsRequested,
		appDomain.ErrStoreUnavailable,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
