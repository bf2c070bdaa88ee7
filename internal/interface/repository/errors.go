package repository

import (
	"errors"
	"fmt"

	"wanderlust-service/internal/domain/errs"

	"gorm.io/gorm"
)

// dbError maps driver errors onto the domain taxonomy
func dbError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, errs.ErrConflict)
	}
	return fmt.Errorf("%s: %w: %v", op, errs.ErrDatabaseOperationFailed, err)
}
