package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"warbler/internal/db"
	apperrors "warbler/internal/errors"
)

// translate maps store errors onto domain errors. Integrity failures keep the
// driver error wrapped next to ErrConstraintViolation.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case db.IsConstraintViolation(err):
		return fmt.Errorf("%w: %w", apperrors.ErrConstraintViolation, err)
	default:
		return err
	}
}
