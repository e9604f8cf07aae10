package repository

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// isUniqueViolation matches both the translated gorm error and the raw
// driver error so it works with and without gorm's TranslateError.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || hasPQCode(err, pqUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || hasPQCode(err, pqForeignKeyViolation)
}

func hasPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
