package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/store/backend/internal/domain/shared"
)

// translateWriteError maps GORM errors from inserts and updates to domain
// errors. Constraint violations surface as domain errors so callers can map
// them to client responses; a duplicate key means the row already exists and
// a foreign key violation means a referenced row is missing. Anything else
// is a storage failure.
func translateWriteError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.ErrNotFound
	default:
		return shared.NewPersistenceError(op, err)
	}
}

// translateDeleteError maps GORM errors from deletes. A foreign key violation
// here means other rows still reference the one being removed.
func translateDeleteError(op string, err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return shared.ErrHasDependents
	}
	return shared.NewPersistenceError(op, err)
}
