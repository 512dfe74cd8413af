package store

import (
	"errors"
	"fmt"

	sqlite "github.com/mattn/go-sqlite3"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrDuplicate           = errors.New("record already exists")
	ErrConstraintViolation = errors.New("database constraint violation")
	// ErrIntegrityViolation is returned when a storage trigger rejects a mutation,
	// e.g. an edit of a sealed debt or of a transaction in a sealed account.
	ErrIntegrityViolation = errors.New("integrity violation")
)

// mapError translates sqlite constraint failures into the package sentinels while
// keeping the driver error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite.ErrConstraint {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite.ErrConstraintTrigger:
		return fmt.Errorf("%w: %w", ErrIntegrityViolation, err)
	case sqlite.ErrConstraintUnique, sqlite.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	default:
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}
}
