package store

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const (
	DuplicateEntry pq.ErrorCode = "23505"
	CheckViolation pq.ErrorCode = "23514"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")

	// ErrDuplicateReference means only the generated reference collided, not
	// an idempotency key. Callers retry with a fresh reference.
	ErrDuplicateReference = errors.New("duplicate reference")
)

// mapError normalizes driver errors so callers match on sentinels instead of
// pq internals.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == DuplicateEntry {
		return ErrDuplicate
	}
	return err
}
