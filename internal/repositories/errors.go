package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrAccountNotFound means a lock target did not resolve to a row.
	ErrAccountNotFound = errors.New("account not found")

	// ErrContention marks a deadlock or lock-wait condition expected to
	// clear on retry. The transfer engine retries these transparently.
	ErrContention = errors.New("transient lock contention")
)

// Postgres SQLSTATEs that signal transient lock contention.
const (
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
	lockNotAvailableCode     = "55P03"
)

// IsContention classifies an error as retryable lock contention. The
// SQLSTATE check covers the backing store's own signals; the message check
// catches drivers that surface the condition as plain text.
func IsContention(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrContention) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case serializationFailureCode, deadlockDetectedCode, lockNotAvailableCode:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "Lock wait timeout") ||
		strings.Contains(msg, "could not obtain lock")
}
