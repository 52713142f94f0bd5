package db

import (
	stdErrors "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolationCode = "23505"

// IsNotFound reports whether the error is gorm's missing-record sentinel.
func IsNotFound(err error) bool {
	return stdErrors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether the provided error is a unique constraint
// violation. When a constraint name is given the violated constraint must
// match it. The sqlite phrasing is matched too so repository tests behave
// like production Postgres.
func IsUniqueViolation(err error, constraintName ...string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if stdErrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		if len(constraintName) == 0 || constraintName[0] == "" {
			return true
		}
		return pgErr.ConstraintName == constraintName[0]
	}

	msg := err.Error()
	if len(constraintName) > 0 && constraintName[0] != "" {
		return strings.Contains(msg, constraintName[0])
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
