package db

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the repositories translate into domain errors.
const (
	PgUniqueViolation     = "23505"
	PgForeignKeyViolation = "23503"
)

func IsUniqueViolation(err error) bool {
	return hasPgCode(err, PgUniqueViolation)
}

func IsForeignKeyViolation(err error) bool {
	return hasPgCode(err, PgForeignKeyViolation)
}

func hasPgCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}
