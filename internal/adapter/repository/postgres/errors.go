package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gtservice/gtledger/internal/domain"
)

// PostgreSQL error codes.
const (
	pgErrUniqueViolation      = "23505"
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// uniqueConstraints maps unique constraint names from the migrations to domain errors.
var uniqueConstraints = map[string]error{
	"parts_code_key":                domain.ErrDuplicatePartCode,
	"stock_movements_number_key":    domain.ErrDuplicateSequence,
	"invoices_number_key":           domain.ErrDuplicateSequence,
	"accounting_records_number_key": domain.ErrDuplicateSequence,
	"jobs_number_key":               domain.ErrDuplicateSequence,
	"vehicles_plate_key":            domain.ErrDuplicatePlate,
	"users_email_key":               domain.ErrDuplicateEmail,
}

// translate turns driver errors into domain errors where one applies.
// notFound is returned for pgx.ErrNoRows when it is not nil.
func translate(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if notFound != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		if mapped, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			return mapped
		}
	}

	return err
}

// isRetryableError checks if a PostgreSQL error should trigger a retry.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure:
			return true
		}
	}
	return false
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return "unknown"
}
