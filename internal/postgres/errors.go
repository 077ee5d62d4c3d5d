package postgres

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a postgres unique constraint violation
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// ConstraintName returns the violated constraint, if any
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// WrapError maps driver errors onto the error taxonomy
func WrapError(err error, entity string, details map[string]any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	if IsUniqueViolation(err) {
		if details == nil {
			details = map[string]any{}
		}
		details["constraint"] = ConstraintName(err)
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithHintf("failed to access %s", entity).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}
