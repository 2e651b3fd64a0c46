package employee

import (
	"errors"

	employeeerrors "peopledesk/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapDuplicateError translates the storage-layer unique violation backstop
// into the conflict sentinel clients understand.
func mapDuplicateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "uq_employees_company_email" {
			return employeeerrors.ErrEmailAlreadyUsed
		}
	}
	return err
}
