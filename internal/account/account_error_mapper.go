package account

import (
	"errors"
	"strings"

	accounterrors "peopledesk/internal/account/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapDuplicateError translates storage-layer uniqueness violations into the
// provisioning conflict errors. The unique constraints are the final backstop
// behind the service-level pre-checks.
func mapDuplicateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return accounterrors.ErrAccountNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "uq_accounts_email":
				return accounterrors.ErrEmailAlreadyUsed
			case "uq_employees_account_id":
				return accounterrors.ErrEmployeeAlreadyLinked
			}
			return accounterrors.ErrEmailAlreadyUsed
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") {
		return accounterrors.ErrEmailAlreadyUsed
	}

	return err
}
