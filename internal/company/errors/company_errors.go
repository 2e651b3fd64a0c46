package companyerrors

import (
	"net/http"

	"peopledesk/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrCompanyNotFound = apperror.New(
		apperror.CodeNotFound,
		"company not found",
		http.StatusNotFound,
	)
)
