package accounterrors

import (
	"net/http"

	"peopledesk/internal/shared/apperror"
)

var (
	ErrInvalidAccountID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid account id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"role must be ADMIN or EMPLOYEE",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be ACTIVE or SUSPENDED",
		http.StatusBadRequest,
	)
	ErrPasswordTooShort = apperror.New(
		apperror.CodeInvalidInput,
		"password must be at least 8 characters",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrAccountNotFound = apperror.New(
		apperror.CodeNotFound,
		"account not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyLinked = apperror.New(
		apperror.CodeConflict,
		"employee is already linked to an account",
		http.StatusConflict,
	)
	ErrAccountAlreadyLinked = apperror.New(
		apperror.CodeConflict,
		"account is already linked to an employee",
		http.StatusConflict,
	)
	ErrEmailAlreadyUsed = apperror.New(
		apperror.CodeConflict,
		"an account with this email already exists",
		http.StatusConflict,
	)
	ErrAccountNotLinked = apperror.New(
		apperror.CodeConflict,
		"account is not linked to any employee",
		http.StatusConflict,
	)
	ErrIdentityProvider = apperror.New(
		apperror.CodeUpstreamError,
		"identity provider request failed",
		http.StatusBadGateway,
	)
)
