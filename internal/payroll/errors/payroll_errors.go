package payrollerrors

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
	ErrInvalidCycleID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll cycle id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"period_start must be before period_end, both YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrCycleNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll cycle not found",
		http.StatusNotFound,
	)
	ErrDocumentNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll document not found",
		http.StatusNotFound,
	)
	ErrCycleClosed = apperror.New(
		apperror.CodeInvalidState,
		"payroll cycle is closed",
		http.StatusConflict,
	)
	ErrInvalidCycleTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll cycle status transition",
		http.StatusConflict,
	)
	ErrStorageUpload = apperror.New(
		apperror.CodeUpstreamError,
		"document storage is unavailable",
		http.StatusBadGateway,
	)
)
