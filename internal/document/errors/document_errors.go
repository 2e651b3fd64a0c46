package documenterrors

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
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidCategory = apperror.New(
		apperror.CodeInvalidInput,
		"category must be one of CONTRACT, IDENTITY, CERTIFICATE, OTHER",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found in this company",
		http.StatusNotFound,
	)
	ErrDocumentNotFound = apperror.New(
		apperror.CodeNotFound,
		"document not found",
		http.StatusNotFound,
	)
	ErrStorageUpload = apperror.New(
		apperror.CodeUpstreamError,
		"document storage is unavailable",
		http.StatusBadGateway,
	)
)
