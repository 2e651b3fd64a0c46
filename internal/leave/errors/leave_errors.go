package leaveerrors

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
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidPolicyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid policy id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidQuantity = apperror.New(
		apperror.CodeInvalidInput,
		"quantity must be greater than zero",
		http.StatusBadRequest,
	)
	ErrUnitMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"unit does not match the leave policy unit",
		http.StatusBadRequest,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeNotFound,
		"employee not found in this company",
		http.StatusNotFound,
	)
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave policy not found",
		http.StatusNotFound,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid leave request status transition",
		http.StatusConflict,
	)
	ErrRequestNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"only draft leave requests can be edited",
		http.StatusConflict,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be APPROVED or REJECTED",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required when rejecting",
		http.StatusBadRequest,
	)
)
