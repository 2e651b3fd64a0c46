package timesheeterrors

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
	ErrInvalidWeekStart = apperror.New(
		apperror.CodeInvalidInput,
		"week_start must be a Monday in YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidHours = apperror.New(
		apperror.CodeInvalidInput,
		"entry hours must be between 0 and 24",
		http.StatusBadRequest,
	)
	ErrEntryOutsideWeek = apperror.New(
		apperror.CodeInvalidInput,
		"entry work_date falls outside the timesheet week",
		http.StatusBadRequest,
	)
	ErrTimesheetNotFound = apperror.New(
		apperror.CodeNotFound,
		"timesheet not found",
		http.StatusNotFound,
	)
	ErrWeekAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"a timesheet for this employee and week already exists",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid timesheet status transition",
		http.StatusConflict,
	)
	ErrTimesheetNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"only draft timesheets can be edited",
		http.StatusConflict,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required when rejecting",
		http.StatusBadRequest,
	)
)
