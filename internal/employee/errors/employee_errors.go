package employeeerrors

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
	ErrInvalidHireDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid hire date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidSalary = apperror.New(
		apperror.CodeInvalidInput,
		"base salary must be zero or greater",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"unknown employee status",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrManagerNotFound = apperror.New(
		apperror.CodeNotFound,
		"manager not found in this company",
		http.StatusNotFound,
	)
	ErrEmailAlreadyUsed = apperror.New(
		apperror.CodeConflict,
		"an employee with this email already exists in the company",
		http.StatusConflict,
	)
)
