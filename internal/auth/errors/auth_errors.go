package autherrors

import (
	"net/http"

	"peopledesk/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"invalid email or password",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		"INVALID_TOKEN",
		"invalid or malformed token",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		"TOKEN_EXPIRED",
		"token has expired",
		http.StatusUnauthorized,
	)
	ErrNotRefreshToken = apperror.New(
		"INVALID_TOKEN",
		"token is not a refresh token",
		http.StatusUnauthorized,
	)
	ErrAccountLocked = apperror.New(
		apperror.CodeForbidden,
		"account is temporarily locked after repeated failed logins",
		http.StatusLocked,
	)
	ErrAccountDisabled = apperror.New(
		apperror.CodeForbidden,
		"account is suspended or inactive",
		http.StatusForbidden,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"you do not have permission to perform this action",
		http.StatusForbidden,
	)
)
