package leavepolicyerrors

import (
	"net/http"

	"go-webtrack/internal/shared/apperror"
)

var (
	ErrLeavePolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave policy not found",
		http.StatusNotFound,
	)
	ErrLeavePolicyExists = apperror.New(
		apperror.CodeConflict,
		"leave type already has a policy",
		http.StatusConflict,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeValidation,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeValidation,
		"invalid company id",
		http.StatusBadRequest,
	)
)
