package leavebalanceerrors

import (
	"net/http"

	"go-webtrack/internal/shared/apperror"
)

var (
	ErrLeaveBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found",
		http.StatusNotFound,
	)
	ErrLeaveBalanceExists = apperror.New(
		apperror.CodeConflict,
		"leave balance already exists for this employee, leave type and year",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrUsedExceedsTotal = apperror.New(
		apperror.CodeValidation,
		"used_days cannot exceed total_days",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeValidation,
		"invalid employee id",
		http.StatusBadRequest,
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

// InsufficientBalance reports how many days were available against how many were asked for.
func InsufficientBalance(available, requested int) *apperror.AppError {
	return ErrInsufficientBalance.WithDetails(map[string]int{
		"available": available,
		"requested": requested,
	})
}
