package leaveerrors

import (
	"net/http"

	"go-webtrack/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeValidation,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeValidation,
		"invalid actor id",
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
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeValidation,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidRange,
		"end_date must be on or after start_date",
		http.StatusBadRequest,
	)
	ErrMaxConsecutiveDays = apperror.New(
		apperror.CodePolicyViolation,
		"requested days exceed the maximum consecutive days allowed",
		http.StatusUnprocessableEntity,
	)
	ErrInsufficientNotice = apperror.New(
		apperror.CodePolicyViolation,
		"leave must be requested further in advance",
		http.StatusUnprocessableEntity,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
	ErrLeaveRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidStateTransition = apperror.New(
		apperror.CodeInvalidState,
		"leave request is no longer pending",
		http.StatusConflict,
	)
	ErrConcurrentUpdate = apperror.New(
		apperror.CodeConflict,
		"leave request was changed by another operation, reload and retry",
		http.StatusConflict,
	)
	ErrStatusWithEdits = apperror.New(
		apperror.CodeValidation,
		"a status change cannot be combined with other edits",
		http.StatusBadRequest,
	)
	ErrNothingToUpdate = apperror.New(
		apperror.CodeValidation,
		"no changes supplied",
		http.StatusBadRequest,
	)
)

func InvalidTransition(current string) *apperror.AppError {
	return ErrInvalidStateTransition.WithDetails(map[string]string{"status": current})
}

func MaxConsecutiveExceeded(max, requested int) *apperror.AppError {
	return ErrMaxConsecutiveDays.WithDetails(map[string]int{
		"max_consecutive_days": max,
		"requested":            requested,
	})
}

func InsufficientNotice(required, given int) *apperror.AppError {
	return ErrInsufficientNotice.WithDetails(map[string]int{
		"min_days_notice": required,
		"days_notice":     given,
	})
}
