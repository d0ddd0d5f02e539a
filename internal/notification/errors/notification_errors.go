package notificationerrors

import (
	"net/http"

	"go-webtrack/internal/shared/apperror"
)

var (
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"notification not found",
		http.StatusNotFound,
	)
	ErrInvalidRecipientID = apperror.New(
		apperror.CodeValidation,
		"invalid recipient id",
		http.StatusBadRequest,
	)
	ErrInvalidReferenceID = apperror.New(
		apperror.CodeValidation,
		"invalid reference id",
		http.StatusBadRequest,
	)
)
