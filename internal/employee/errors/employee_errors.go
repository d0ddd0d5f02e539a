package employeeerrors

import (
	"net/http"

	"go-webtrack/internal/shared/apperror"
)

var ErrEmployeeNotFound = apperror.New(
	apperror.CodeNotFound,
	"employee not found",
	http.StatusNotFound,
)
