package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/apperr"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// errorCode returns the apperr code for err. Errors raised inside the
// adapter itself (bad ids, invalid payloads) are classified here too.
func errorCode(err error) apperr.Code {
	if code := apperr.CodeOf(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		return apperr.CodeInvalidID
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidDueDate):
		return apperr.CodeValidationFailed
	default:
		return ""
	}
}

// MapErrorToStatusCode maps an error to its HTTP status code. Errors
// without a code map to 500 so internal failures never leak as client errors.
func MapErrorToStatusCode(err error) int {
	if code := errorCode(err); code != "" {
		return code.Status()
	}
	return http.StatusInternalServerError
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error code. It never includes the error text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}
	return errorCode(err).Message()
}

// HandleAPIError writes the JSON error envelope for err. A non-empty
// message replaces the code's default client message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	code := errorCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), string(code), message, err)
}

// SanitizeValidationError turns a validator error into a short message
// naming the first failing field, without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "due_date":
		return "expected YYYY-MM-DD or an RFC 3339 timestamp"
	default:
		return "validation failed"
	}
}
