package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, production.ErrInvalidRange):
		BadRequest(w, "Start date must not be after end date", map[string]string{
			"start_date": err.Error(),
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		ServiceUnavailable(w, "Request canceled")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
