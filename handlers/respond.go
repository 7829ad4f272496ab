package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

func jsonResponse(payload interface{}, writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		logrus.WithError(err).Error("Error writing response")
	}
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// errorResponse maps a service error onto a status code and a safe body.
// Unknown errors collapse to a generic 500, the body never carries driver
// or provider internals.
func errorResponse(writer http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusBadRequest)
		jsonResponse(errorBody{Error: "Validation failed", Fields: validation.Fields}, writer)
		return
	}

	status := http.StatusInternalServerError
	message := apperrors.InternalServerError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
	}

	if status != http.StatusInternalServerError {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			message = appErr.Error()
		} else {
			message = err.Error()
		}
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	jsonResponse(errorBody{Error: message}, writer)
}

func badRequest(writer http.ResponseWriter, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusBadRequest)
	jsonResponse(errorBody{Error: message}, writer)
}
