package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"catalog-service/internal/domain"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Message: message})
}

// RespondWithValidationErrors sends a 400 validation error response
func RespondWithValidationErrors(w http.ResponseWriter, message string, errors []ValidationError) {
	RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{
		Message: message,
		Details: errors,
	})
}

// RespondWithDomainError maps err onto the error taxonomy and writes the matching response.
// subject names the entity in not-found and duplicate messages, e.g. "Product".
// It returns the status code that was written.
func RespondWithDomainError(w http.ResponseWriter, err error, subject string) int {
	var ve *domain.ValidationError

	switch {
	case errors.As(err, &ve):
		RespondWithValidationErrors(w, ve.Message, []ValidationError{{Field: ve.Field, Message: ve.Message}})
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateName):
		RespondWithError(w, http.StatusBadRequest, subject+" already exists")
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, subject+" not found")
		return http.StatusNotFound
	case domain.IsStorageError(err):
		RespondWithError(w, http.StatusInternalServerError, "Failed to store uploaded file")
		return http.StatusInternalServerError
	default:
		RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return http.StatusInternalServerError
	}
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Message: "Internal Server Error"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}
