package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cadenza/internal/apiclient"
	"cadenza/internal/console"
	"cadenza/pkg/models"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// maxBodySize bounds request bodies
const maxBodySize = 64 * 1024

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    int               `json:"code"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// respondJSON writes v with the given status
func (s *ConsoleServer) respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
		http.Error(w, `{"success":false,"error":"encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// respondOK wraps data in a success envelope
func (s *ConsoleServer) respondOK(w http.ResponseWriter, data any) {
	s.respondJSON(w, http.StatusOK, models.Envelope[any]{Success: true, Data: data})
}

// respondWithValidationError sends a structured validation error response
func (s *ConsoleServer) respondWithValidationError(w http.ResponseWriter, r *http.Request, errs ...ValidationError) {
	s.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"errors": errs,
	}).Warn("Validation failed")

	resp := errorResponse{
		Success: false,
		Code:    http.StatusBadRequest,
		Errors:  errs,
	}
	if len(errs) > 0 {
		resp.Error = errs[0].Message
	}
	s.respondJSON(w, http.StatusBadRequest, resp)
}

// respondWithError sends a structured error response
func (s *ConsoleServer) respondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string, err error) {
	logEntry := s.logger.WithFields(logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status_code": statusCode,
		"message":     message,
	})
	if err != nil {
		logEntry = logEntry.WithError(err)
	}

	if statusCode >= 500 {
		logEntry.Error("Server error")
	} else {
		logEntry.Warn("Client error")
	}

	s.respondJSON(w, statusCode, errorResponse{
		Success: false,
		Error:   message,
		Code:    statusCode,
	})
}

// respondForError maps a console error to its status code
func (s *ConsoleServer) respondForError(w http.ResponseWriter, r *http.Request, err error) {
	var trErr *apiclient.TransportError
	switch {
	case errors.Is(err, console.ErrValidation):
		s.respondWithError(w, r, http.StatusBadRequest, strings.TrimPrefix(err.Error(), console.ErrValidation.Error()+": "), nil)
	case errors.As(err, &trErr), apiclient.IsEnvelopeError(err):
		s.respondWithError(w, r, http.StatusBadGateway, apiclient.Reason(err), err)
	default:
		s.respondWithError(w, r, http.StatusInternalServerError, "Storage failure", err)
	}
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(r *http.Request, v any) *ValidationError {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return &ValidationError{Field: "body", Message: "Could not read request body", Code: "UNREADABLE_BODY"}
	}
	if len(body) > maxBodySize {
		return &ValidationError{Field: "body", Message: "Request body too large", Code: "BODY_TOO_LARGE"}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ValidationError{Field: "body", Message: "Invalid JSON", Code: "INVALID_JSON"}
	}
	return nil
}

// parseOptionalInt parses a query value, zero when absent
func parseOptionalInt(field, raw string) (int, *ValidationError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{
			Field:   field,
			Message: field + " must be a valid integer",
			Code:    "INVALID_" + strings.ToUpper(field) + "_FORMAT",
		}
	}
	if n < 0 {
		return 0, &ValidationError{
			Field:   field,
			Message: field + " must not be negative",
			Code:    "INVALID_" + strings.ToUpper(field) + "_VALUE",
		}
	}
	return n, nil
}

// sanitizeInput removes null bytes and surrounding whitespace
func sanitizeInput(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}
