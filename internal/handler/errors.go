package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	apperrors "equipment-maintenance-api/pkg/errors"
)

// ErrorHandler provides centralized error handling functionality for handlers.
type ErrorHandler struct {
	Logger *log.Logger
}

// NewErrorHandler creates a new ErrorHandler instance.
func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorHandler{
		Logger: logger,
	}
}

// SendErrorResponse sends a structured error response.
func (e *ErrorHandler) SendErrorResponse(w http.ResponseWriter, statusCode int, message, code string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		e.Logger.Printf("Failed to encode error response: %v", err)
	}
}

// SendSuccessResponse sends a structured success response.
func (e *ErrorHandler) SendSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := SuccessResponse{
		Message: message,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		e.Logger.Printf("Failed to encode success response: %v", err)
	}
}

// SendJSONResponse sends a generic JSON response.
func (e *ErrorHandler) SendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		e.Logger.Printf("Failed to encode JSON response: %v", err)
		e.SendErrorResponse(w, http.StatusInternalServerError, "Failed to encode response", "ENCODING_ERROR", nil)
	}
}

// HandleServiceError maps service-layer errors to HTTP responses. Every
// error is recoverable: the operation is aborted and the message surfaced.
func (e *ErrorHandler) HandleServiceError(w http.ResponseWriter, err error, operation string) {
	e.Logger.Printf("Service error during %s: %v", operation, err)

	if appErr, ok := apperrors.AsAppError(err); ok {
		e.SendErrorResponse(w, appErr.GetHTTPStatus(), appErr.Message, string(appErr.Code), appErr.Details)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		e.SendErrorResponse(w, http.StatusRequestTimeout, "Operation timed out", "TIMEOUT", nil)
		return
	}

	e.SendErrorResponse(w, http.StatusInternalServerError,
		fmt.Sprintf("Failed to %s", operation), "INTERNAL_ERROR", nil)
}

// HandleJSONDecodeError handles JSON decoding errors.
func (e *ErrorHandler) HandleJSONDecodeError(w http.ResponseWriter, err error) {
	e.Logger.Printf("JSON decode error: %v", err)
	e.SendErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_JSON", nil)
}

// RequireEquipmentID validates that the path carried a non-empty equipment ID.
func (e *ErrorHandler) RequireEquipmentID(w http.ResponseWriter, id string) bool {
	if id == "" {
		e.SendErrorResponse(w, http.StatusBadRequest, "Equipment ID is required", "VALIDATION_ERROR", nil)
		return false
	}
	return true
}
