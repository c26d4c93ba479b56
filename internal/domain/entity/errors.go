package entity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind names a failure category exposed to clients
type ErrorKind string

const (
	KindConfigurationMissing    ErrorKind = "configuration_required"
	KindConfigurationIncomplete ErrorKind = "configuration_incomplete"
	KindSequenceViolation       ErrorKind = "sequence_error"
	KindPayloadMalformed        ErrorKind = "json_decode_error"
	KindTransportTimeout        ErrorKind = "timeout_error"
	KindTransportConnection     ErrorKind = "connection_error"
	KindTransportHTTP           ErrorKind = "request_error"
	KindStatementFailure        ErrorKind = "statement_error"
	KindTaskFailure             ErrorKind = "task_error"
	KindNotFound                ErrorKind = "not_found"
	KindInvalidInput            ErrorKind = "invalid_input"
	KindSessionBusy             ErrorKind = "session_busy"
	KindInternal                ErrorKind = "internal_error"
)

// AppError is a classified failure carrying its HTTP status
type AppError struct {
	Kind       ErrorKind
	HTTPStatus int
	Message    string
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil && !strings.Contains(e.Message, e.Err.Error()) {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// AsAppError extracts an AppError from err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal when unclassified
func KindOf(err error) ErrorKind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func ErrConfigurationMissing(flightID uint) *AppError {
	return &AppError{
		Kind:       KindConfigurationMissing,
		HTTPStatus: http.StatusBadRequest,
		Message:    "Mock configuration not found. Please configure callback URL first.",
		Details:    map[string]interface{}{"flight_id": flightID},
	}
}

func ErrConfigurationIncomplete(message string) *AppError {
	return &AppError{
		Kind:       KindConfigurationIncomplete,
		HTTPStatus: http.StatusBadRequest,
		Message:    message,
	}
}

func ErrSequenceViolation(details map[string]interface{}) *AppError {
	return &AppError{
		Kind:       KindSequenceViolation,
		HTTPStatus: http.StatusBadRequest,
		Message:    "Cannot play this event. Events must be played in sequence.",
		Details:    details,
	}
}

func ErrPayloadMalformed(eventID uint, raw string, err error) *AppError {
	if len(raw) > 500 {
		raw = raw[:500]
	}
	return &AppError{
		Kind:       KindPayloadMalformed,
		HTTPStatus: http.StatusBadRequest,
		Message:    "Failed to parse event data. Invalid JSON format.",
		Details: map[string]interface{}{
			"event_id":  eventID,
			"error":     fmt.Sprint(err),
			"raw_event": raw,
		},
		Err: err,
	}
}

func ErrTransportTimeout(url string, timeoutSeconds float64, err error) *AppError {
	return &AppError{
		Kind:       KindTransportTimeout,
		HTTPStatus: http.StatusGatewayTimeout,
		Message:    fmt.Sprintf("Request timed out after %g seconds. The server is not responding.", timeoutSeconds),
		Details:    map[string]interface{}{"url": url},
		Err:        err,
	}
}

func ErrTransportConnection(url string, err error) *AppError {
	return &AppError{
		Kind:       KindTransportConnection,
		HTTPStatus: http.StatusServiceUnavailable,
		Message:    "Failed to connect to the server. Please check if the callback URL is accessible.",
		Details:    map[string]interface{}{"url": url},
		Err:        err,
	}
}

func ErrTransportHTTP(url string, statusCode int, body string) *AppError {
	return &AppError{
		Kind:       KindTransportHTTP,
		HTTPStatus: http.StatusInternalServerError,
		Message:    fmt.Sprintf("Failed to send event: callback responded with status %d", statusCode),
		Details: map[string]interface{}{
			"url":         url,
			"status_code": statusCode,
			"response":    body,
		},
	}
}

func ErrTransportRequest(url string, err error) *AppError {
	return &AppError{
		Kind:       KindTransportHTTP,
		HTTPStatus: http.StatusInternalServerError,
		Message:    fmt.Sprintf("Failed to send event: %v", err),
		Details:    map[string]interface{}{"url": url},
		Err:        err,
	}
}

func ErrStatementFailure(index int, query, message string, err error) *AppError {
	return &AppError{
		Kind:       KindStatementFailure,
		HTTPStatus: http.StatusBadRequest,
		Message:    fmt.Sprintf("Query failed: %s", message),
		Details: map[string]interface{}{
			"query_index": index,
			"query":       query,
		},
		Err: err,
	}
}

func ErrTaskFailure(name string, err error) *AppError {
	return &AppError{
		Kind:       KindTaskFailure,
		HTTPStatus: http.StatusInternalServerError,
		Message:    fmt.Sprintf("Task %s failed: %v", name, err),
		Details:    map[string]interface{}{"task": name},
		Err:        err,
	}
}

func ErrNotFound(message string) *AppError {
	return &AppError{
		Kind:       KindNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    message,
	}
}

func ErrInvalidInput(message string) *AppError {
	return &AppError{
		Kind:       KindInvalidInput,
		HTTPStatus: http.StatusBadRequest,
		Message:    message,
	}
}

func ErrSessionBusy(flightID uint) *AppError {
	return &AppError{
		Kind:       KindSessionBusy,
		HTTPStatus: http.StatusConflict,
		Message:    "Another operation is in progress for this flight",
		Details:    map[string]interface{}{"flight_id": flightID},
	}
}

func ErrInternal(message string, err error) *AppError {
	return &AppError{
		Kind:       KindInternal,
		HTTPStatus: http.StatusInternalServerError,
		Message:    message,
		Err:        err,
	}
}
