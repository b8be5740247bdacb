package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type ErrorCode string

const (
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeRateLimit        ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavail   ErrorCode = "SERVICE_UNAVAILABLE"
	CodeDatasetNotFound  ErrorCode = "DATASET_NOT_FOUND"
	CodeSchemaMismatch   ErrorCode = "SCHEMA_MISMATCH"
	CodeMalformedDataset ErrorCode = "MALFORMED_DATASET"
)

type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Fields     []string  `json:"fields,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// withRequestID returns a copy so shared fatal errors are never mutated per request.
func (e *AppError) withRequestID(requestID string) *AppError {
	cp := *e
	cp.RequestID = requestID
	return &cp
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCode(code),
		Timestamp:  time.Now().UTC(),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCode(code),
		Cause:      err,
		Timestamp:  time.Now().UTC(),
	}
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func InternalWrap(err error, message string) *AppError {
	return Wrap(err, CodeInternal, message)
}

func ValidationWrap(err error, message string) *AppError {
	return Wrap(err, CodeValidation, message)
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func BadRequestWrap(err error, message string) *AppError {
	return Wrap(err, CodeBadRequest, message)
}

func RateLimit(message string) *AppError {
	return New(CodeRateLimit, message)
}

// DatasetNotFound reports an absent input file.
func DatasetNotFound(path string, cause error) *AppError {
	e := Wrap(cause, CodeDatasetNotFound, fmt.Sprintf("Dataset file '%s' not found. Please upload it.", path))
	e.Details = path
	return e
}

// SchemaMismatch lists every required column absent from the header.
func SchemaMismatch(missing []string) *AppError {
	e := New(CodeSchemaMismatch, "Missing required columns: "+strings.Join(missing, ", "))
	e.Fields = append([]string(nil), missing...)
	return e
}

func MalformedDataset(row int, column string, cause error) *AppError {
	e := Wrap(cause, CodeMalformedDataset, fmt.Sprintf("Malformed dataset at row %d, column %q", row, column))
	if column != "" {
		e.Fields = []string{column}
	}
	return e
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func getStatusCode(code ErrorCode) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeServiceUnavail, CodeDatasetNotFound, CodeSchemaMismatch, CodeMalformedDataset:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Success bool      `json:"success"`
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, err error, requestID string) {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		appErr = Internal("An unexpected error occurred")
		appErr.Cause = err
	}

	appErr = appErr.withRequestID(requestID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	response := ErrorResponse{
		Error:   appErr,
		Success: false,
	}

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		logger.Error("failed to encode error response",
			"encode_error", encodeErr,
			"original_error", err,
			"request_id", requestID,
		)
		return
	}

	logLevel := slog.LevelError
	if appErr.StatusCode < 500 {
		logLevel = slog.LevelWarn
	}

	logger.Log(context.TODO(), logLevel, "request failed",
		"error_code", appErr.Code,
		"error_message", appErr.Message,
		"status_code", appErr.StatusCode,
		"request_id", requestID,
		"cause", appErr.Cause,
	)
}

type SuccessResponse struct {
	Data    any  `json:"data"`
	Success bool `json:"success"`
}

// WriteSuccess encodes before writing the status, so an unencodable payload
// becomes a 500 error envelope instead of an empty 200.
func WriteSuccess(w http.ResponseWriter, data any) {
	response := SuccessResponse{
		Data:    data,
		Success: true,
	}

	body, err := json.Marshal(response)
	if err != nil {
		WriteError(w, slog.Default(), InternalWrap(err, "failed to encode response"), "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(append(body, '\n'))
}

func WriteSuccessWithHeaders(w http.ResponseWriter, data any, headers map[string]string) {
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	WriteSuccess(w, data)
}
