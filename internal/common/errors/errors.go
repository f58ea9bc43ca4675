// Package errors provides the standardized error model shared by the HTTP API
// and the Zeebe workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Kinds and codes
// ==========================

// Kind is the closed set of failure categories surfaced to callers.
type Kind string

const (
	KindUnauthenticated  Kind = "Unauthenticated"
	KindNotFound         Kind = "NotFound"
	KindUpstreamFailure  Kind = "UpstreamFailure"
	KindValidationFailed Kind = "ValidationFailed"
	KindConflictOrRace   Kind = "ConflictOrRace"
)

// ErrorCode is a stable machine-readable code carried next to the kind.
type ErrorCode string

const (
	ErrCodeNotAuthenticated ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"

	ErrCodeProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeScholarshipNotFound ErrorCode = "SCHOLARSHIP_NOT_FOUND"
	ErrCodeTaskNotFound        ErrorCode = "TASK_NOT_FOUND"
	ErrCodeSubtaskNotFound     ErrorCode = "SUBTASK_NOT_FOUND"
	ErrCodeFileNotFound        ErrorCode = "FILE_NOT_FOUND"
	ErrCodeMentorNotFound      ErrorCode = "MENTOR_NOT_FOUND"
	ErrCodeTimeslotNotFound    ErrorCode = "TIMESLOT_NOT_FOUND"
	ErrCodeResourceNotFound    ErrorCode = "RESOURCE_NOT_FOUND"

	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnknownCategory     ErrorCode = "UNKNOWN_CATEGORY"
	ErrCodeFileTooLarge        ErrorCode = "FILE_TOO_LARGE"
	ErrCodeUnsupportedFileType ErrorCode = "UNSUPPORTED_FILE_TYPE"
	ErrCodeMentorNotVerified   ErrorCode = "MENTOR_NOT_VERIFIED"
	ErrCodeWizardIncomplete    ErrorCode = "WIZARD_INCOMPLETE"
	ErrCodeUnknownTemplate     ErrorCode = "UNKNOWN_TEMPLATE"
	ErrCodeRateLimited         ErrorCode = "RATE_LIMITED"

	ErrCodeVersionConflict   ErrorCode = "VERSION_CONFLICT"
	ErrCodeSlotAlreadyBooked ErrorCode = "SLOT_ALREADY_BOOKED"
	ErrCodeMentorExists      ErrorCode = "MENTOR_ALREADY_REGISTERED"

	ErrCodeGenerationFailed       ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout      ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeSchemaViolation        ErrorCode = "SCHEMA_VIOLATION"
	ErrCodeDatabaseFailed         ErrorCode = "DATABASE_FAILED"
	ErrCodeObjectStoreFailed      ErrorCode = "OBJECT_STORE_FAILED"
	ErrCodeSearchFailed           ErrorCode = "SEARCH_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeExternalService        ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Kind      Kind                   `json:"kind"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a metadata entry and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(kind Kind, code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Kind:      kind,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Constructors
// ==========================

func NewUnauthenticatedError(details string) *StandardError {
	return newError(KindUnauthenticated, ErrCodeNotAuthenticated, "Not authenticated", details, false, nil)
}

func NewForbiddenError(details string) *StandardError {
	return newError(KindUnauthenticated, ErrCodeForbidden, "Not allowed", details, false, nil)
}

// NewNotFoundError reports a missing resource. code picks the specific
// resource code; pass ErrCodeResourceNotFound when none fits.
func NewNotFoundError(code ErrorCode, resource, id string) *StandardError {
	return newError(KindNotFound, code, fmt.Sprintf("%s not found", resource), fmt.Sprintf("id: %s", id), false, nil).
		WithMetadata("resource", resource)
}

func NewValidationError(code ErrorCode, message, details string) *StandardError {
	return newError(KindValidationFailed, code, message, details, false, nil)
}

// NewFieldValidationError is NewValidationError for a single offending field.
func NewFieldValidationError(field, details string) *StandardError {
	return newError(KindValidationFailed, ErrCodeValidationFailed, "Validation failed", details, false, nil).
		WithMetadata("field", field)
}

func NewVersionConflictError(resource, id string, expected, actual int64) *StandardError {
	return newError(KindConflictOrRace, ErrCodeVersionConflict, fmt.Sprintf("%s was modified concurrently", resource),
		fmt.Sprintf("id: %s, expected version %d, found %d", id, expected, actual), true, nil)
}

func NewConflictError(code ErrorCode, message, details string) *StandardError {
	return newError(KindConflictOrRace, code, message, details, false, nil)
}

func NewGenerationFailedError(kind string, err error) *StandardError {
	return newError(KindUpstreamFailure, ErrCodeGenerationFailed, fmt.Sprintf("Failed to generate %s", kind), errDetails(err), true, err)
}

func NewGenerationTimeoutError(kind string, err error) *StandardError {
	return newError(KindUpstreamFailure, ErrCodeGenerationTimeout, fmt.Sprintf("Generating %s timed out", kind), errDetails(err), true, err)
}

func NewSchemaViolationError(details string) *StandardError {
	return newError(KindUpstreamFailure, ErrCodeSchemaViolation, "Generated payload violates the response schema", details, false, nil)
}

func NewDatabaseError(operation string, err error) *StandardError {
	return newError(KindUpstreamFailure, ErrCodeDatabaseFailed, "Database operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)), true, err)
}

func NewObjectStoreError(operation string, err error) *StandardError {
	return newError(KindUpstreamFailure, ErrCodeObjectStoreFailed, "Object storage operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)), true, err)
}

func NewSearchError(operation string, err error) *StandardError {
	return newError(KindUpstreamFailure, ErrCodeSearchFailed, "Search operation failed",
		fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)), true, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(KindUpstreamFailure, ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)), true, err)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(KindUpstreamFailure, ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), errDetails(err), true, err)
}

func NewRateLimitedError(details string) *StandardError {
	return newError(KindValidationFailed, ErrCodeRateLimited, "Too many requests", details, true, nil)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Inspection
// ==========================

// AsStandard extracts a *StandardError from anywhere in err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize always returns a StandardError; foreign errors become internal upstream failures.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr
	}
	return newError(KindUpstreamFailure, ErrCodeInternal, "Unexpected error", errDetails(err), false, err)
}

// KindOf reports the kind of err. nil maps to "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return Normalize(err).Kind
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// HTTPStatus maps an error to the status the API answers with.
func HTTPStatus(err error) int {
	stdErr := Normalize(err)
	switch stdErr.Code {
	case ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeForbidden:
		return http.StatusForbidden
	}
	switch stdErr.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindConflictOrRace:
		return http.StatusConflict
	case KindUpstreamFailure:
		if stdErr.Code == ErrCodeInternal {
			return http.StatusInternalServerError
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns the retry budget a worker should request for err.
func GetRetryCount(err error) int {
	stdErr := Normalize(err)
	if !stdErr.Retryable {
		return 0
	}
	switch stdErr.Code {
	case ErrCodeGenerationTimeout:
		return 1
	case ErrCodeVersionConflict:
		return 2
	default:
		return 3
	}
}

// GetErrorCategory groups a code for dashboards and log queries.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AUTH") || code == ErrCodeForbidden:
		return "AUTH"
	case strings.Contains(codeStr, "GENERATION") || strings.Contains(codeStr, "SCHEMA"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "VERSION"):
		return "DATABASE"
	case strings.Contains(codeStr, "OBJECT_STORE") || strings.Contains(codeStr, "FILE"):
		return "STORAGE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "UNKNOWN") || strings.Contains(codeStr, "UNSUPPORTED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
