package error

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidRequest      = 4000
	CodeInvalidCredentials  = 4010
	CodeTokenInvalid        = 4011
	CodeTokenExpired        = 4012
	CodeAccountInactive     = 4013
	CodeInsufficientCredits = 4020
	CodeNoJobLinks          = 4030
	CodeTooManyJobLinks     = 4031
	CodeFileTooLarge        = 4032
	CodeUnsupportedFile     = 4033
	CodeCorruptFile         = 4034
	CodeEmailTaken          = 4090
	CodeDuplicateSession    = 4091
	CodeUserNotFound        = 4040

	// 5xxx - Server and upstream errors
	CodeInternalServer  = 5000
	CodeLLMResponse     = 5020
	CodeJobFetchFailed  = 5021
	CodePaymentProvider = 5022
)

// Base error types
var (
	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidCredentials is returned on wrong email/password combinations
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenInvalid is returned when a bearer, reset or verification token
	// cannot be validated
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned when a reset or verification token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrAccountInactive is returned when the authenticated account is disabled
	ErrAccountInactive = errors.New("account is inactive")

	// ErrInsufficientCredits is returned when the user has no remaining analyses
	ErrInsufficientCredits = errors.New("insufficient analysis credits")

	// ErrNoJobLinks is returned when no usable job link was submitted
	ErrNoJobLinks = errors.New("at least one job link is required")

	// ErrTooManyJobLinks is returned when more than the allowed number of job
	// links is submitted
	ErrTooManyJobLinks = errors.New("at most two job links are allowed per analysis")

	// ErrFileTooLarge is returned when the uploaded resume exceeds the size cap
	ErrFileTooLarge = errors.New("uploaded file is too large")

	// ErrUnsupportedFile is returned for content types other than PDF/DOC/DOCX
	ErrUnsupportedFile = errors.New("unsupported file format")

	// ErrCorruptFile is returned when the file content cannot be parsed
	ErrCorruptFile = errors.New("could not read file content")

	// ErrEmailTaken is returned when registering an already known email
	ErrEmailTaken = errors.New("email already registered")

	// ErrSessionProcessed is returned when a checkout session was already granted
	ErrSessionProcessed = errors.New("checkout session already processed")

	// ErrUserNotFound is returned when the requested user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrLLMResponse is returned when the completion API response is malformed
	// or missing required fields
	ErrLLMResponse = errors.New("analysis provider returned an invalid response")

	// ErrJobFetchFailed is returned when no job description could be fetched
	ErrJobFetchFailed = errors.New("could not fetch any job description")

	// ErrPaymentProvider is returned when the payment provider call fails
	ErrPaymentProvider = errors.New("payment provider error")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrTokenInvalid):
		return CodeTokenInvalid
	case errors.Is(err, ErrTokenExpired):
		return CodeTokenExpired
	case errors.Is(err, ErrAccountInactive):
		return CodeAccountInactive
	case errors.Is(err, ErrInsufficientCredits):
		return CodeInsufficientCredits
	case errors.Is(err, ErrNoJobLinks):
		return CodeNoJobLinks
	case errors.Is(err, ErrTooManyJobLinks):
		return CodeTooManyJobLinks
	case errors.Is(err, ErrFileTooLarge):
		return CodeFileTooLarge
	case errors.Is(err, ErrUnsupportedFile):
		return CodeUnsupportedFile
	case errors.Is(err, ErrCorruptFile):
		return CodeCorruptFile
	case errors.Is(err, ErrEmailTaken):
		return CodeEmailTaken
	case errors.Is(err, ErrSessionProcessed):
		return CodeDuplicateSession
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrLLMResponse):
		return CodeLLMResponse
	case errors.Is(err, ErrJobFetchFailed):
		return CodeJobFetchFailed
	case errors.Is(err, ErrPaymentProvider):
		return CodePaymentProvider
	default:
		return CodeInternalServer
	}
}

// HTTPStatus maps a domain error to the HTTP status code returned to clients
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrNoJobLinks),
		errors.Is(err, ErrTooManyJobLinks),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrUnsupportedFile),
		errors.Is(err, ErrCorruptFile),
		errors.Is(err, ErrTokenExpired):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrAccountInactive):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrSessionProcessed):
		return http.StatusConflict
	case errors.Is(err, ErrLLMResponse),
		errors.Is(err, ErrJobFetchFailed),
		errors.Is(err, ErrPaymentProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsInsufficientCreditsError checks if the error is an insufficient credits error
func IsInsufficientCreditsError(err error) bool {
	return errors.Is(err, ErrInsufficientCredits)
}

// IsUserNotFoundError checks if the error is a user not found error
func IsUserNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsSessionProcessedError checks if the error is a duplicate checkout session error
func IsSessionProcessedError(err error) bool {
	return errors.Is(err, ErrSessionProcessed)
}

// AnalysisError represents a failure inside the analysis workflow,
// carrying the stage at which the request failed
type AnalysisError struct {
	UserID uint64
	Stage  string
	Err    error
}

// Error implements the error interface for AnalysisError
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed for user %d at stage %s: %v", e.UserID, e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *AnalysisError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "analysis_error",
		"user_id":    e.UserID,
		"stage":      e.Stage,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewAnalysisError creates a detailed analysis workflow error
func NewAnalysisError(userID uint64, stage string, err error) error {
	return &AnalysisError{UserID: userID, Stage: stage, Err: err}
}

// CreditError represents an error during a credit ledger mutation
type CreditError struct {
	UserID    uint64
	Remaining int
	Err       error
}

// Error implements the error interface for CreditError
func (e *CreditError) Error() string {
	return fmt.Sprintf("credit operation failed for user %d (remaining: %d): %v",
		e.UserID, e.Remaining, e.Err)
}

// Unwrap returns the underlying error
func (e *CreditError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *CreditError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "credit_error",
		"user_id":    e.UserID,
		"remaining":  e.Remaining,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}
