// Package errors provides custom error types for the dues API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so wrapped
// copies still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked due to too many failed login attempts", StatusCode: http.StatusLocked}
	ErrInvalidAPIKey      = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrJobsNotConfigured  = &AppError{Code: "JOBS_NOT_CONFIGURED", Message: "Job endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// People and property errors.
var (
	ErrPersonNotFound        = &AppError{Code: "PERSON_NOT_FOUND", Message: "Person not found", StatusCode: http.StatusNotFound}
	ErrPersonHasDependents   = &AppError{Code: "PERSON_HAS_DEPENDENTS", Message: "Person has ownerships or payments and cannot be deleted", StatusCode: http.StatusConflict}
	ErrPropertyNotFound      = &AppError{Code: "PROPERTY_NOT_FOUND", Message: "Property not found", StatusCode: http.StatusNotFound}
	ErrPropertyHasDependents = &AppError{Code: "PROPERTY_HAS_DEPENDENTS", Message: "Property has ownerships or assessments and cannot be deleted", StatusCode: http.StatusConflict}
	ErrDuplicateParcel       = &AppError{Code: "DUPLICATE_PARCEL", Message: "A property with this parcel number already exists", StatusCode: http.StatusConflict}
	ErrOwnershipNotFound     = &AppError{Code: "OWNERSHIP_NOT_FOUND", Message: "Ownership not found", StatusCode: http.StatusNotFound}
	ErrInvalidOwnershipDates = &AppError{Code: "INVALID_OWNERSHIP_DATES", Message: "Ownership end date must not be before its start date", StatusCode: http.StatusBadRequest}
)

// Assessment and fee schedule errors.
var (
	ErrInvalidYear         = &AppError{Code: "INVALID_YEAR", Message: "Year must be between 2000 and 3000", StatusCode: http.StatusBadRequest}
	ErrAssessmentNotFound  = &AppError{Code: "ASSESSMENT_NOT_FOUND", Message: "Assessment not found", StatusCode: http.StatusNotFound}
	ErrFeeScheduleNotFound = &AppError{Code: "FEE_SCHEDULE_NOT_FOUND", Message: "Fee schedule not found", StatusCode: http.StatusNotFound}
	ErrNegativeFeeAmount   = &AppError{Code: "INVALID_FEE_AMOUNT", Message: "Fee amount must not be negative", StatusCode: http.StatusBadRequest}
)

// Payment and allocation errors.
var (
	ErrPaymentNotFound          = &AppError{Code: "PAYMENT_NOT_FOUND", Message: "Payment not found", StatusCode: http.StatusNotFound}
	ErrInvalidAmount            = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrInvalidPaymentType       = &AppError{Code: "INVALID_PAYMENT_TYPE", Message: "Unsupported payment type", StatusCode: http.StatusBadRequest}
	ErrInvalidAllocationMode    = &AppError{Code: "INVALID_ALLOCATION_MODE", Message: "Unsupported allocation mode", StatusCode: http.StatusBadRequest}
	ErrTargetAssessmentRequired = &AppError{Code: "TARGET_ASSESSMENT_REQUIRED", Message: "Target assessment must be selected", StatusCode: http.StatusBadRequest}
	ErrDonationNotAllocatable   = &AppError{Code: "DONATION_NOT_ALLOCATABLE", Message: "Donations are never allocated to assessments", StatusCode: http.StatusBadRequest}
	ErrPaymentAlreadyAllocated  = &AppError{Code: "PAYMENT_ALREADY_ALLOCATED", Message: "Payment has already been allocated", StatusCode: http.StatusConflict}
)

// Utility notice errors.
var (
	ErrUtilityNoticeNotFound = &AppError{Code: "UTILITY_NOTICE_NOT_FOUND", Message: "Utility notice not found", StatusCode: http.StatusNotFound}
	ErrNoticeAlreadyPaid     = &AppError{Code: "NOTICE_ALREADY_PAID", Message: "Utility notice already produced a payment", StatusCode: http.StatusConflict}
)
