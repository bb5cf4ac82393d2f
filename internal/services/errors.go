// Package services sits between the HTTP handlers and the analytics core.
// It applies configured defaults, records metrics around every algorithm run
// and translates core errors into ServiceErrors.
package services

import (
	"errors"

	"github.com/vitalsight/vitalsight/internal/analytics"
)

// Error codes carried by ServiceError
const (
	CodeInsufficientData  = "INSUFFICIENT_DATA"
	CodeDimensionMismatch = "DIMENSION_MISMATCH"
	CodeInvalidParameter  = "INVALID_PARAMETER"
	CodeUnknownAlgorithm  = "UNKNOWN_ALGORITHM"
	CodeNotTrained        = "NOT_TRAINED"
	CodeModelNotFound     = "MODEL_NOT_FOUND"
	CodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	CodeInternal          = "INTERNAL_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`

	cause error
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Unwrap returns the core error the ServiceError was built from, if any
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// FromError converts a core error into a ServiceError. ServiceErrors pass
// through unchanged and nil stays nil.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	out := &ServiceError{Code: CodeInternal, Message: err.Error(), cause: err}

	var insufficient *analytics.InsufficientDataError
	switch {
	case errors.As(err, &insufficient):
		out.Code = CodeInsufficientData
		out.Details = map[string]interface{}{
			"operation": insufficient.Op,
			"need":      insufficient.Need,
			"have":      insufficient.Have,
		}
	case errors.Is(err, analytics.ErrInsufficientData):
		out.Code = CodeInsufficientData
	case errors.Is(err, analytics.ErrDimensionMismatch):
		out.Code = CodeDimensionMismatch
	case errors.Is(err, analytics.ErrInvalidParameter):
		out.Code = CodeInvalidParameter
	case errors.Is(err, analytics.ErrUnknownAlgorithm):
		out.Code = CodeUnknownAlgorithm
	case errors.Is(err, analytics.ErrNotTrained):
		out.Code = CodeNotTrained
	}
	return out
}
