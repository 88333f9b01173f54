package domain

import "fmt"

// ErrorType constants for API error categorization
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// APIError is the problem body returned for failed requests
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// NewAPIError creates a new APIError
func NewAPIError(errorType, title string, status int, detail string) *APIError {
	return &APIError{
		Type:   errorType,
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// ValidationMessages maps validator tags to human readable messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"min":      "Value is below the allowed minimum",
	"max":      "Value exceeds the allowed maximum",
	"gte":      "Value must be greater than or equal to the minimum",
	"gt":       "Value must be greater than the minimum",
	"oneof":    "Value is not one of the allowed options",
	"email":    "Must be a valid email address",
	"uuid":     "Must be a valid UUID",
	"datetime": "Must be a valid date",
}

// GetValidationMessage returns a friendly message for a validator tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Invalid value"
}
