package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeDuplicateName   = "DUPLICATE_PRODUCT_NAME"
	ErrCodeProductNotFound = "PRODUCT_NOT_FOUND"
	ErrCodeRecordNotFound  = "PRICE_RECORD_NOT_FOUND"
	ErrCodeInvalidImport   = "INVALID_IMPORT"
	ErrCodeUnauthorised    = "UNAUTHORIZED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// DomainError is a business-logic error with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrDuplicateName   = NewDomainError(ErrCodeDuplicateName, "A product with this name is already registered")
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrRecordNotFound  = NewDomainError(ErrCodeRecordNotFound, "Price record not found")
)
