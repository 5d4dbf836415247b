package allocation

import "fmt"

// AllocationError is a typed service error with a stable code for callers.
type AllocationError struct {
	Code    string
	Message string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDataMissingError marks a lookup failure for data the request depends on.
func NewDataMissingError(msg string) error {
	return &AllocationError{Code: "dataMissing", Message: msg}
}

// NewInvalidRequestError marks a request the core cannot act on.
func NewInvalidRequestError(msg string) error {
	return &AllocationError{Code: "invalidRequest", Message: msg}
}
