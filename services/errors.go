package services

import "errors"

// Sentinel errors returned by the lifecycle, settlement and payment services.
// Controllers map these onto HTTP statuses; anything else is an internal error.
var (
	ErrNotFound         = errors.New("record not found")
	ErrAlreadySubmitted = errors.New("task already submitted")
	ErrTaskExhausted    = errors.New("task is not available")
	ErrAlreadyProcessed = errors.New("transaction already processed")
)

// ValidationError carries field-level messages for a 422 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// GatewayError reports a payment-gateway failure with the gateway's own
// message passed through to the caller.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}
