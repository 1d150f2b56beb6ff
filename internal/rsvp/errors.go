package rsvp

import "fmt"

// ValidationError carries field-level messages for malformed reservation
// input. Always user-correctable.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid reservation input (%d field errors)", len(e.Fields))
}

// GatewayError wraps a payment-gateway failure. Surfaced as 502 and never
// retried within the request.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
