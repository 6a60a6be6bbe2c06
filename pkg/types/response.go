// Package types holds the JSON envelopes shared by every API response.
// Success payloads ride under "data"; failures under "error" with one of the
// machine-readable codes from pkg/errors.
package types

// SuccessEnvelope wraps a 2xx payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a failure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps a non-2xx payload.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
