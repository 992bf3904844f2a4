package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the gateway could not be reached at all
	// (connection refused, DNS failure, timeout). It never clears tokens.
	ErrUnavailable = errors.New("gateway unavailable")

	// ErrUnauthorized is a hard authentication failure: the gateway
	// rejected the credentials, or a request still got 401 after a
	// successful refresh and one retry.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired means the refresh token itself was rejected.
	// The token store has been cleared by the time callers see it.
	ErrSessionExpired = errors.New("session expired")
)

// GatewayError carries a gateway-reported failure. Message is forwarded
// verbatim from the response envelope so the UI can show it unchanged.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("gateway error (status %d)", e.StatusCode)
}
