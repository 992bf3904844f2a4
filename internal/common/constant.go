// Package common contains shared constants and small helpers used across
// the MeetDeck client layers.
package common

const (
	// AccessTokenKey and RefreshTokenKey are the fixed storage keys under
	// which the token pair is persisted. Both are always written and
	// cleared together.
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"

	// AuthorizationHeader carries the bearer access token on outbound
	// requests to the gateway.
	AuthorizationHeader = "Authorization"

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-Id"
)
