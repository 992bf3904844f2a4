// Package session holds the client-side authentication state machine.
//
// Session state is owned exclusively by a Manager; readers get value
// snapshots and all mutation happens through the operation set (Login,
// VerifyTwoFactor, Rehydrate, Logout). This single-writer discipline is what
// makes the transport's single-flight refresh safe to reason about.
package session

import "github.com/meetdeck/meetdeck-cli/internal/client/api"

// Status is the authentication state of the client.
type Status string

const (
	StatusAnonymous         Status = "anonymous"
	StatusAwaitingTwoFactor Status = "awaiting_two_factor"
	StatusAuthenticated     Status = "authenticated"
)

// Session is a point-in-time snapshot of the authentication state.
// Exactly one Status holds at any time.
//
// User and the token fields are set only when authenticated.
// TwoFactorToken is the short-lived challenge handle held in memory while a
// second factor is pending; it is never persisted and grants no API access.
// Loading is true while an operation is in flight: UI should disable inputs
// and show a busy indicator. Err carries the last operation's failure
// message and is cleared at the start of each new attempt.
type Session struct {
	Status         Status
	User           *api.User
	AccessToken    string
	RefreshToken   string
	TwoFactorToken string
	Loading        bool
	Err            string
}

// clone returns a deep-enough copy safe to hand to readers: the User record
// is duplicated so callers cannot reach back into manager-owned state.
func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
