// Package tokens owns persisted gateway credentials. It is the only code in
// the client allowed to touch token storage; both the refresh path in the
// HTTP transport and the explicit session operations go through a Store.
package tokens

import "context"

// Store persists the access/refresh token pair across process restarts.
//
// Contract:
//   - Access/Refresh return an empty string (not an error) when no value
//     is stored.
//   - SetPair replaces both values in a single transaction; the pair is
//     never written piecemeal.
//   - Clear removes both values and is idempotent.
type Store interface {
	Access(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
	SetPair(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}
