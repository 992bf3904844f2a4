package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/meetdeck/meetdeck-cli/internal/client/api"
	"github.com/meetdeck/meetdeck-cli/internal/client/session"
)

// Status prints the session state, connectivity mode, and access token
// expiry (read from the unverified exp claim, display only).
func (a *App) Status(ctx context.Context) error {
	snap := a.session.Snapshot()

	a.out("Session:      " + string(snap.Status))
	a.out("Connectivity: " + string(a.Mode))

	if snap.Status != session.StatusAuthenticated {
		return nil
	}

	exp, err := api.AccessTokenExpiry(snap.AccessToken)
	if err != nil {
		a.out("Access token: expiry unknown")
		return nil
	}

	remaining := time.Until(exp).Round(time.Second)
	if remaining <= 0 {
		a.out("Access token: expired (will refresh on next request)")
		return nil
	}
	a.out(fmt.Sprintf("Access token: expires in %s", remaining))
	return nil
}
