package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/meetdeck/meetdeck-cli/internal/client/api"
	"github.com/meetdeck/meetdeck-cli/internal/client/session"
	"github.com/meetdeck/meetdeck-cli/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates against the gateway. When
// the account has two-factor enabled, the gateway answers with a pending
// challenge and the user is immediately prompted for the code; a wrong code
// keeps the challenge pending so it can be retried.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	snap, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, api.ErrUnavailable) {
			a.out("Gateway unreachable, try again later.")
			a.setMode(ModeOffline)
			return err
		}
		a.out("Login failed: " + snap.Err)
		return err
	}

	if snap.Status == session.StatusAwaitingTwoFactor {
		return a.verifyTwoFactor(ctx, email, string(password))
	}

	a.out("Logged in as " + snap.User.Email)
	return nil
}

func (a *App) verifyTwoFactor(ctx context.Context, email, password string) error {
	for {
		code, err := getSimpleText(a.reader, "Enter two-factor code", os.Stdout)
		if err != nil {
			return err
		}

		snap, err := a.session.VerifyTwoFactor(ctx, email, password, code)
		if err != nil {
			if snap.Status == session.StatusAwaitingTwoFactor {
				a.out("Verification failed: " + snap.Err)
				retry, promptErr := getSimpleText(a.reader, "Try again? (y/n)", os.Stdout)
				if promptErr != nil {
					return promptErr
				}
				if retry == "y" || retry == "yes" {
					continue
				}
			}
			return err
		}

		a.out("Logged in as " + snap.User.Email)
		return nil
	}
}

// Logout tears down the session. Local state is cleared even when the
// gateway cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.out("Logged out.")
	return nil
}

// LogoutAll revokes every active session for the account, then clears the
// local one.
func (a *App) LogoutAll(ctx context.Context) error {
	if err := a.session.LogoutAll(ctx); err != nil {
		return err
	}
	a.out("Logged out everywhere.")
	return nil
}

// WhoAmI shows the authenticated user from the current session snapshot.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.session.Snapshot()
	if snap.Status != session.StatusAuthenticated {
		a.out("Not logged in.")
		return nil
	}
	u := snap.User
	a.out(fmt.Sprintf("%s %s <%s>, %s at %s", u.FirstName, u.LastName, u.Email, u.Role, u.OrganizationName))
	return nil
}
