package session

import (
	"context"
	"errors"
	"sync"

	"github.com/meetdeck/meetdeck-cli/internal/client/api"
	"github.com/meetdeck/meetdeck-cli/internal/client/tokens"
	"github.com/meetdeck/meetdeck-cli/internal/logging"
)

// ErrNotAwaitingTwoFactor is returned when a two-factor code is submitted
// while no challenge is pending. The gateway is never contacted in that case.
var ErrNotAwaitingTwoFactor = errors.New("no two-factor challenge pending")

// Manager owns the session state and exposes the transition operations.
//
// Gateway calls happen outside the state lock, so operations can be in
// flight concurrently; the Loading flag tells readers an attempt is running.
// Token strings for outbound requests are always read from the Store, never
// from the in-memory snapshot, because the transport refreshes storage
// independently of these operations.
type Manager struct {
	client api.Client
	store  tokens.Store
	log    logging.Logger

	mu   sync.Mutex
	cur  Session
	subs []chan Session
}

func NewManager(client api.Client, store tokens.Store, log logging.Logger) *Manager {
	return &Manager{
		client: client,
		store:  store,
		log:    log,
		cur:    Session{Status: StatusAnonymous},
	}
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur.clone()
}

// Subscribe returns a channel receiving a snapshot after every state change.
// Delivery is latest-wins: a slow consumer sees the most recent state, not
// every intermediate one.
func (m *Manager) Subscribe() <-chan Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Session, 1)
	m.subs = append(m.subs, ch)
	return ch
}

// Login authenticates with email and password. Depending on the gateway
// response it lands in StatusAuthenticated or, when a second factor is
// required, StatusAwaitingTwoFactor with only the challenge token retained.
// On failure the status is unchanged and Err carries the gateway message.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	m.begin()

	res, err := m.client.Login(ctx, email, password)
	if err != nil {
		return m.fail(err), err
	}

	if res.RequiresTwoFactor {
		m.log.Info(ctx, "two-factor challenge required", "email", email)
		return m.update(func(s *Session) {
			s.Status = StatusAwaitingTwoFactor
			s.TwoFactorToken = res.TwoFactorToken
			s.Loading = false
		}), nil
	}

	m.log.Info(ctx, "login successful", "email", email)
	return m.authenticated(res), nil
}

// VerifyTwoFactor completes a pending challenge. It is rejected locally,
// without any network call, unless a challenge is actually pending.
func (m *Manager) VerifyTwoFactor(ctx context.Context, email, password, code string) (Session, error) {
	m.mu.Lock()
	if m.cur.Status != StatusAwaitingTwoFactor {
		cur := m.cur.clone()
		m.mu.Unlock()
		return cur, ErrNotAwaitingTwoFactor
	}
	m.mu.Unlock()

	m.begin()

	res, err := m.client.VerifyTwoFactor(ctx, email, password, code)
	if err != nil {
		// Status stays at awaiting_two_factor so the user can retry the code.
		return m.fail(err), err
	}

	m.log.Info(ctx, "two-factor verification successful", "email", email)
	return m.authenticated(res), nil
}

// Rehydrate restores a persisted session at process start. With no stored
// pair it finishes immediately in StatusAnonymous without touching the
// network. Otherwise it asks the gateway who the tokens belong to; the
// authenticated client may silently refresh during that call, so tokens are
// re-read from the store afterwards. Any failure clears the store.
func (m *Manager) Rehydrate(ctx context.Context) (Session, error) {
	access, err := m.store.Access(ctx)
	if err != nil {
		return m.Snapshot(), err
	}
	refresh, err := m.store.Refresh(ctx)
	if err != nil {
		return m.Snapshot(), err
	}
	if access == "" || refresh == "" {
		return m.update(func(s *Session) {
			*s = Session{Status: StatusAnonymous}
		}), nil
	}

	m.begin()

	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.log.Error(ctx, "failed to clear token store", "error", clearErr)
		}
		m.update(func(s *Session) {
			*s = Session{Status: StatusAnonymous}
		})
		return m.Snapshot(), err
	}

	access, _ = m.store.Access(ctx)
	refresh, _ = m.store.Refresh(ctx)

	m.log.Info(ctx, "session restored", "email", user.Email)
	return m.update(func(s *Session) {
		*s = Session{
			Status:       StatusAuthenticated,
			User:         user,
			AccessToken:  access,
			RefreshToken: refresh,
		}
	}), nil
}

// Logout tears the session down. The remote logout call is best-effort:
// local state and stored tokens are cleared even when it fails, because an
// authenticated-looking client after a user-initiated logout is worse than
// an orphaned server-side session.
func (m *Manager) Logout(ctx context.Context) error {
	refresh, _ := m.store.Refresh(ctx)

	if err := m.client.Logout(ctx, refresh); err != nil {
		m.log.Warn(ctx, "remote logout failed, clearing local session anyway", "error", err)
	}

	err := m.store.Clear(ctx)
	m.update(func(s *Session) {
		*s = Session{Status: StatusAnonymous}
	})
	return err
}

// LogoutAll revokes every session for the user, then tears down locally with
// the same always-clear semantics as Logout.
func (m *Manager) LogoutAll(ctx context.Context) error {
	if err := m.client.LogoutAll(ctx); err != nil {
		m.log.Warn(ctx, "remote logout-all failed, clearing local session anyway", "error", err)
	}

	err := m.store.Clear(ctx)
	m.update(func(s *Session) {
		*s = Session{Status: StatusAnonymous}
	})
	return err
}

// Expire resets the session to anonymous. The transport calls it via the
// session-expired hook after an unrecoverable refresh failure; the store is
// already cleared by then.
func (m *Manager) Expire() {
	m.update(func(s *Session) {
		*s = Session{Status: StatusAnonymous, Err: s.Err}
	})
}

// begin marks an operation start: loading on, previous error cleared.
func (m *Manager) begin() {
	m.update(func(s *Session) {
		s.Loading = true
		s.Err = ""
	})
}

// fail records an operation failure without changing the status.
func (m *Manager) fail(err error) Session {
	return m.update(func(s *Session) {
		s.Loading = false
		s.Err = err.Error()
	})
}

// authenticated applies a successful auth payload: user and tokens set
// together, challenge token and error cleared.
func (m *Manager) authenticated(res *api.AuthResult) Session {
	return m.update(func(s *Session) {
		*s = Session{
			Status:       StatusAuthenticated,
			User:         res.User,
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
		}
	})
}

func (m *Manager) update(fn func(*Session)) Session {
	m.mu.Lock()
	fn(&m.cur)
	cur := m.cur.clone()
	subs := m.subs
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- cur:
		default:
			// Replace a stale unread snapshot with the current one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- cur:
			default:
			}
		}
	}
	return cur
}
