// Package cli implements the interactive MeetDeck command-line client:
// session bootstrap, the REPL, and the auth commands wired to the session
// manager.
package cli

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/meetdeck/meetdeck-cli/internal/client/api"
	"github.com/meetdeck/meetdeck-cli/internal/client/config"
	"github.com/meetdeck/meetdeck-cli/internal/client/session"
	"github.com/meetdeck/meetdeck-cli/internal/client/tokens"
	"github.com/meetdeck/meetdeck-cli/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type App struct {
	config  *config.Config
	client  api.Client
	session *session.Manager
	log     logging.Logger
	Mode    Mode
	reader  *bufio.Reader
	out     func(a ...any) (int, error)

	// events feeds the prompt with session state changes; cur is the last
	// snapshot folded in. Both are touched only by the REPL goroutine.
	events <-chan session.Session
	cur    session.Session
}

// NewApp wires the whole client together: encrypted token store over the
// local SQLite database, gateway HTTP client, and session manager. The
// transport's session-expired hook resets the manager so the REPL falls
// back to the login prompt.
func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := tokens.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing token database", "error", err)
		return nil, err
	}

	key, err := tokens.LoadStorageKey(c.SecretPath)
	if err != nil {
		return nil, err
	}
	store := tokens.NewEncryptedStore(tokens.NewSQLiteStore(db), key)

	client := api.NewHTTPClient(c.GatewayBaseURL, store, c.RequestTimeout, log)
	manager := session.NewManager(client, store, log)

	app := &App{
		config:  c,
		client:  client,
		session: manager,
		log:     log,
		Mode:    ModeOnline,
		reader:  bufio.NewReader(os.Stdin),
		out:     printlnFn,
		events:  manager.Subscribe(),
		cur:     manager.Snapshot(),
	}

	client.OnSessionExpired(func() {
		manager.Expire()
		app.out("Session expired, please log in again.")
	})

	return app, nil
}

// Run restores any persisted session, starts the connectivity watcher, and
// enters the REPL. Rehydration happens exactly once, before any command can
// touch protected endpoints.
func (a *App) Run(ctx context.Context) {
	snap, err := a.session.Rehydrate(ctx)
	if err != nil {
		a.log.Warn(ctx, "session rehydration failed", "error", err)
	}
	if snap.Status == session.StatusAuthenticated {
		if exp, err := api.AccessTokenExpiry(snap.AccessToken); err == nil && time.Until(exp) < time.Minute {
			a.log.Info(ctx, "access token expires soon", "expires_at", exp)
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Status == session.StatusAuthenticated
}

// StartOnlineStatusWatcher periodically probes gateway liveness and flips
// the connectivity mode shown in the prompt. A probe gets a couple of quick
// retries before the gateway is declared offline.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := retry.Do(probeCtx, retry.WithMaxRetries(2, retry.NewConstant(500*time.Millisecond)), func(ctx context.Context) error {
				if err := a.client.Ping(ctx); err != nil {
					return retry.RetryableError(err)
				}
				return nil
			})
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
