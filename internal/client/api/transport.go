package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/meetdeck/meetdeck-cli/internal/client/tokens"
	"github.com/meetdeck/meetdeck-cli/internal/common"
	"github.com/meetdeck/meetdeck-cli/internal/logging"
)

const refreshPath = "/api/auth/refresh"

// Transport is the single choke point for outbound gateway calls. It attaches
// the bearer token from the store (re-read on every request, never cached)
// and recovers from access-token expiry: a 401 triggers exactly one refresh
// call shared by all concurrent requests, then one retry of the original
// request with the new token. A second 401 after the retry is returned
// unchanged, so callers see it as a hard failure.
//
// Transport errors from the network layer pass through untouched; they are
// never mistaken for auth failures and never trigger a refresh.
type Transport struct {
	base       http.RoundTripper
	store      tokens.Store
	refreshURL string

	// refreshClient talks to the refresh endpoint directly over the base
	// transport so the refresh call cannot recurse into this Transport.
	refreshClient *http.Client

	group     singleflight.Group
	onExpired func()
	log       logging.Logger
}

func NewTransport(base http.RoundTripper, store tokens.Store, baseURL string, timeout time.Duration, log logging.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Transport{
		base:          base,
		store:         store,
		refreshURL:    baseURL + refreshPath,
		refreshClient: &http.Client{Transport: base, Timeout: timeout},
		log:           log,
	}
}

// OnSessionExpired registers a hook fired after an unrecoverable refresh
// failure, once the store has been cleared. The CLI uses it to drop the
// session back to the login prompt.
func (t *Transport) OnSessionExpired(fn func()) {
	t.onExpired = fn
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	access, err := t.store.Access(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}

	resp, err := t.base.RoundTrip(t.withToken(req, access))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// A request whose body cannot be replayed is returned as-is.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	refresh, err := t.store.Refresh(ctx)
	if err != nil || refresh == "" {
		return resp, nil
	}

	drain(resp)

	// Concurrent 401s share one refresh call; every waiter gets the same
	// new access token or the same error.
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		return t.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	newAccess := v.(string)

	retry := t.withToken(req, newAccess)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}

	t.log.Debug(ctx, "retrying request after token refresh", "url", req.URL.Path)
	return t.base.RoundTrip(retry)
}

// withToken clones req with the bearer header and a fresh request id. The
// clone shares the original body; callers handle replay for retries.
func (t *Transport) withToken(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	}
	r.Header.Set(common.RequestIDHeader, uuid.NewString())
	return r
}

// refresh exchanges the stored refresh token for a new pair and persists it.
// A gateway rejection is fatal for the session: the store is cleared and the
// expiry hook fires. A transport failure is returned without touching the
// store.
func (t *Transport) refresh(ctx context.Context) (string, error) {
	refresh, err := t.store.Refresh(ctx)
	if err != nil {
		return "", err
	}
	if refresh == "" {
		return "", t.expire(ctx, "")
	}

	payload, err := json.Marshal(RefreshRequest{RefreshToken: refresh})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.refreshClient.Do(req)
	if err != nil {
		t.log.Warn(ctx, "token refresh failed at transport level", "error", err)
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", t.expire(ctx, envelopeMessage(raw))
	}

	var env Envelope[TokenPair]
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if env.Data.AccessToken == "" || env.Data.RefreshToken == "" {
		return "", t.expire(ctx, env.Message)
	}

	if err := t.store.SetPair(ctx, env.Data.AccessToken, env.Data.RefreshToken); err != nil {
		return "", err
	}

	t.log.Info(ctx, "access token refreshed")
	return env.Data.AccessToken, nil
}

// expire clears the store, fires the session-expired hook, and returns the
// error all refresh waiters will receive.
func (t *Transport) expire(ctx context.Context, message string) error {
	if err := t.store.Clear(ctx); err != nil {
		t.log.Error(ctx, "failed to clear token store", "error", err)
	}
	if t.onExpired != nil {
		t.onExpired()
	}
	if message != "" {
		return fmt.Errorf("%w: %s", ErrSessionExpired, message)
	}
	return ErrSessionExpired
}

func envelopeMessage(raw []byte) string {
	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Message
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
