package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meetdeck/meetdeck-cli/internal/client/tokens"
	"github.com/meetdeck/meetdeck-cli/internal/logging"
)

// Client defines the gateway operations the session layer depends on.
type Client interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	VerifyTwoFactor(ctx context.Context, email, password, code string) (*AuthResult, error)
	CurrentUser(ctx context.Context) (*User, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context) error
	Ping(ctx context.Context) error
}

// HTTPClient is the concrete Client. All calls go through a Transport that
// attaches the bearer token and transparently refreshes it on 401.
type HTTPClient struct {
	baseURL   string
	http      *http.Client
	transport *Transport
	store     tokens.Store
	log       logging.Logger
}

// NewHTTPClient builds a gateway client rooted at baseURL. The store is both
// the source of the bearer token and the sink for token pairs observed in
// response payloads.
func NewHTTPClient(baseURL string, store tokens.Store, timeout time.Duration, log logging.Logger) *HTTPClient {
	transport := NewTransport(http.DefaultTransport, store, baseURL, timeout, log)
	return &HTTPClient{
		baseURL:   baseURL,
		http:      &http.Client{Transport: transport, Timeout: timeout},
		transport: transport,
		store:     store,
		log:       log,
	}
}

// OnSessionExpired forwards the hook to the underlying transport.
func (c *HTTPClient) OnSessionExpired(fn func()) {
	c.transport.OnSessionExpired(fn)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return do[AuthResult](c, ctx, http.MethodPost, "/api/auth/login",
		LoginRequest{Email: email, Password: password})
}

func (c *HTTPClient) VerifyTwoFactor(ctx context.Context, email, password, code string) (*AuthResult, error) {
	return do[AuthResult](c, ctx, http.MethodPost, "/api/auth/login/2fa",
		TwoFactorVerifyRequest{Email: email, Password: password, TwoFactorCode: code})
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*User, error) {
	return do[User](c, ctx, http.MethodGet, "/api/users/me", nil)
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	_, err := do[json.RawMessage](c, ctx, http.MethodPost, "/api/auth/logout",
		LogoutRequest{RefreshToken: refreshToken})
	return err
}

func (c *HTTPClient) LogoutAll(ctx context.Context) error {
	_, err := do[json.RawMessage](c, ctx, http.MethodPost, "/api/auth/logout-all", nil)
	return err
}

// Ping probes gateway liveness. Any HTTP response counts as reachable; only
// transport-level failures report ErrUnavailable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	drain(resp)
	return nil
}

// do issues one gateway call and decodes the enveloped payload. Token pairs
// present in the payload are persisted as a side effect, which covers the
// login and two-factor endpoints without any special casing.
func do[T any](c *HTTPClient, ctx context.Context, method, path string, body any) (*T, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.mapError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if msg := envelopeMessage(raw); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		}
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: envelopeMessage(raw)}
	}

	result := new(T)
	if len(raw) == 0 {
		return result, nil
	}

	var env Envelope[*T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if env.Data != nil {
		result = env.Data
	}

	if carrier, ok := any(result).(tokenCarrier); ok {
		if access, refresh, ok := carrier.tokenPair(); ok {
			if err := c.store.SetPair(ctx, access, refresh); err != nil {
				return nil, fmt.Errorf("failed to persist token pair: %w", err)
			}
		}
	}

	return result, nil
}

// mapError classifies a failed http.Client call. Refresh failures surface
// unchanged; anything else is a transport problem joined with ErrUnavailable
// so callers can both match the sentinel and see the underlying cause.
func (c *HTTPClient) mapError(err error) error {
	if errors.Is(err, ErrSessionExpired) {
		return err
	}
	return errors.Join(ErrUnavailable, err)
}
