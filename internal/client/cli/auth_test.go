package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetdeck/meetdeck-cli/internal/client/api"
	"github.com/meetdeck/meetdeck-cli/internal/client/session"
	"github.com/meetdeck/meetdeck-cli/internal/logging"
)

// fakeGateway implements api.Client for command-level tests.
type fakeGateway struct {
	loginRes  *api.AuthResult
	loginErr  error
	verifyRes *api.AuthResult
	verifyErr error

	verifyCodes []string
	logoutCalls int
}

func (f *fakeGateway) Login(ctx context.Context, email, password string) (*api.AuthResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeGateway) VerifyTwoFactor(ctx context.Context, email, password, code string) (*api.AuthResult, error) {
	f.verifyCodes = append(f.verifyCodes, code)
	if f.verifyErr != nil && len(f.verifyCodes) == 1 {
		return nil, f.verifyErr
	}
	return f.verifyRes, nil
}

func (f *fakeGateway) CurrentUser(ctx context.Context) (*api.User, error) { return nil, nil }

func (f *fakeGateway) Logout(ctx context.Context, refreshToken string) error {
	f.logoutCalls++
	return nil
}

func (f *fakeGateway) LogoutAll(ctx context.Context) error { return nil }

func (f *fakeGateway) Ping(ctx context.Context) error { return nil }

// memTokens is an in-memory token store.
type memTokens struct {
	access, refresh string
}

func (s *memTokens) Access(ctx context.Context) (string, error)  { return s.access, nil }
func (s *memTokens) Refresh(ctx context.Context) (string, error) { return s.refresh, nil }
func (s *memTokens) SetPair(ctx context.Context, access, refresh string) error {
	s.access, s.refresh = access, refresh
	return nil
}
func (s *memTokens) Clear(ctx context.Context) error {
	s.access, s.refresh = "", ""
	return nil
}

func newTestApp(gw *fakeGateway) (*App, *[]string) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	manager := session.NewManager(gw, &memTokens{}, log)
	var lines []string
	app := &App{
		client:  gw,
		session: manager,
		log:     log,
		Mode:    ModeOnline,
		reader:  bufio.NewReader(strings.NewReader("")),
		out: func(a ...any) (int, error) {
			lines = append(lines, fmt.Sprintln(a...))
			return 0, nil
		},
		events: manager.Subscribe(),
		cur:    manager.Snapshot(),
	}
	return app, &lines
}

// stubPrompts routes the text prompt through a scripted answer list and the
// password prompt through a fixed value.
func stubPrompts(t *testing.T, answers []string, password string) {
	t.Helper()

	origText := getSimpleText
	origPass := getPassword
	t.Cleanup(func() {
		getSimpleText = origText
		getPassword = origPass
	})

	i := 0
	getSimpleText = func(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		a := answers[i]
		i++
		return a, nil
	}
	getPassword = func(w io.Writer) ([]byte, error) {
		return []byte(password), nil
	}
}

func TestAppLogin_Success(t *testing.T) {
	gw := &fakeGateway{
		loginRes: &api.AuthResult{
			AccessToken:  "acc",
			RefreshToken: "ref",
			User:         &api.User{ID: 1, Email: "a@b.com"},
		},
	}
	app, lines := newTestApp(gw)
	stubPrompts(t, []string{"a@b.com"}, "pw")

	require.NoError(t, app.Login(context.Background()))

	require.NotEmpty(t, *lines)
	assert.Contains(t, (*lines)[len(*lines)-1], "Logged in as a@b.com")
	assert.True(t, app.isLoggedIn())
}

func TestAppLogin_BadCredentials(t *testing.T) {
	gw := &fakeGateway{loginErr: &api.GatewayError{StatusCode: 401, Message: "Invalid email or password"}}
	app, lines := newTestApp(gw)
	stubPrompts(t, []string{"a@b.com"}, "bad")

	require.Error(t, app.Login(context.Background()))

	assert.Contains(t, strings.Join(*lines, ""), "Invalid email or password")
	assert.False(t, app.isLoggedIn())
}

func TestAppLogin_GatewayUnreachableSwitchesOffline(t *testing.T) {
	gw := &fakeGateway{loginErr: errors.Join(api.ErrUnavailable, errors.New("connection refused"))}
	app, lines := newTestApp(gw)
	stubPrompts(t, []string{"a@b.com"}, "pw")

	require.Error(t, app.Login(context.Background()))

	assert.Contains(t, strings.Join(*lines, ""), "Gateway unreachable")
	assert.Equal(t, ModeOffline, app.Mode)
}

func TestAppLogin_TwoFactorRetryThenSuccess(t *testing.T) {
	gw := &fakeGateway{
		loginRes:  &api.AuthResult{RequiresTwoFactor: true, TwoFactorToken: "abc"},
		verifyErr: &api.GatewayError{StatusCode: 401, Message: "Invalid two-factor code"},
		verifyRes: &api.AuthResult{
			AccessToken:  "acc",
			RefreshToken: "ref",
			User:         &api.User{ID: 1, Email: "a@b.com"},
		},
	}
	app, lines := newTestApp(gw)
	// email, wrong code, retry confirmation, correct code
	stubPrompts(t, []string{"a@b.com", "000000", "y", "123456"}, "pw")

	require.NoError(t, app.Login(context.Background()))

	assert.Equal(t, []string{"000000", "123456"}, gw.verifyCodes)
	assert.Contains(t, strings.Join(*lines, ""), "Verification failed")
	assert.True(t, app.isLoggedIn())
}

func TestAppLogin_TwoFactorGiveUp(t *testing.T) {
	gw := &fakeGateway{
		loginRes:  &api.AuthResult{RequiresTwoFactor: true, TwoFactorToken: "abc"},
		verifyErr: &api.GatewayError{StatusCode: 401, Message: "Invalid two-factor code"},
	}
	app, _ := newTestApp(gw)
	stubPrompts(t, []string{"a@b.com", "000000", "n"}, "pw")

	require.Error(t, app.Login(context.Background()))

	assert.Equal(t, []string{"000000"}, gw.verifyCodes)
	assert.False(t, app.isLoggedIn())
}

func TestAppLogout(t *testing.T) {
	gw := &fakeGateway{
		loginRes: &api.AuthResult{
			AccessToken:  "acc",
			RefreshToken: "ref",
			User:         &api.User{ID: 1, Email: "a@b.com"},
		},
	}
	app, lines := newTestApp(gw)
	stubPrompts(t, []string{"a@b.com"}, "pw")
	require.NoError(t, app.Login(context.Background()))

	require.NoError(t, app.Logout(context.Background()))

	assert.Equal(t, 1, gw.logoutCalls)
	assert.Contains(t, strings.Join(*lines, ""), "Logged out.")
	assert.False(t, app.isLoggedIn())
}

func TestAppPrompt_TracksSessionChanges(t *testing.T) {
	gw := &fakeGateway{
		loginRes: &api.AuthResult{
			AccessToken:  "acc",
			RefreshToken: "ref",
			User:         &api.User{ID: 1, Email: "a@b.com"},
		},
	}
	app, _ := newTestApp(gw)

	assert.Equal(t, "(online)", app.getStatus())

	stubPrompts(t, []string{"a@b.com"}, "pw")
	require.NoError(t, app.Login(context.Background()))
	assert.Equal(t, "(a@b.com online)", app.getStatus())

	require.NoError(t, app.Logout(context.Background()))
	assert.Equal(t, "(online)", app.getStatus())
}

func TestAppWhoAmI_NotLoggedIn(t *testing.T) {
	app, lines := newTestApp(&fakeGateway{})

	require.NoError(t, app.WhoAmI(context.Background()))

	assert.Contains(t, strings.Join(*lines, ""), "Not logged in.")
}

func TestAppStatus_Anonymous(t *testing.T) {
	app, lines := newTestApp(&fakeGateway{})

	require.NoError(t, app.Status(context.Background()))

	joined := strings.Join(*lines, "")
	assert.Contains(t, joined, "anonymous")
	assert.Contains(t, joined, "online")
}
