package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/meetdeck/meetdeck-cli/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
}

// getStatus renders the prompt decoration from the session subscription.
// The channel is latest-wins, so one non-blocking read folds in the newest
// state before each prompt.
func (a *App) getStatus() string {
	select {
	case snap := <-a.events:
		a.cur = snap
	default:
	}
	s := ""
	if a.cur.Status == session.StatusAuthenticated && a.cur.User != nil {
		s = a.cur.User.Email + " "
	}
	s = s + string(a.Mode)
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Root(ctx context.Context) {
	a.out("Welcome to MeetDeck CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	runREPL(ctx, a, a.getStatus, scanner, a.out)
}

// runREPL starts a simple read-eval-print loop for the MeetDeck CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own diagnostics. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, out func(...any) (int, error)) {
	for {
		out(fmt.Sprintf("md %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				out("Available commands: whoami, status, logout, logout-all, exit")
			} else {
				out("Available commands: login, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "status":
			_ = a.Status(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "logout-all":
			_ = a.LogoutAll(ctx)

		case "exit", "quit":
			out("Bye!")
			return

		default:
			out("Unknown command:", cmd)
		}
	}
}
