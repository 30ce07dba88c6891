package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/arkadconsole/internal/client/controller"
	"github.com/dmitrijs2005/arkadconsole/internal/client/session"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
)

// command is one REPL entry. A command with a sub name is matched on the
// first two words, otherwise on the first word alone.
type command struct {
	name string
	sub  string
	args string
	help string
	cap  session.Capability
	// public commands run without a session.
	public bool
	run    func(ctx context.Context, args []string) error
}

func (c command) usage() string {
	u := c.name
	if c.sub != "" {
		u += " " + c.sub
	}
	if c.args != "" {
		u += " " + c.args
	}
	return u
}

var errUnknownCommand = errors.New("unknown command")

type usageError struct{ usage string }

func (e usageError) Error() string { return "usage: " + e.usage }

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	touch() bool
	Login(ctx context.Context) error
	help() []string
	dispatch(ctx context.Context, words []string) error
	handleError(ctx context.Context, err error)
}

// runREPL starts a read–eval–print loop.
//
// It prints the prompt with the current status, reads a line and dispatches
// it. The loop exits on EOF, on "exit" or "quit", or when ctx is done.
// A line typed after an idle logout is discarded and the login prompt is
// shown instead.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for ctx.Err() == nil {
		fmt.Fprintf(w, "arkad %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}

		if a.touch() {
			fmt.Fprintln(w, "You were logged out after a period of inactivity.")
			_ = a.Login(ctx)
			continue
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		case "help":
			for _, l := range a.help() {
				fmt.Fprintln(w, l)
			}

		case "login":
			_ = a.Login(ctx)

		default:
			if err := a.dispatch(ctx, words); err != nil {
				a.handleError(ctx, err)
			}
		}
	}
}

func (a *App) lookup(words []string) (command, []string, bool) {
	if len(words) > 1 {
		for _, c := range a.commands {
			if c.name == words[0] && c.sub == words[1] {
				return c, words[2:], true
			}
		}
	}
	for _, c := range a.commands {
		if c.name == words[0] && c.sub == "" {
			return c, words[1:], true
		}
	}
	return command{}, nil, false
}

func (a *App) allowed(c command) bool {
	if c.public {
		return true
	}
	if !a.isLoggedIn() {
		return false
	}
	return c.cap == "" || a.authorize(c.cap) == nil
}

func (a *App) dispatch(ctx context.Context, words []string) error {
	c, args, ok := a.lookup(words)
	if !ok {
		if len(words) > 1 && a.hasGroup(words[0]) {
			return fmt.Errorf("%w: %s %s", errUnknownCommand, words[0], words[1])
		}
		return fmt.Errorf("%w: %s", errUnknownCommand, words[0])
	}
	if !c.public {
		if c.cap != "" {
			if err := a.authorize(c.cap); err != nil {
				return err
			}
		} else if !a.isLoggedIn() {
			return common.ErrNoSession
		}
	}
	return c.run(ctx, args)
}

func (a *App) hasGroup(name string) bool {
	for _, c := range a.commands {
		if c.name == name {
			return true
		}
	}
	return false
}

func (a *App) help() []string {
	lines := []string{"Available commands:"}
	for _, c := range a.commands {
		if a.allowed(c) {
			lines = append(lines, fmt.Sprintf("  %-34s %s", c.usage(), c.help))
		}
	}
	if !a.isLoggedIn() {
		lines = append(lines, fmt.Sprintf("  %-34s %s", "login", "sign in"))
	}
	return append(lines, fmt.Sprintf("  %-34s %s", "exit", "leave the console"))
}

// handleError reports err unless a banner already did. An expired token
// ends the session.
func (a *App) handleError(ctx context.Context, err error) {
	var shown shownError
	var usage usageError

	switch {
	case errors.Is(err, common.ErrAuthExpired):
		if lerr := a.session.Logout(ctx); lerr != nil {
			a.log.Warn(ctx, "logout after expired token failed", "error", lerr)
		}
		a.println("Your session has expired. Please log in again.")
	case errors.As(err, &shown):
	case errors.Is(err, errUnknownCommand):
		a.printf("%s. Type 'help' for the list of commands.\n", strings.ToUpper(err.Error()[:1])+err.Error()[1:])
	case errors.As(err, &usage):
		a.println(usage.Error())
	case errors.Is(err, common.ErrNoSession):
		a.println("Please log in first (type 'login').")
	case errors.Is(err, common.ErrForbidden):
		a.show(controller.KindError, "You do not have permission to do that.", 0)
	default:
		_ = a.fail(err, controller.DefaultFallback)
	}
}
