// Package controller runs one form submission at a time through
// Idle -> Validating -> Submitting -> {Success, Failed} -> Idle.
//
// Validation runs before any network call and a failure returns to Idle.
// Submitting calls the screen's Submit exactly once. Success resets the
// form and refreshes the owning list; Failed keeps the input and shows the
// server's message verbatim, or a generic fallback. Every outcome is
// surfaced as an auto-expiring banner.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"github.com/dmitrijs2005/arkadconsole/internal/logging"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	DefaultMessageTTL = 5 * time.Second
	DefaultFallback   = "Something went wrong. Please try again."
)

// Config describes one form. Only Submit is required.
type Config[F any] struct {
	Name string

	Validate func(form *F) error
	Submit   func(ctx context.Context, form *F) error
	// Reset clears the form after success; the default sets it to its zero value.
	Reset   func(form *F)
	Refresh func(ctx context.Context) error

	SuccessMessage  string
	FailureFallback string
	MessageTTL      time.Duration
	SuccessTTL      time.Duration

	OnTransition func(from, to State)
	Logger       logging.Logger
}

type Controller[F any] struct {
	cfg     Config[F]
	notices *Notices

	mu    sync.Mutex
	state State
}

func New[F any](cfg Config[F]) *Controller[F] {
	if cfg.MessageTTL <= 0 {
		cfg.MessageTTL = DefaultMessageTTL
	}
	if cfg.SuccessTTL <= 0 {
		cfg.SuccessTTL = cfg.MessageTTL
	}
	if cfg.FailureFallback == "" {
		cfg.FailureFallback = DefaultFallback
	}
	if cfg.Reset == nil {
		cfg.Reset = func(f *F) { var zero F; *f = zero }
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return &Controller[F]{cfg: cfg, notices: &Notices{}}
}

func (c *Controller[F]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Banner returns the message currently on display.
func (c *Controller[F]) Banner() (Banner, bool) {
	return c.notices.Current()
}

// Close stops pending banner timers.
func (c *Controller[F]) Close() {
	c.notices.Close()
}

func (c *Controller[F]) move(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()
	c.notify(from, to)
}

func (c *Controller[F]) notify(from, to State) {
	if c.cfg.OnTransition != nil {
		c.cfg.OnTransition(from, to)
	}
}

// Submit runs one user action. It fails with common.ErrBusy while a previous
// submission is still running.
func (c *Controller[F]) Submit(ctx context.Context, form *F) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return common.ErrBusy
	}
	c.state = StateValidating
	c.mu.Unlock()
	c.notify(StateIdle, StateValidating)

	if c.cfg.Validate != nil {
		if err := c.cfg.Validate(form); err != nil {
			c.notices.Show(KindError, err.Error(), c.cfg.MessageTTL)
			c.move(StateIdle)
			return err
		}
	}

	c.move(StateSubmitting)
	if err := c.cfg.Submit(ctx, form); err != nil {
		c.move(StateFailed)
		c.cfg.Logger.Warn(ctx, "submit failed", "form", c.cfg.Name, "error", err)
		c.notices.Show(KindError, c.failureText(err), c.cfg.MessageTTL)
		c.move(StateIdle)
		return err
	}

	c.move(StateSuccess)
	c.cfg.Reset(form)
	if c.cfg.SuccessMessage != "" {
		c.notices.Show(KindSuccess, c.cfg.SuccessMessage, c.cfg.SuccessTTL)
	}
	if c.cfg.Refresh != nil {
		if err := c.cfg.Refresh(ctx); err != nil {
			c.cfg.Logger.Warn(ctx, "refresh after submit failed", "form", c.cfg.Name, "error", err)
		}
	}
	c.move(StateIdle)
	return nil
}

func (c *Controller[F]) failureText(err error) string {
	return FailureText(err, c.cfg.FailureFallback)
}

// FailureText picks what to show for err: the server's message when it sent
// one, the error itself for locally detected problems, otherwise fallback.
func FailureText(err error, fallback string) string {
	if msg := client.Message(err, ""); msg != "" {
		return msg
	}
	for _, local := range []error{
		common.ErrValidation,
		common.ErrCompressionFailed,
		common.ErrTooManyFiles,
		common.ErrEditInProgress,
		common.ErrBusy,
		common.ErrForbidden,
	} {
		if errors.Is(err, local) {
			return err.Error()
		}
	}
	return fallback
}
