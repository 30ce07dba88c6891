package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
	"github.com/dmitrijs2005/arkadconsole/internal/client/config"
	"github.com/dmitrijs2005/arkadconsole/internal/client/controller"
	"github.com/dmitrijs2005/arkadconsole/internal/client/models"
	"github.com/dmitrijs2005/arkadconsole/internal/client/report"
	"github.com/dmitrijs2005/arkadconsole/internal/client/services"
	"github.com/dmitrijs2005/arkadconsole/internal/client/session"
	"github.com/dmitrijs2005/arkadconsole/internal/client/upload"
	"github.com/dmitrijs2005/arkadconsole/internal/client/validation"
	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"github.com/dmitrijs2005/arkadconsole/internal/cryptox"
	"github.com/dmitrijs2005/arkadconsole/internal/logging"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	api     *client.HTTPClient
	session *session.Manager
	idle    *session.IdleWatcher
	valid   *validation.Validator
	report  *report.Renderer
	notices *controller.Notices
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time

	// expired is set by the idle watcher and consumed by the REPL.
	expired atomic.Bool

	achievements *contentScreen[models.Achievement, models.AchievementFields]
	activities   *contentScreen[models.Activity, models.ActivityFields]
	leaders      *contentScreen[models.Leader, models.LeaderFields]
	media        *contentScreen[models.MediaItem, models.MediaFields]

	requests    *services.Membership
	members     *services.Members
	donations   *services.Donations
	volunteers  *services.Volunteers
	partners    *services.Partners
	users       *services.Users
	newsletters *services.Newsletters
	accounts    *services.Accounts

	// event filters the volunteer list and export; "" means all events.
	event string
	// lastRange and lastDonations hold the most recent donation query.
	lastRange     models.DonationRange
	lastDonations []models.Donation

	commands []command
}

// NewApp opens the local database and wires the API client, session and
// screens described by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	key := []byte(c.SecretKey)
	if err := cryptox.ValidateKey(key); err != nil {
		return nil, fmt.Errorf("secret key: %w", err)
	}

	rep, err := report.New(c.LogoPath)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	var mgr *session.Manager
	api := client.NewHTTPClient(c.APIBaseURL, key,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
		client.WithTokenSource(client.TokenFunc(func() string { return mgr.Token() })),
	)
	mgr = session.NewManager(api, db, log)

	a := newApp(c, log, api, mgr, os.Stdin, os.Stdout)
	a.db = db
	a.report = rep
	return a, nil
}

func newApp(c *config.Config, log logging.Logger, api *client.HTTPClient, mgr *session.Manager, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Nop()
	}
	limits := upload.Limits{
		MaxBytes:         c.Upload.MaxBytes,
		MaxSizeMB:        c.Upload.MaxSizeMB,
		MaxWidthOrHeight: c.Upload.MaxWidthOrHeight,
		UseWorker:        c.Upload.UseWorker,
	}

	rep, _ := report.New("")

	a := &App{
		config:  c,
		log:     log,
		api:     api,
		session: mgr,
		valid:   validation.New(),
		report:  rep,
		notices: &controller.Notices{},
		reader:  bufio.NewReader(in),
		out:     out,
		now:     time.Now,

		achievements: newContentScreen[models.Achievement, models.AchievementFields](
			services.NewAchievements(api, limits, log), achievementView),
		activities: newContentScreen[models.Activity, models.ActivityFields](
			services.NewActivities(api, limits, log), activityView),
		leaders: newContentScreen[models.Leader, models.LeaderFields](
			services.NewLeaders(api, limits, log), leaderView),
		media: newContentScreen[models.MediaItem, models.MediaFields](
			services.NewMedia(api, limits, log), mediaView),

		requests:    services.NewMembership(api, log),
		members:     services.NewMembers(api),
		donations:   services.NewDonations(api),
		volunteers:  services.NewVolunteers(api),
		partners:    services.NewPartners(api),
		newsletters: services.NewNewsletters(api),
		accounts:    services.NewAccounts(api),
	}
	a.users = services.NewUsers(api, a.selfID)
	a.idle = session.NewIdleWatcher(c.IdleTimeout, a.expire)
	a.commands = a.commandTable()
	return a
}

// Run restores a saved session or asks for credentials, then serves the
// REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	go a.idle.Run(ctx)

	a.println("Arkad admin console (type 'help' for commands)")

	s, err := a.session.Restore(ctx)
	switch {
	case err == nil:
		a.printf("Welcome back, %s.\n", displayName(s.Identity))
	case errors.Is(err, common.ErrAuthExpired):
		a.println("Your session has expired. Please log in again.")
		_ = a.Login(ctx)
	default:
		_ = a.Login(ctx)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// Close stops banner timers and closes the local database.
func (a *App) Close() {
	a.notices.Close()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	_, ok := a.session.Current()
	return ok
}

func (a *App) selfID() string {
	s, _ := a.session.Current()
	return s.Identity.ID
}

func (a *App) authorize(c session.Capability) error {
	return a.session.Authorize(c)
}

// touch records activity and reports whether the session timed out since
// the previous call.
func (a *App) touch() bool {
	a.idle.Touch()
	return a.expired.Swap(false)
}

// expire is the idle watcher callback.
func (a *App) expire(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}
	if err := a.session.Logout(ctx); err != nil {
		a.log.Warn(ctx, "idle logout failed", "error", err)
	}
	a.log.Info(ctx, "session closed after inactivity")
	a.expired.Store(true)
}

func (a *App) getStatus() string {
	s := ""
	if cur, ok := a.session.Current(); ok {
		s = fmt.Sprintf("(%s %s)", cur.Identity.Username, cur.Identity.Role)
	}
	if b, ok := a.notices.Current(); ok {
		s = fmt.Sprintf("%s [%s: %s]", s, b.Kind, b.Text)
	}
	return s
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// show prints a banner and keeps it in the status line for ttl.
func (a *App) show(kind controller.Kind, text string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = a.config.MessageTTL
	}
	a.notices.Show(kind, text, ttl)
	a.printf("[%s] %s\n", kind, text)
}

// shownError marks an error whose banner was already printed.
type shownError struct{ err error }

func (e shownError) Error() string { return e.err.Error() }
func (e shownError) Unwrap() error { return e.err }

// fail shows err and returns it marked as shown.
func (a *App) fail(err error, fallback string) error {
	if err == nil {
		return nil
	}
	a.show(controller.KindError, controller.FailureText(err, fallback), 0)
	return shownError{err}
}

// runForm drives one submission through a form controller and prints the
// resulting banner.
func runForm[F any](ctx context.Context, a *App, cfg controller.Config[F], form *F) error {
	cfg.MessageTTL = a.config.MessageTTL
	cfg.Logger = a.log
	if cfg.Validate == nil {
		cfg.Validate = func(f *F) error { return a.valid.Struct(f) }
	}
	c := controller.New(cfg)
	defer c.Close()

	err := c.Submit(ctx, form)
	if b, ok := c.Banner(); ok {
		ttl := cfg.MessageTTL
		if b.Kind == controller.KindSuccess && cfg.SuccessTTL > 0 {
			ttl = cfg.SuccessTTL
		}
		a.show(b.Kind, b.Text, ttl)
	}
	if err != nil {
		return shownError{err}
	}
	return nil
}

func displayName(id session.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	return id.Username
}
