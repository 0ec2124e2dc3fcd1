// Package cli is the command-line front end of the portal client. Each
// command group plays the part of one dashboard.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/auth"
	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/internal/logging"
	"github.com/jrsteele09/go-edoctorat/oidclogin"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/jrsteele09/go-edoctorat/session"
	"github.com/jrsteele09/go-edoctorat/token/store"
	"github.com/rs/zerolog/log"
)

// GoogleTokenFunc obtains a Google ID token for the current user.
type GoogleTokenFunc func(ctx context.Context) (string, error)

// App holds the clients shared by the commands of one invocation.
type App struct {
	cfg     config.Config
	version string
	stdout  io.Writer
	stderr  io.Writer
	stdin   io.Reader
	lines   *bufio.Reader

	baseURL     string
	sessionFile string
	logLevel    string
	format      Format

	tokens      store.Store
	api         *api.Client
	auth        *auth.Client
	gate        *session.Gate
	portal      *portal.Portal
	guard       *roles.Guard
	googleToken GoogleTokenFunc
}

type Option func(*App)

func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithInput sets where prompts read from. Passwords are read without echo
// only when the input is a terminal.
func WithInput(stdin io.Reader) Option {
	return func(a *App) {
		a.stdin = stdin
	}
}

// WithTokenStore replaces the session file.
func WithTokenStore(s store.Store) Option {
	return func(a *App) {
		a.tokens = s
	}
}

// WithGoogleToken replaces the browser sign-in used by "auth google".
func WithGoogleToken(fn GoogleTokenFunc) Option {
	return func(a *App) {
		a.googleToken = fn
	}
}

func WithVersion(version string) Option {
	return func(a *App) {
		a.version = version
	}
}

func New(cfg config.Config, opts ...Option) *App {
	a := &App{
		cfg:     cfg,
		version: "dev",
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		stdin:   os.Stdin,
		format:  FormatText,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// setup builds the clients once flags are parsed.
func (a *App) setup() error {
	logging.Init(logging.Config{
		Level:  valueOr(a.logLevel, a.cfg.GetLogLevel()),
		Format: a.cfg.GetLogFormat(),
		Output: a.stderr,
	})

	if a.tokens == nil {
		file, err := store.OpenFile(valueOr(a.sessionFile, a.cfg.GetSessionFile()))
		if err != nil {
			return errors.Wrapf(err, "failed to open session file")
		}
		a.tokens = file
	}

	guard, err := roles.NewGuard()
	if err != nil {
		return err
	}
	a.guard = guard

	var gate *session.Gate
	a.api = api.NewFromConfig(overrides{Config: a.cfg, baseURL: a.baseURL},
		api.WithTokenSource(api.TokenSourceFunc(func(ctx context.Context) (string, error) {
			return gate.AccessToken(ctx)
		})),
		api.WithUnauthorizedHandler(func(ctx context.Context) {
			gate.ForceLogout(ctx)
		}),
	)
	a.auth = auth.NewClient(a.api, a.tokens, a.cfg)
	gate = session.New(a.tokens, a.auth, session.WithNavigator(session.NavigatorFunc(a.navigate)))
	a.gate = gate
	a.portal = portal.New(a.api, a.cfg)

	if a.googleToken == nil {
		a.googleToken = func(ctx context.Context) (string, error) {
			flow, err := oidclogin.NewFromConfig(ctx, a.cfg, oidclogin.WithBrowser(func(authURL string) error {
				_, err := fmt.Fprintf(a.stderr, "Open this URL in your browser to sign in with Google:\n\n  %s\n\n", authURL)
				return err
			}))
			if err != nil {
				return "", err
			}
			return flow.Login(ctx)
		}
	}
	return nil
}

// navigate is the terminal counterpart of a page change.
func (a *App) navigate(path string) {
	if path == roles.LoginPath {
		fmt.Fprintln(a.stderr, "Session ended. Run 'auth login' to sign in again.")
		return
	}
	log.Debug().Str("path", path).Msg("navigate")
}

// requireArea checks that the current user may open the dashboard area
// before any backend call is made.
func (a *App) requireArea(ctx context.Context, dashboard string) error {
	if _, err := a.gate.AccessToken(ctx); err != nil {
		return err
	}
	userRoles, err := a.gate.Roles(ctx)
	if err != nil {
		return err
	}
	ok, err := a.guard.Allowed(userRoles, dashboard)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrForbidden, "%s requires another role", dashboard)
	}
	return nil
}

// overrides applies command-line flags on top of the environment.
type overrides struct {
	config.Config
	baseURL string
}

func (o overrides) GetBaseURL() string {
	return valueOr(o.baseURL, o.Config.GetBaseURL())
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
