// Package session answers "who is logged in, and as what" from the token
// store, refreshing the access token when it has expired.
package session

import (
	"context"
	"time"

	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/jrsteele09/go-edoctorat/token"
	"github.com/jrsteele09/go-edoctorat/token/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// AuthorizationContext is the single view of the current user's session
// handed to every consumer that needs to know who is logged in.
type AuthorizationContext interface {
	// AccessToken returns a usable bearer, refreshing it when expired.
	AccessToken(ctx context.Context) (string, error)
	// PrimaryRole is the highest-precedence role of a valid access token.
	PrimaryRole(ctx context.Context) (string, error)
	// Roles are all roles of a valid access token.
	Roles(ctx context.Context) ([]string, error)
	IsAuthenticated(ctx context.Context) bool
	Refresh(ctx context.Context) (string, error)
}

// Authenticator is the subset of the auth client the gate depends on.
type Authenticator interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context) error
}

// Navigator performs the hard navigation that follows a forced logout.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

const refreshKey = "refresh"

// Gate implements AuthorizationContext over a token store.
type Gate struct {
	tokens    store.Store
	auth      Authenticator
	navigator Navigator
	nowTime   func() time.Time
	inflight  singleflight.Group
}

var _ AuthorizationContext = (*Gate)(nil)

type Option func(*Gate)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(g *Gate) {
		g.nowTime = nowFunc
	}
}

func WithNavigator(n Navigator) Option {
	return func(g *Gate) {
		g.navigator = n
	}
}

func New(tokens store.Store, auth Authenticator, opts ...Option) *Gate {
	g := &Gate{
		tokens:    tokens,
		auth:      auth,
		navigator: NavigatorFunc(func(string) {}),
		nowTime:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AccessToken returns the stored access token, refreshing it first when it
// has expired. A missing token yields errors.ErrNotAuthenticated; a failed
// refresh logs the user out and yields an error matching errors.ErrRefresh.
func (g *Gate) AccessToken(ctx context.Context) (string, error) {
	access, ok := g.tokens.Get(store.AccessTokenKey)
	if !ok || access == "" {
		return "", errors.ErrNotAuthenticated
	}
	if !token.IsExpired(access, g.nowTime()) {
		return access, nil
	}
	return g.refresh(ctx, access)
}

// Refresh mints a new access token from the stored refresh token.
func (g *Gate) Refresh(ctx context.Context) (string, error) {
	return g.refresh(ctx, "")
}

// refresh runs one refresh for all concurrent callers. The shared call is
// detached from any single caller's cancellation; a cancelled caller stops
// waiting but the refresh completes for the others. stale is the expired
// token the caller saw: if the store already holds a newer valid token, it is
// returned without another round trip.
func (g *Gate) refresh(ctx context.Context, stale string) (string, error) {
	detached := context.WithoutCancel(ctx)
	ch := g.inflight.DoChan(refreshKey, func() (interface{}, error) {
		if stale != "" {
			if current, ok := g.tokens.Get(store.AccessTokenKey); ok && current != stale && !token.IsExpired(current, g.nowTime()) {
				return current, nil
			}
		}
		return g.doRefresh(detached)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *Gate) doRefresh(ctx context.Context) (string, error) {
	refreshToken, ok := g.tokens.Get(store.RefreshTokenKey)
	if !ok || refreshToken == "" {
		return "", g.forceLogout(errors.Wrapf(errors.ErrRefresh, "[Gate.Refresh] no refresh token"))
	}

	access, err := g.auth.Refresh(ctx, refreshToken)
	if err != nil {
		if !errors.Is(err, errors.ErrRefresh) {
			err = errors.Wrapf(errors.ErrRefresh, "[Gate.Refresh] %v", err)
		}
		return "", g.forceLogout(err)
	}
	log.Debug().Msg("access token refreshed")
	return access, nil
}

// forceLogout clears the session and navigates to the login page. It
// returns cause so callers can propagate it.
func (g *Gate) forceLogout(cause error) error {
	log.Warn().Err(cause).Msg("session ended, login required")
	if err := g.tokens.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear tokens")
	}
	g.navigator.Navigate(roles.LoginPath)
	return cause
}

// ForceLogout ends the session without notifying the backend, as done when
// the backend rejects the current bearer.
func (g *Gate) ForceLogout(ctx context.Context) {
	_ = g.forceLogout(errors.ErrNotAuthenticated)
}

// Roles returns the role claims of a valid, unexpired access token. It never
// refreshes.
func (g *Gate) Roles(ctx context.Context) ([]string, error) {
	claims, err := g.validClaims()
	if err != nil {
		return nil, err
	}
	return claims.RoleList(), nil
}

// PrimaryRole returns the highest-precedence role of a valid access token,
// or "" when the token carries no role claim.
func (g *Gate) PrimaryRole(ctx context.Context) (string, error) {
	list, err := g.Roles(ctx)
	if err != nil {
		return "", err
	}
	return roles.Primary(list), nil
}

// IsAuthenticated reports whether a valid, unexpired access token is stored.
func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	_, err := g.validClaims()
	return err == nil
}

// Dashboard is the landing route of the current user.
func (g *Gate) Dashboard(ctx context.Context) string {
	role, _ := g.PrimaryRole(ctx)
	return roles.DashboardFor(role)
}

// Expiry returns the expiry of the stored access token.
func (g *Gate) Expiry(ctx context.Context) (time.Time, error) {
	access, ok := g.tokens.Get(store.AccessTokenKey)
	if !ok || access == "" {
		return time.Time{}, errors.ErrNotAuthenticated
	}
	claims, err := token.Decode(access)
	if err != nil {
		return time.Time{}, err
	}
	return claims.Expiry, nil
}

// Logout notifies the backend, clears the session and navigates to the
// login page. Backend failures never prevent the local logout.
func (g *Gate) Logout(ctx context.Context) error {
	err := g.auth.Logout(ctx)
	if err != nil {
		// the store may still hold tokens if clearing failed inside the client
		if clearErr := g.tokens.Clear(); clearErr != nil {
			log.Error().Err(clearErr).Msg("failed to clear tokens")
		}
	}
	g.navigator.Navigate(roles.LoginPath)
	return err
}

func (g *Gate) validClaims() (*token.Claims, error) {
	access, ok := g.tokens.Get(store.AccessTokenKey)
	if !ok || access == "" {
		return nil, errors.ErrNotAuthenticated
	}
	claims, err := token.Decode(access)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotAuthenticated, "%v", err)
	}
	if claims.ExpiredAt(g.nowTime()) {
		return nil, errors.Wrapf(errors.ErrNotAuthenticated, "access token expired")
	}
	return claims, nil
}
