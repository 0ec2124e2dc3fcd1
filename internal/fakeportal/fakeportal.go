// Package fakeportal is an in-process stand-in for the portal backend. It
// serves the authentication endpoints and enough of the domain API to drive
// the clients in tests and local demos. It enforces no admission rules.
package fakeportal

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/jrsteele09/go-edoctorat/portal"
	"github.com/jrsteele09/go-edoctorat/roles"
	tokenjwt "github.com/jrsteele09/go-edoctorat/token/jwt"
	"github.com/jrsteele09/go-edoctorat/users"
	fakeuserrepo "github.com/jrsteele09/go-edoctorat/users/repofake"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Portal is the fake backend. Create it with New and serve Handler.
type Portal struct {
	mux    *http.ServeMux
	routes []string

	issuer *tokenjwt.Issuer
	users  users.UserRepo
	guard  *roles.Guard
	idp    *IdentityProvider
	rotate bool

	mu            sync.Mutex
	verifications map[string]string // token to email
	resets        map[string]string // token to email
	revoked       map[string]struct{}
	data          Dataset

	refreshCalls   atomic.Int32
	logoutCalls    atomic.Int32
	refreshFailure atomic.Bool
	refreshDelay   atomic.Int64
}

type Option func(*Portal)

// WithIssuer replaces the default token issuer.
func WithIssuer(issuer *tokenjwt.Issuer) Option {
	return func(p *Portal) {
		p.issuer = issuer
	}
}

// WithIdentityProvider accepts Google sign-in with ID tokens from idp.
func WithIdentityProvider(idp *IdentityProvider) Option {
	return func(p *Portal) {
		p.idp = idp
	}
}

// WithRefreshRotation makes every refresh answer with a new refresh token.
func WithRefreshRotation(rotate bool) Option {
	return func(p *Portal) {
		p.rotate = rotate
	}
}

func WithDataset(data Dataset) Option {
	return func(p *Portal) {
		p.data = data
	}
}

func New(opts ...Option) (*Portal, error) {
	guard, err := roles.NewGuard()
	if err != nil {
		return nil, err
	}
	p := &Portal{
		mux:           http.NewServeMux(),
		issuer:        tokenjwt.NewIssuer([]byte("fakeportal-secret"), "fakeportal"),
		users:         fakeuserrepo.NewFakeUserRepo(),
		guard:         guard,
		verifications: make(map[string]string),
		resets:        make(map[string]string),
		revoked:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.initRoutes()
	return p, nil
}

func (p *Portal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mux.ServeHTTP(w, r)
}

// Handler returns the portal as an http.Handler.
func (p *Portal) Handler() http.Handler {
	return p
}

func (p *Portal) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	p.routes = append(p.routes, pattern)
	p.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns.
func (p *Portal) Routes() []string {
	return p.routes
}

// AddUser stores an account with password hashed.
func (p *Portal) AddUser(u users.User, password string) (*users.User, error) {
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}
	if err := p.users.Upsert(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Portal) subject(email string) (tokenjwt.Subject, error) {
	u, err := p.users.GetByEmail(email)
	if err != nil {
		return tokenjwt.Subject{}, err
	}
	return tokenjwt.Subject{ID: u.ID, Email: u.Email, Roles: u.Roles}, nil
}

// AccessToken mints a valid access token for the account.
func (p *Portal) AccessToken(email string) (string, error) {
	sub, err := p.subject(email)
	if err != nil {
		return "", err
	}
	return p.issuer.AccessToken(sub)
}

// ExpiredAccessToken mints an access token that expired a minute ago.
func (p *Portal) ExpiredAccessToken(email string) (string, error) {
	sub, err := p.subject(email)
	if err != nil {
		return "", err
	}
	return p.issuer.AccessTokenExpiring(sub, tokenjwt.NowTimeFunc().Add(-time.Minute))
}

func (p *Portal) RefreshToken(email string) (string, error) {
	sub, err := p.subject(email)
	if err != nil {
		return "", err
	}
	return p.issuer.RefreshToken(sub)
}

// RefreshCalls counts the requests received by the refresh endpoint.
func (p *Portal) RefreshCalls() int {
	return int(p.refreshCalls.Load())
}

func (p *Portal) LogoutCalls() int {
	return int(p.logoutCalls.Load())
}

// SetRefreshFailure makes the refresh endpoint answer 401.
func (p *Portal) SetRefreshFailure(fail bool) {
	p.refreshFailure.Store(fail)
}

// SetRefreshDelay holds every refresh answer for d.
func (p *Portal) SetRefreshDelay(d time.Duration) {
	p.refreshDelay.Store(int64(d))
}

// VerificationToken returns the pending e-mail verification token of email.
func (p *Portal) VerificationToken(email string) (string, bool) {
	return p.pendingToken(p.verifications, email)
}

// ResetToken returns the pending password reset token of email.
func (p *Portal) ResetToken(email string) (string, bool) {
	return p.pendingToken(p.resets, email)
}

func (p *Portal) pendingToken(tokens map[string]string, email string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for tok, owner := range tokens {
		if owner == email {
			return tok, true
		}
	}
	return "", false
}

// Commissions returns the commissions held by the portal.
func (p *Portal) Commissions() []portal.Commission {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]portal.Commission, len(p.data.Commissions))
	copy(out, p.data.Commissions)
	return out
}

func (p *Portal) isRevoked(raw string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.revoked[raw]
	return ok
}

// errorBody mirrors the backend's error answers.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

func message(text string) map[string]string {
	return map[string]string{"message": text}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
