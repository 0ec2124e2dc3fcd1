// Package oidclogin obtains a Google ID token from a terminal session using
// the authorization-code flow with PKCE and a loopback redirect.
package oidclogin

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// CallbackPath is the path of the loopback redirect URI.
const CallbackPath = "/callback"

// Flow runs interactive sign-ins against one OpenID provider.
type Flow struct {
	provider   *oidc.Provider
	oauth      oauth2.Config
	verifier   *oidc.IDTokenVerifier
	listenAddr string
	openURL    func(string) error
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Flow)

// WithListenAddr sets the loopback address of the redirect listener.
func WithListenAddr(addr string) Option {
	return func(f *Flow) {
		f.listenAddr = addr
	}
}

// WithBrowser sets how the authorization URL is shown to the user.
func WithBrowser(open func(authURL string) error) Option {
	return func(f *Flow) {
		f.openURL = open
	}
}

// WithHTTPClient sets the client used for discovery, key fetches and the code exchange.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Flow) {
		f.httpClient = hc
	}
}

// WithTimeout bounds how long Login waits for the browser to come back.
func WithTimeout(d time.Duration) Option {
	return func(f *Flow) {
		f.timeout = d
	}
}

// New discovers the provider at issuer.
func New(ctx context.Context, issuer, clientID, clientSecret string, scopes []string, opts ...Option) (*Flow, error) {
	f := &Flow{
		listenAddr: "127.0.0.1:0",
		openURL: func(authURL string) error {
			log.Info().Str("url", authURL).Msg("open this URL in a browser to sign in")
			return nil
		},
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}

	provider, err := oidc.NewProvider(f.clientContext(ctx), issuer)
	if err != nil {
		return nil, fmt.Errorf("[oidclogin.New] failed to create OIDC provider: %w", err)
	}
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	f.provider = provider
	f.oauth = oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}
	f.verifier = provider.Verifier(&oidc.Config{ClientID: clientID})
	return f, nil
}

// NewFromConfig builds the flow for the configured Google client.
func NewFromConfig(ctx context.Context, cfg config.OAuthConfig, opts ...Option) (*Flow, error) {
	if cfg.GetGoogleClientID() == "" {
		return nil, errors.Wrapf(errors.ErrUnsupported, "google sign-in is not configured (GOOGLE_CLIENT_ID)")
	}
	return New(ctx, cfg.GetGoogleIssuer(), cfg.GetGoogleClientID(), cfg.GetGoogleClientSecret(), cfg.GetGoogleScopes(), opts...)
}

// Login runs one sign-in and returns the verified raw ID token.
func (f *Flow) Login(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", f.listenAddr)
	if err != nil {
		return "", fmt.Errorf("[Flow.Login] failed to listen for the redirect: %w", err)
	}

	oauthConfig := f.oauth
	oauthConfig.RedirectURL = "http://" + ln.Addr().String() + CallbackPath

	req := newAuthRequest()
	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+CallbackPath, CallbackHandler(req.State, results))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("redirect listener stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := oauthConfig.AuthCodeURL(req.State, oidc.Nonce(req.Nonce), oauth2.S256ChallengeOption(req.Verifier))
	if err := f.openURL(authURL); err != nil {
		return "", fmt.Errorf("[Flow.Login] failed to open browser: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	var res callbackResult
	select {
	case res = <-results:
	case <-waitCtx.Done():
		return "", fmt.Errorf("[Flow.Login] waiting for the browser: %w", waitCtx.Err())
	}
	if res.err != nil {
		return "", res.err
	}

	exchangeCtx := f.clientContext(ctx)
	tok, err := oauthConfig.Exchange(exchangeCtx, res.code, oauth2.VerifierOption(req.Verifier))
	if err != nil {
		return "", fmt.Errorf("[Flow.Login] %w: token exchange failed: %w", errors.ErrOAuthRejected, err)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.Wrapf(errors.ErrOAuthRejected, "[Flow.Login] no ID token in response")
	}

	idToken, err := f.verifier.Verify(exchangeCtx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("[Flow.Login] %w: ID token verification failed: %w", errors.ErrOAuthRejected, err)
	}
	// Validate nonce to prevent replay attacks
	if idToken.Nonce != req.Nonce {
		return "", errors.Wrapf(errors.ErrOAuthRejected, "[Flow.Login] invalid nonce")
	}
	return rawIDToken, nil
}

func (f *Flow) clientContext(ctx context.Context) context.Context {
	if f.httpClient == nil {
		return ctx
	}
	return oidc.ClientContext(ctx, f.httpClient)
}

// authRequest holds the per-attempt secrets of one sign-in.
type authRequest struct {
	State    string
	Nonce    string
	Verifier string
}

func newAuthRequest() authRequest {
	return authRequest{
		State:    generateRandomString(32),
		Nonce:    generateRandomString(32),
		Verifier: oauth2.GenerateVerifier(),
	}
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
