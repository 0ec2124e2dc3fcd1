// Package auth talks to the authentication endpoints of the portal and keeps
// the token store in step with their answers.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/token/store"
	"github.com/rs/zerolog/log"
)

// EmailNotVerifiedCode is the error code of a login refused until the
// address is confirmed.
const EmailNotVerifiedCode = "EMAIL_NOT_VERIFIED"

// Client performs the authentication calls. It never asks the session for a
// bearer token, so it can be used by the session's own refresh.
type Client struct {
	api       *api.Client
	tokens    store.Store
	endpoints config.EndpointConfig
}

func NewClient(apiClient *api.Client, tokens store.Store, endpoints config.EndpointConfig) *Client {
	return &Client{
		api:       apiClient,
		tokens:    tokens,
		endpoints: endpoints,
	}
}

// Login exchanges credentials for a token pair and stores both tokens.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	var session Session
	err := c.api.Do(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      c.endpoints.GetLoginEndpoint(),
		Body:      Credentials{Email: email, Password: password},
		Anonymous: true,
	}, &session)
	if err != nil {
		return nil, rejection(err, errors.ErrInvalidCredentials)
	}
	if session.Access == "" {
		return nil, &errors.AuthError{Reason: errors.ErrInvalidCredentials, Message: "login response carried no access token"}
	}

	if err := c.storePair(session.Access, session.Refresh); err != nil {
		return nil, err
	}
	log.Info().Str("email", email).Str("role", session.Role).Msg("logged in")
	return &session, nil
}

// GoogleLogin exchanges a Google ID token for a token pair and stores both tokens.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (*Session, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, &errors.ValidationError{Field: "token", Message: "google id token is required"}
	}

	var resp googleResponse
	err := c.api.Do(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      c.endpoints.GetGoogleLoginEndpoint(),
		Body:      tokenRequest{Token: idToken},
		Anonymous: true,
	}, &resp)
	if err != nil {
		return nil, rejection(err, errors.ErrOAuthRejected)
	}
	if resp.Access == "" {
		return nil, &errors.AuthError{Reason: errors.ErrOAuthRejected, Message: "google login response carried no access token"}
	}

	if err := c.storePair(resp.Access, resp.Refresh); err != nil {
		return nil, err
	}
	profile := resp.Profile
	log.Info().Str("email", profile.Email).Msg("logged in with google")
	return &Session{
		Access:  resp.Access,
		Refresh: resp.Refresh,
		Email:   profile.Email,
		Groups:  profile.Groups,
		Profile: &profile,
	}, nil
}

// Refresh trades refreshToken for a new access token and stores it. There is
// a single attempt; every failure matches errors.ErrRefresh.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.Wrapf(errors.ErrRefresh, "[Client.Refresh] no refresh token")
	}

	var resp refreshResponse
	err := c.api.Do(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      c.endpoints.GetRefreshEndpoint(),
		Body:      refreshRequest{Refresh: refreshToken},
		Anonymous: true,
	}, &resp)
	if err != nil {
		return "", errors.Wrapf(errors.ErrRefresh, "[Client.Refresh] %v", err)
	}
	if resp.Access == "" {
		return "", errors.Wrapf(errors.ErrRefresh, "[Client.Refresh] response missing access token")
	}

	if err := c.tokens.Set(store.AccessTokenKey, resp.Access); err != nil {
		return "", errors.Wrapf(errors.ErrRefresh, "[Client.Refresh] %v", err)
	}
	// rotated refresh tokens replace the old one
	if resp.Refresh != "" && resp.Refresh != refreshToken {
		if err := c.tokens.Set(store.RefreshTokenKey, resp.Refresh); err != nil {
			return "", errors.Wrapf(errors.ErrRefresh, "[Client.Refresh] %v", err)
		}
	}
	return resp.Access, nil
}

// Logout notifies the backend with the current bearer, best effort, and
// clears the stored tokens whatever the outcome of the call. A rejected bearer
// does not trigger the unauthorized handler; the caller is already ending the
// session.
func (c *Client) Logout(ctx context.Context) error {
	access, _ := c.tokens.Get(store.AccessTokenKey)
	err := c.api.Do(ctx, api.Request{
		Method:      http.MethodPost,
		Path:        c.endpoints.GetLogoutEndpoint(),
		Bearer:      access,
		Anonymous:   access == "",
		KeepSession: true,
	}, nil)
	if err != nil {
		log.Warn().Err(err).Msg("logout notification failed")
	}

	if err := c.tokens.Clear(); err != nil {
		return errors.Wrapf(err, "[Client.Logout] clear tokens")
	}
	return nil
}

// RegisterCandidat submits the pre-registration form. The account stays
// inactive until the e-mail is verified.
func (c *Client) RegisterCandidat(ctx context.Context, reg Registration) (Message, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	if err := reg.Validate(); err != nil {
		return Message{}, err
	}
	var msg Message
	if err := c.api.Do(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      c.endpoints.GetRegisterCandidatEndpoint(),
		Body:      reg,
		Anonymous: true,
	}, &msg); err != nil {
		return Message{}, rejection(err, errors.ErrRejected)
	}
	return msg, nil
}

// VerifyEmail confirms an address with the token sent by e-mail.
func (c *Client) VerifyEmail(ctx context.Context, verificationToken string) (Message, error) {
	if strings.TrimSpace(verificationToken) == "" {
		return Message{}, &errors.ValidationError{Field: "token", Message: "verification token is missing"}
	}
	return c.acknowledged(ctx, http.MethodPost, c.endpoints.GetVerifyEmailEndpoint(), tokenRequest{Token: verificationToken})
}

// ResendVerification asks for a new verification e-mail.
func (c *Client) ResendVerification(ctx context.Context, email string) (Message, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return Message{}, err
	}
	return c.acknowledged(ctx, http.MethodPost, c.endpoints.GetResendVerificationEndpoint(), emailRequest{Email: email})
}

// RequestPasswordReset asks for a reset link to be sent to email.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (Message, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return Message{}, err
	}
	return c.acknowledged(ctx, http.MethodPost, c.endpoints.GetRequestPasswordResetEndpoint(), emailRequest{Email: email})
}

// PerformPasswordReset sets a new password using the token of the reset link.
func (c *Client) PerformPasswordReset(ctx context.Context, reset PasswordReset) (Message, error) {
	if err := reset.Validate(); err != nil {
		return Message{}, err
	}
	return c.acknowledged(ctx, http.MethodPatch, c.endpoints.GetPerformPasswordResetEndpoint(), reset)
}

func (c *Client) acknowledged(ctx context.Context, method, path string, body any) (Message, error) {
	var msg Message
	if err := c.api.Do(ctx, api.Request{Method: method, Path: path, Body: body, Anonymous: true}, &msg); err != nil {
		return Message{}, rejection(err, errors.ErrRejected)
	}
	return msg, nil
}

func (c *Client) storePair(access, refresh string) error {
	if err := c.tokens.Set(store.AccessTokenKey, access); err != nil {
		return errors.Wrapf(err, "[Client.storePair] access token")
	}
	if refresh == "" {
		return nil
	}
	if err := c.tokens.Set(store.RefreshTokenKey, refresh); err != nil {
		return errors.Wrapf(err, "[Client.storePair] refresh token")
	}
	return nil
}

// rejection turns a backend refusal into an AuthError with reason. Transport
// failures and cancellations are returned unchanged.
func rejection(err error, reason error) error {
	var statusErr *errors.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	if statusErr.Status == http.StatusForbidden && statusErr.Code == EmailNotVerifiedCode {
		reason = errors.ErrEmailNotVerified
	}
	return &errors.AuthError{
		Reason:  reason,
		Status:  statusErr.Status,
		Message: backendMessage(statusErr),
	}
}

// backendMessage prefers the human message; the error field is used when it
// reads as text rather than a constant code.
func backendMessage(statusErr *errors.StatusError) string {
	if statusErr.Message != "" {
		return statusErr.Message
	}
	if statusErr.Code != "" && strings.ToUpper(statusErr.Code) != statusErr.Code {
		return statusErr.Code
	}
	return ""
}
