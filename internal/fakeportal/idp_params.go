package fakeportal

import (
	"errors"
	"net/url"
	"slices"
	"strings"
)

// Authorization request errors of the identity provider.
var (
	ErrUnknownClient              = errors.New("unknown client")
	ErrInvalidRedirectURI         = errors.New("invalid or no redirect uri")
	ErrInvalidResponseType        = errors.New("unsupported response type")
	ErrInvalidResponseMode        = errors.New("invalid response mode")
	ErrInvalidCodeChallenge       = errors.New("invalid code challenge")
	ErrInvalidCodeChallengeMethod = errors.New("PKCE S256 required")
	ErrInvalidScope               = errors.New("invalid scope")
)

// SupportedScopes are the scopes the provider grants.
var SupportedScopes = []string{"openid", "email", "profile"}

// ResponseType is the OAuth 2.0 response_type; only the code flow is served.
type ResponseType string

const CodeResponseType ResponseType = "code"

// ResponseMode is how the authorization answer reaches the redirect URI.
type ResponseMode string

const QueryResponseMode ResponseMode = "query"

// CodeChallengeMethod is the PKCE method. Native clients must use S256.
type CodeChallengeMethod string

const CodeChallengeS256 CodeChallengeMethod = "S256"

// GrantType is the grant_type of a token request.
type GrantType string

const AuthorizationCodeGrant GrantType = "authorization_code"

// AuthorizeParams are the query parameters of an authorization request.
type AuthorizeParams struct {
	ClientID            string
	ResponseType        ResponseType
	ResponseMode        ResponseMode
	RedirectURI         *url.URL
	Scope               string
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod CodeChallengeMethod
}

func parseAuthorizeParams(q url.Values) AuthorizeParams {
	p := AuthorizeParams{
		ClientID:            q.Get("client_id"),
		ResponseType:        ResponseType(q.Get("response_type")),
		ResponseMode:        ResponseMode(q.Get("response_mode")),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		Nonce:               q.Get("nonce"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: CodeChallengeMethod(q.Get("code_challenge_method")),
	}
	if u, err := url.Parse(q.Get("redirect_uri")); err == nil && u.Host != "" {
		p.RedirectURI = u
	}
	return p
}

// Validate checks the request against the single registered client. The
// redirect URI may be any loopback address since the CLI picks a free port.
func (p AuthorizeParams) Validate(clientID string) error {
	switch {
	case p.ClientID != clientID:
		return ErrUnknownClient
	case p.RedirectURI == nil || !loopback(p.RedirectURI):
		return ErrInvalidRedirectURI
	case p.ResponseType != "" && p.ResponseType != CodeResponseType:
		return ErrInvalidResponseType
	case p.ResponseMode != "" && p.ResponseMode != QueryResponseMode:
		return ErrInvalidResponseMode
	case strings.TrimSpace(p.CodeChallenge) == "" || len(p.CodeChallenge) >= 256:
		return ErrInvalidCodeChallenge
	case p.CodeChallengeMethod != CodeChallengeS256:
		return ErrInvalidCodeChallengeMethod
	}
	for _, scope := range strings.Fields(p.Scope) {
		if !slices.Contains(SupportedScopes, scope) {
			return ErrInvalidScope
		}
	}
	return nil
}

func loopback(u *url.URL) bool {
	switch u.Hostname() {
	case "127.0.0.1", "localhost", "::1":
		return true
	}
	return false
}

// TokenResponse is the token endpoint answer of the authorization code grant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token,omitempty"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	Scope       string `json:"scope,omitempty"`
}

// TokenError is the RFC 6749 error body of the token endpoint.
type TokenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}
