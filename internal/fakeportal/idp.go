package fakeportal

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	tokenjwt "github.com/jrsteele09/go-edoctorat/token/jwt"
)

// OIDC routes of the identity provider, relative to its issuer.
const (
	RouteWellKnownOpenIDConfig = "/.well-known/openid-configuration"
	RouteWellKnownJWKS         = "/.well-known/jwks.json"
	RouteOAuth2Authorize       = "/authorize"
	RouteOAuth2Token           = "/token"
)

// IdentityProvider plays Google in the sign-in flow: it signs in a fixed
// account without any prompt and issues RS256 ID tokens.
type IdentityProvider struct {
	clientID string
	email    string
	keys     *tokenjwt.KeyPair
	mux      *http.ServeMux
	prefix   string

	mu    sync.Mutex
	codes map[string]authCode
	deny  bool
}

type authCode struct {
	clientID    string
	redirectURI string
	nonce       string
	challenge   string
	scope       string
	issuer      string
}

// NewIdentityProvider signs in email for clientID.
func NewIdentityProvider(clientID, email string) (*IdentityProvider, error) {
	keys, err := tokenjwt.GenerateRSAKeyPair(uuid.NewString(), 2048)
	if err != nil {
		return nil, err
	}
	idp := &IdentityProvider{
		clientID: clientID,
		email:    email,
		keys:     keys,
		mux:      http.NewServeMux(),
		codes:    make(map[string]authCode),
	}
	idp.mux.HandleFunc("GET "+RouteWellKnownOpenIDConfig, idp.WellKnownOpenIDConfig())
	idp.mux.HandleFunc("GET "+RouteWellKnownJWKS, idp.JWKS())
	idp.mux.HandleFunc("GET "+RouteOAuth2Authorize, idp.Authorize())
	idp.mux.HandleFunc("POST "+RouteOAuth2Token, idp.Token())
	return idp, nil
}

func (idp *IdentityProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	idp.mux.ServeHTTP(w, r)
}

// SetDenied makes the next authorizations fail with access_denied.
func (idp *IdentityProvider) SetDenied(deny bool) {
	idp.mu.Lock()
	defer idp.mu.Unlock()
	idp.deny = deny
}

// SetEmail changes the account signed in by the next authorizations.
func (idp *IdentityProvider) SetEmail(email string) {
	idp.mu.Lock()
	defer idp.mu.Unlock()
	idp.email = email
}

// IDToken mints an ID token directly, skipping the browser flow.
func (idp *IdentityProvider) IDToken(issuer, nonce string) (string, error) {
	idp.mu.Lock()
	email := idp.email
	idp.mu.Unlock()
	return idp.keys.SignIDToken(tokenjwt.IDTokenClaims{
		Issuer:   issuer,
		Audience: idp.clientID,
		Subject:  email,
		Email:    email,
		Nonce:    nonce,
	})
}

func (idp *IdentityProvider) issuer(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + idp.prefix
}

// WellKnownOpenIDConfig serves the OIDC discovery document
func (idp *IdentityProvider) WellKnownOpenIDConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL := idp.issuer(r)
		writeJSON(w, http.StatusOK, map[string]any{
			"issuer":                                baseURL,
			"authorization_endpoint":                baseURL + RouteOAuth2Authorize,
			"token_endpoint":                        baseURL + RouteOAuth2Token,
			"jwks_uri":                              baseURL + RouteWellKnownJWKS,
			"response_types_supported":              []string{string(CodeResponseType)},
			"subject_types_supported":               []string{"public"},
			"id_token_signing_alg_values_supported": []string{tokenjwt.RS256},
			"scopes_supported":                      SupportedScopes,
			"code_challenge_methods_supported":      []string{string(CodeChallengeS256)},
		})
	}
}

// JWKS returns the JSON Web Key Set used to validate ID tokens
func (idp *IdentityProvider) JWKS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, idp.keys.JWKS())
	}
}

// Authorize approves the request at once and redirects back with a code.
func (idp *IdentityProvider) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := parseAuthorizeParams(r.URL.Query())
		if err := params.Validate(idp.clientID); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		redirectURI := params.RedirectURI

		back := redirectURI.Query()
		back.Set("state", params.State)

		idp.mu.Lock()
		deny := idp.deny
		if !deny {
			code := uuid.NewString()
			idp.codes[code] = authCode{
				clientID:    params.ClientID,
				redirectURI: params.RedirectURI.String(),
				nonce:       params.Nonce,
				challenge:   params.CodeChallenge,
				scope:       params.Scope,
				issuer:      idp.issuer(r),
			}
			back.Set("code", code)
		}
		idp.mu.Unlock()

		if deny {
			back.Set("error", "access_denied")
			back.Set("error_description", "The user denied the request")
		}
		redirectURI.RawQuery = back.Encode()
		http.Redirect(w, r, redirectURI.String(), http.StatusFound)
	}
}

// Token exchanges an authorization code for an ID token after checking the
// PKCE verifier.
func (idp *IdentityProvider) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, TokenError{Code: "invalid_request"})
			return
		}
		clientID, _, ok := r.BasicAuth()
		if !ok {
			clientID = r.PostForm.Get("client_id")
		}

		code := r.PostForm.Get("code")
		idp.mu.Lock()
		grant, found := idp.codes[code]
		delete(idp.codes, code)
		idp.mu.Unlock()

		switch {
		case GrantType(r.PostForm.Get("grant_type")) != AuthorizationCodeGrant, !found:
			writeJSON(w, http.StatusBadRequest, TokenError{Code: "invalid_grant"})
			return
		case clientID != grant.clientID, r.PostForm.Get("redirect_uri") != grant.redirectURI:
			writeJSON(w, http.StatusBadRequest, TokenError{Code: "invalid_client"})
			return
		case challenge(r.PostForm.Get("code_verifier")) != grant.challenge:
			writeJSON(w, http.StatusBadRequest, TokenError{Code: "invalid_grant", Description: "PKCE verification failed"})
			return
		}

		idToken, err := idp.IDToken(grant.issuer, grant.nonce)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, TokenError{Code: "server_error"})
			return
		}
		writeJSON(w, http.StatusOK, TokenResponse{
			AccessToken: uuid.NewString(),
			TokenType:   "Bearer",
			ExpiresIn:   3600,
			IDToken:     idToken,
			Scope:       grant.scope,
		})
	}
}

// verify checks an ID token signed by this provider and returns its e-mail.
func (idp *IdentityProvider) verify(raw string) (string, error) {
	parsed, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		return &idp.keys.PrivateKey.PublicKey, nil
	},
		jwtlib.WithValidMethods([]string{tokenjwt.RS256}),
		jwtlib.WithAudience(idp.clientID),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid id token: %w", err)
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("id token carries no email")
	}
	return email, nil
}

// challenge creates a PKCE code challenge from a verifier
func challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
