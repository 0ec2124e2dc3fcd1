// Package jwt signs and verifies HS256 portal tokens. The client never holds
// the signing secret; this package backs the in-process portal used by tests
// and local demos.
package jwt

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ClaimStyle selects which claim carries the role list, mirroring the
// variants the portal backend has emitted over time.
type ClaimStyle string

const (
	ClaimRoles       ClaimStyle = "roles"
	ClaimAuthorities ClaimStyle = "authorities"
	ClaimGroups      ClaimStyle = "groups"
)

// Subject is the identity a token is minted for.
type Subject struct {
	ID    string
	Email string
	Roles []string
}

// Issuer mints access and refresh tokens.
type Issuer struct {
	secret        []byte
	issuer        string
	style         ClaimStyle
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

type IssuerOption func(*Issuer)

func WithClaimStyle(style ClaimStyle) IssuerOption {
	return func(i *Issuer) {
		i.style = style
	}
}

func WithAccessExpiry(d time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessExpiry = d
	}
}

func WithRefreshExpiry(d time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.refreshExpiry = d
	}
}

func NewIssuer(secret []byte, issuer string, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		secret:        secret,
		issuer:        issuer,
		style:         ClaimRoles,
		accessExpiry:  5 * time.Minute,
		refreshExpiry: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// AccessToken mints a short-lived token carrying the subject's roles in the
// configured claim style.
func (i *Issuer) AccessToken(sub Subject) (string, error) {
	return i.AccessTokenExpiring(sub, NowTimeFunc().Add(i.accessExpiry))
}

// AccessTokenExpiring mints an access token with an explicit expiry.
func (i *Issuer) AccessTokenExpiring(sub Subject, exp time.Time) (string, error) {
	claims := jwtlib.MapClaims{
		"iss":        i.issuer,
		"sub":        sub.ID,
		"email":      sub.Email,
		"iat":        NowTimeFunc().Unix(),
		"exp":        exp.Unix(),
		"jti":        uuid.New().String(),
		"token_type": "access",
	}
	switch i.style {
	case ClaimAuthorities:
		authorities := make([]string, 0, len(sub.Roles))
		for _, r := range sub.Roles {
			authorities = append(authorities, "ROLE_"+strings.ToUpper(r))
		}
		claims["authorities"] = authorities
	case ClaimGroups:
		claims["groups"] = sub.Roles
	default:
		claims["roles"] = sub.Roles
	}
	return i.sign(claims)
}

// RefreshToken mints a long-lived token that only carries the subject.
func (i *Issuer) RefreshToken(sub Subject) (string, error) {
	return i.sign(jwtlib.MapClaims{
		"iss":        i.issuer,
		"sub":        sub.ID,
		"iat":        NowTimeFunc().Unix(),
		"exp":        NowTimeFunc().Add(i.refreshExpiry).Unix(),
		"jti":        uuid.New().String(),
		"token_type": "refresh",
	})
}

// Verify checks the signature, issuer and expiry of raw and returns its
// subject and token type.
func (i *Issuer) Verify(raw string) (subject string, tokenType string, err error) {
	parsed, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwtlib.WithIssuer(i.issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return "", "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("error extracting claims from token")
	}
	subject, _ = claims.GetSubject()
	tokenType, _ = claims["token_type"].(string)
	return subject, tokenType, nil
}

func (i *Issuer) sign(claims jwtlib.MapClaims) (string, error) {
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}
