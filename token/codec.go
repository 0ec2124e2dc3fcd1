// Package token decodes portal access tokens without verifying their signature.
//
// Decoding is a UX convenience used to read the expiry and role claims; the
// backend remains the only authority on whether a token is valid.
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/internal/utils"
)

const authorityPrefix = "ROLE_"

// Claims is the decoded payload of an access token. Expiry is zero when the
// token carries no exp claim.
type Claims struct {
	Subject     string    `json:"sub,omitempty"`
	Email       string    `json:"email,omitempty"`
	Expiry      time.Time `json:"exp,omitempty"`
	IssuedAt    time.Time `json:"iat,omitempty"`
	Roles       []string  `json:"roles,omitempty"`
	Authorities []string  `json:"authorities,omitempty"`
	Groups      []string  `json:"groups,omitempty"`
}

// Decode extracts the claims of a JWT. It fails with errors.ErrDecode when the
// input is not three base64url segments carrying a JSON payload.
func Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.Wrapf(errors.ErrDecode, "[token.Decode] empty token")
	}

	// a missing or unknown alg only matters for verification; the payload
	// is still readable
	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil && !(errors.Is(err, jwtlib.ErrTokenUnverifiable) && parsed != nil && parsed.Claims != nil) {
		return nil, errors.Wrapf(errors.ErrDecode, "[token.Decode] %v", err)
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrapf(errors.ErrDecode, "[token.Decode] unexpected claims type")
	}

	claims := &Claims{
		Roles:       stringList(mapClaims["roles"]),
		Authorities: stringList(mapClaims["authorities"]),
		Groups:      stringList(mapClaims["groups"]),
	}
	claims.Subject, _ = mapClaims.GetSubject()
	claims.Email, _ = mapClaims["email"].(string)

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDecode, "[token.Decode] exp: %v", err)
	}
	if exp != nil {
		claims.Expiry = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	return claims, nil
}

// RoleList resolves the role claim: roles when present, otherwise authorities
// with the ROLE_ prefix stripped and lower-cased, otherwise groups.
func (c *Claims) RoleList() []string {
	switch {
	case len(c.Roles) > 0:
		return c.Roles
	case len(c.Authorities) > 0:
		roles := make([]string, 0, len(c.Authorities))
		for _, a := range c.Authorities {
			roles = append(roles, strings.ToLower(strings.TrimPrefix(a, authorityPrefix)))
		}
		return roles
	case len(c.Groups) > 0:
		return c.Groups
	}
	return nil
}

// ExpiredAt reports whether the claims are expired at now. A token without
// exp never expires in the backend's eyes but is treated as expired here.
func (c *Claims) ExpiredAt(now time.Time) bool {
	if c.Expiry.IsZero() {
		return true
	}
	return !now.Before(c.Expiry)
}

// IsExpired decodes raw and compares its exp claim with now. Any decode
// failure counts as expired.
func IsExpired(raw string, now time.Time) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	return claims.ExpiredAt(now)
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []any:
		return utils.ToStringSlice(list)
	case []string:
		return list
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	}
	return nil
}
