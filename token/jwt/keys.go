package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// RS256 is the only asymmetric algorithm the identity provider side signs with.
const RS256 = "RS256"

// KeyPair is an RSA key used to sign ID tokens.
type KeyPair struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey
}

// JWKS represents a JSON Web Key Set
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kty string `json:"kty"`           // Key type (RSA, EC)
	Use string `json:"use,omitempty"` // sig or enc
	Kid string `json:"kid,omitempty"` // Key ID
	Alg string `json:"alg,omitempty"` // Algorithm
	N   string `json:"n,omitempty"`   // Modulus
	E   string `json:"e,omitempty"`   // Exponent
}

// GenerateRSAKeyPair generates a new RSA key pair for RS256 signing
func GenerateRSAKeyPair(keyID string, bits int) (*KeyPair, error) {
	if bits < 2048 {
		bits = 2048
	}
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}
	return &KeyPair{KeyID: keyID, PrivateKey: privateKey}, nil
}

// JWKS returns the public half of the key as a key set.
func (kp *KeyPair) JWKS() JWKS {
	pub := kp.PrivateKey.PublicKey
	return JWKS{Keys: []JWK{{
		Kty: "RSA",
		Use: "sig",
		Kid: kp.KeyID,
		Alg: RS256,
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}}}
}

// IDTokenClaims are the identity claims of an OpenID Connect ID token.
type IDTokenClaims struct {
	Issuer   string
	Audience string
	Subject  string
	Email    string
	Name     string
	Nonce    string
	Expiry   time.Duration
}

// SignIDToken mints an RS256 ID token.
func (kp *KeyPair) SignIDToken(c IDTokenClaims) (string, error) {
	if c.Expiry == 0 {
		c.Expiry = time.Hour
	}
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"iss":            c.Issuer,
		"aud":            c.Audience,
		"sub":            c.Subject,
		"email":          c.Email,
		"email_verified": true,
		"name":           c.Name,
		"iat":            now.Unix(),
		"exp":            now.Add(c.Expiry).Unix(),
	}
	if c.Nonce != "" {
		claims["nonce"] = c.Nonce
	}
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims)
	tok.Header["kid"] = kp.KeyID
	signed, err := tok.SignedString(kp.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign ID token: %w", err)
	}
	return signed, nil
}
