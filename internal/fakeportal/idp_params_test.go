package fakeportal

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorizeParams_Validate(t *testing.T) {
	valid := url.Values{
		"client_id":             {"edoctorat-cli"},
		"response_type":         {"code"},
		"redirect_uri":          {"http://127.0.0.1:53682/callback"},
		"scope":                 {"openid email profile"},
		"state":                 {"s"},
		"code_challenge":        {"E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"},
		"code_challenge_method": {"S256"},
	}
	with := func(key, value string) url.Values {
		q := url.Values{}
		for k, v := range valid {
			q[k] = v
		}
		if value == "" {
			q.Del(key)
		} else {
			q.Set(key, value)
		}
		return q
	}

	tests := []struct {
		name  string
		query url.Values
		want  error
	}{
		{"valid", valid, nil},
		{"other client", with("client_id", "someone-else"), ErrUnknownClient},
		{"remote redirect", with("redirect_uri", "https://evil.example/callback"), ErrInvalidRedirectURI},
		{"no redirect", with("redirect_uri", ""), ErrInvalidRedirectURI},
		{"implicit flow", with("response_type", "token"), ErrInvalidResponseType},
		{"fragment mode", with("response_mode", "fragment"), ErrInvalidResponseMode},
		{"no challenge", with("code_challenge", ""), ErrInvalidCodeChallenge},
		{"plain challenge", with("code_challenge_method", "plain"), ErrInvalidCodeChallengeMethod},
		{"foreign scope", with("scope", "openid https://www.googleapis.com/auth/drive"), ErrInvalidScope},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseAuthorizeParams(tt.query).Validate("edoctorat-cli")
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}
