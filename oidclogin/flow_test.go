package oidclogin_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/internal/fakeportal"
	"github.com/jrsteele09/go-edoctorat/oidclogin"
	"github.com/stretchr/testify/require"
)

const testClientID = "edoctorat-cli"

type testFixture struct {
	idp *fakeportal.IdentityProvider
	srv *httptest.Server
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	idp, err := fakeportal.NewIdentityProvider(testClientID, "s.bennani@uae.ac.ma")
	require.NoError(t, err)
	srv := httptest.NewServer(idp)
	t.Cleanup(srv.Close)
	return &testFixture{idp: idp, srv: srv}
}

// browser follows the authorization redirect back to the loopback listener.
func browser() func(string) error {
	return func(authURL string) error {
		resp, err := http.Get(authURL)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
}

func (f *testFixture) flow(t *testing.T, opts ...oidclogin.Option) *oidclogin.Flow {
	t.Helper()
	flow, err := oidclogin.New(context.Background(), f.srv.URL, testClientID, "", nil, opts...)
	require.NoError(t, err)
	return flow
}

func TestFlow_Login(t *testing.T) {
	f := setupTestFixture(t)
	flow := f.flow(t, oidclogin.WithBrowser(browser()))

	idToken, err := flow.Login(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, idToken)
}

func TestFlow_LoginDenied(t *testing.T) {
	f := setupTestFixture(t)
	f.idp.SetDenied(true)
	flow := f.flow(t, oidclogin.WithBrowser(browser()))

	_, err := flow.Login(context.Background())
	require.ErrorIs(t, err, errors.ErrOAuthRejected)
	require.Contains(t, err.Error(), "access_denied")
}

func TestFlow_IgnoresForeignState(t *testing.T) {
	f := setupTestFixture(t)
	flow := f.flow(t,
		oidclogin.WithTimeout(300*time.Millisecond),
		oidclogin.WithBrowser(func(authURL string) error {
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			redirect := u.Query().Get("redirect_uri")
			resp, err := http.Get(redirect + "?state=forged&code=stolen")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			return nil
		}),
	)

	_, err := flow.Login(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFlow_CancelledWhileWaiting(t *testing.T) {
	f := setupTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	flow := f.flow(t, oidclogin.WithBrowser(func(string) error {
		cancel()
		return nil
	}))

	_, err := flow.Login(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewFromConfig_RequiresClientID(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	_, err := oidclogin.NewFromConfig(context.Background(), config.OAuth{})
	require.ErrorIs(t, err, errors.ErrUnsupported)
}
