package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/auth"
	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/jrsteele09/go-edoctorat/internal/fakeportal"
	"github.com/jrsteele09/go-edoctorat/roles"
	"github.com/jrsteele09/go-edoctorat/token"
	"github.com/jrsteele09/go-edoctorat/token/store"
	"github.com/jrsteele09/go-edoctorat/users"
	"github.com/stretchr/testify/require"
)

const (
	laboEmail    = "directeur.labo@uae.ac.ma"
	laboPassword = "labo"
)

type testFixture struct {
	backend *fakeportal.Portal
	srv     *httptest.Server
	tokens  *store.Memory
	api     *api.Client
	auth    *auth.Client
}

func setupTestFixture(t *testing.T, opts ...fakeportal.Option) *testFixture {
	t.Helper()
	backend, err := fakeportal.New(opts...)
	require.NoError(t, err)
	require.NoError(t, backend.Seed(fakeportal.DemoAccounts()))

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	tokens := store.NewMemory()
	apiClient := api.New(srv.URL)
	return &testFixture{
		backend: backend,
		srv:     srv,
		tokens:  tokens,
		api:     apiClient,
		auth:    auth.NewClient(apiClient, tokens, config.Endpoints{}),
	}
}

func (f *testFixture) me(t *testing.T, bearer string) error {
	t.Helper()
	return f.api.Do(context.Background(), api.Request{
		Method: http.MethodGet,
		Path:   config.Endpoints{}.GetCurrentUserEndpoint(),
		Bearer: bearer,
	}, nil)
}

func TestClient_Login(t *testing.T) {
	f := setupTestFixture(t)

	session, err := f.auth.Login(context.Background(), "  "+laboEmail+" ", laboPassword)
	require.NoError(t, err)
	require.Equal(t, roles.DirecteurLabo, session.Role)
	require.ElementsMatch(t, []string{roles.DirecteurLabo, roles.Professeur}, session.Groups)

	access, ok := f.tokens.Get(store.AccessTokenKey)
	require.True(t, ok)
	require.Equal(t, session.Access, access)
	refresh, ok := f.tokens.Get(store.RefreshTokenKey)
	require.True(t, ok)
	require.Equal(t, session.Refresh, refresh)

	claims, err := token.Decode(access)
	require.NoError(t, err)
	require.Equal(t, roles.DirecteurLabo, roles.Primary(claims.RoleList()))
	require.NoError(t, f.me(t, access))
}

func TestClient_LoginInvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.auth.Login(context.Background(), laboEmail, "wrong")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)

	var authErr *errors.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, http.StatusUnauthorized, authErr.Status)
	require.Equal(t, "Invalid credentials", authErr.Message)

	_, ok := f.tokens.Get(store.AccessTokenKey)
	require.False(t, ok)
}

func TestClient_LoginEmailNotVerified(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.backend.AddUser(users.User{Email: "new@etu.ma", Roles: []string{roles.Candidat}}, "secret")
	require.NoError(t, err)

	_, err = f.auth.Login(context.Background(), "new@etu.ma", "secret")
	require.ErrorIs(t, err, errors.ErrEmailNotVerified)
	require.NotErrorIs(t, err, errors.ErrInvalidCredentials)
	require.Contains(t, errors.FriendlyMessage(err), "not verified")
}

func TestClient_LoginValidatesBeforeSending(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.auth.Login(context.Background(), "not-an-email", "x")
	require.ErrorIs(t, err, errors.ErrValidation)

	_, err = f.auth.Login(context.Background(), laboEmail, "")
	var validationErr *errors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "password", validationErr.Field)
}

func TestClient_RegisterVerifyLogin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	reg := auth.Registration{
		Nom:             "Berrada",
		Prenom:          "Omar",
		Email:           "o.berrada@etu.ma",
		Password:        "s3cret",
		ConfirmPassword: "s3cret",
	}

	msg, err := f.auth.RegisterCandidat(ctx, reg)
	require.NoError(t, err)
	require.NotEmpty(t, msg.String())

	_, err = f.auth.Login(ctx, reg.Email, reg.Password)
	require.ErrorIs(t, err, errors.ErrEmailNotVerified)

	verification, ok := f.backend.VerificationToken(reg.Email)
	require.True(t, ok)
	_, err = f.auth.VerifyEmail(ctx, verification)
	require.NoError(t, err)

	session, err := f.auth.Login(ctx, reg.Email, reg.Password)
	require.NoError(t, err)
	require.Equal(t, roles.Candidat, session.Role)

	// a consumed token cannot be used twice
	_, err = f.auth.VerifyEmail(ctx, verification)
	require.ErrorIs(t, err, errors.ErrRejected)
}

func TestClient_RegisterDuplicate(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.auth.RegisterCandidat(context.Background(), auth.Registration{
		Nom:             "Amrani",
		Prenom:          "Yassine",
		Email:           "y.amrani@etu.ma",
		Password:        "cand",
		ConfirmPassword: "cand",
	})
	require.ErrorIs(t, err, errors.ErrRejected)
	require.Equal(t, "An account with this email already exists", errors.FriendlyMessage(err))
}

func TestClient_ResendVerification(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	_, err := f.backend.AddUser(users.User{Email: "late@etu.ma", Roles: []string{roles.Candidat}}, "secret")
	require.NoError(t, err)

	_, err = f.auth.ResendVerification(ctx, "late@etu.ma")
	require.NoError(t, err)
	_, ok := f.backend.VerificationToken("late@etu.ma")
	require.True(t, ok)

	// unknown addresses are acknowledged the same way
	_, err = f.auth.ResendVerification(ctx, "nobody@etu.ma")
	require.NoError(t, err)
}

func TestClient_PasswordReset(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.auth.RequestPasswordReset(ctx, laboEmail)
	require.NoError(t, err)
	resetToken, ok := f.backend.ResetToken(laboEmail)
	require.True(t, ok)

	_, err = f.auth.PerformPasswordReset(ctx, auth.PasswordReset{Token: resetToken, Password: "new-pass", ConfirmPassword: "other"})
	require.ErrorIs(t, err, errors.ErrValidation)

	_, err = f.auth.PerformPasswordReset(ctx, auth.PasswordReset{Token: resetToken, Password: "new-pass", ConfirmPassword: "new-pass"})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, laboEmail, laboPassword)
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, laboEmail, "new-pass")
	require.NoError(t, err)
}

func TestClient_Refresh(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	session, err := f.auth.Login(ctx, laboEmail, laboPassword)
	require.NoError(t, err)

	access, err := f.auth.Refresh(ctx, session.Refresh)
	require.NoError(t, err)
	stored, _ := f.tokens.Get(store.AccessTokenKey)
	require.Equal(t, access, stored)
	refresh, _ := f.tokens.Get(store.RefreshTokenKey)
	require.Equal(t, session.Refresh, refresh)

	_, err = f.auth.Refresh(ctx, "")
	require.ErrorIs(t, err, errors.ErrRefresh)

	f.backend.SetRefreshFailure(true)
	_, err = f.auth.Refresh(ctx, session.Refresh)
	require.ErrorIs(t, err, errors.ErrRefresh)
}

func TestClient_RefreshErrorsNameTheCall(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	session, err := f.auth.Login(ctx, laboEmail, laboPassword)
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, "")
	require.ErrorIs(t, err, errors.ErrRefresh)
	require.ErrorContains(t, err, "[Client.Refresh] no refresh token")

	f.backend.SetRefreshFailure(true)
	_, err = f.auth.Refresh(ctx, session.Refresh)
	require.ErrorIs(t, err, errors.ErrRefresh)
	require.ErrorContains(t, err, "[Client.Refresh]")
	require.Equal(t, "Your session has expired. Please log in again.", errors.FriendlyMessage(err))
}

func TestClient_RefreshRotation(t *testing.T) {
	f := setupTestFixture(t, fakeportal.WithRefreshRotation(true))
	ctx := context.Background()
	session, err := f.auth.Login(ctx, laboEmail, laboPassword)
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, session.Refresh)
	require.NoError(t, err)
	rotated, _ := f.tokens.Get(store.RefreshTokenKey)
	require.NotEqual(t, session.Refresh, rotated)

	// the old refresh token was revoked by the rotation
	_, err = f.auth.Refresh(ctx, session.Refresh)
	require.ErrorIs(t, err, errors.ErrRefresh)
	_, err = f.auth.Refresh(ctx, rotated)
	require.NoError(t, err)
}

func TestClient_Logout(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	session, err := f.auth.Login(ctx, laboEmail, laboPassword)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx))
	require.Equal(t, 1, f.backend.LogoutCalls())
	_, ok := f.tokens.Get(store.AccessTokenKey)
	require.False(t, ok)
	_, ok = f.tokens.Get(store.RefreshTokenKey)
	require.False(t, ok)

	require.ErrorIs(t, f.me(t, session.Access), errors.ErrNotAuthenticated)
}

func TestClient_LogoutOffline(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	_, err := f.auth.Login(ctx, laboEmail, laboPassword)
	require.NoError(t, err)

	f.srv.Close()
	require.NoError(t, f.auth.Logout(ctx))
	_, ok := f.tokens.Get(store.AccessTokenKey)
	require.False(t, ok)
	_, ok = f.tokens.Get(store.RefreshTokenKey)
	require.False(t, ok)
}

func TestClient_GoogleLogin(t *testing.T) {
	idp, err := fakeportal.NewIdentityProvider("edoctorat-web", "s.bennani@uae.ac.ma")
	require.NoError(t, err)
	f := setupTestFixture(t, fakeportal.WithIdentityProvider(idp))
	ctx := context.Background()

	idToken, err := idp.IDToken("https://accounts.google.com", "nonce")
	require.NoError(t, err)
	session, err := f.auth.GoogleLogin(ctx, idToken)
	require.NoError(t, err)
	require.Equal(t, "s.bennani@uae.ac.ma", session.Email)
	require.Equal(t, "Bennani", session.Profile.Nom)
	require.Contains(t, session.Groups, roles.Professeur)
	stored, _ := f.tokens.Get(store.AccessTokenKey)
	require.Equal(t, session.Access, stored)

	idp.SetEmail("y.amrani@etu.ma")
	idToken, err = idp.IDToken("https://accounts.google.com", "nonce")
	require.NoError(t, err)
	_, err = f.auth.GoogleLogin(ctx, idToken)
	require.ErrorIs(t, err, errors.ErrOAuthRejected)

	_, err = f.auth.GoogleLogin(ctx, " ")
	require.ErrorIs(t, err, errors.ErrValidation)
}
