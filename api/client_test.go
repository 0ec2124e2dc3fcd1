package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/jrsteele09/go-edoctorat/api"
	"github.com/jrsteele09/go-edoctorat/internal/errors"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    int    `json:"id"`
	Titre string `json:"titre"`
}

func staticToken(tok string) api.TokenSource {
	return api.TokenSourceFunc(func(context.Context) (string, error) { return tok, nil })
}

func TestClient_BearerAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get(api.RequestIDHeader))
		require.Equal(t, "/api/sujets/", r.URL.Path)
		require.Equal(t, "10", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(api.Page[item]{Count: 1, Results: []item{{ID: 1, Titre: "IA"}}})
	}))
	defer srv.Close()

	c := api.New(srv.URL+"/", api.WithTokenSource(staticToken("abc")))
	var page api.Page[item]
	err := c.Get(context.Background(), "/api/sujets/", api.Pagination{Limit: 10}.Query(), &page)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	require.Equal(t, "IA", page.Results[0].Titre)
	require.False(t, page.HasNext())
}

func TestClient_AnonymousWhenNotAuthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	source := api.TokenSourceFunc(func(context.Context) (string, error) { return "", errors.ErrNotAuthenticated })
	c := api.New(srv.URL, api.WithTokenSource(source))
	require.NoError(t, c.Post(context.Background(), "/api/resend-verification/", map[string]string{"email": "a@b.ma"}, nil))
}

func TestClient_TokenSourceFailureAborts(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	source := api.TokenSourceFunc(func(context.Context) (string, error) { return "", errors.ErrRefresh })
	c := api.New(srv.URL, api.WithTokenSource(source))
	err := c.Get(context.Background(), "/api/x", nil, nil)
	require.ErrorIs(t, err, errors.ErrRefresh)
	require.Zero(t, atomic.LoadInt32(&hits))
}

func TestClient_StatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"EMAIL_NOT_VERIFIED","message":"Verify first"}`))
		case "/detail":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		case "/plain":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}
	}))
	defer srv.Close()
	c := api.New(srv.URL)

	err := c.Get(context.Background(), "/forbidden", nil, nil)
	var statusErr *errors.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, "EMAIL_NOT_VERIFIED", statusErr.Code)
	require.Equal(t, "Verify first", statusErr.Message)
	require.ErrorIs(t, err, errors.ErrForbidden)

	err = c.Get(context.Background(), "/detail", nil, nil)
	require.ErrorIs(t, err, errors.ErrNotFound)
	require.Contains(t, err.Error(), "Not found.")

	err = c.Get(context.Background(), "/plain", nil, nil)
	require.ErrorIs(t, err, errors.ErrServer)
	require.Contains(t, err.Error(), "upstream down")
}

func TestClient_UnauthorizedHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var calls int32
	c := api.New(srv.URL,
		api.WithTokenSource(staticToken("stale")),
		api.WithUnauthorizedHandler(func(context.Context) { atomic.AddInt32(&calls, 1) }),
	)

	err := c.Get(context.Background(), "/api/candidat-info/", nil, nil)
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// anonymous calls such as login never trigger a forced logout
	err = c.Do(context.Background(), api.Request{Method: http.MethodPost, Path: "/api/login", Anonymous: true}, nil)
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
	// nor do calls that end the session themselves
	err = c.Do(context.Background(), api.Request{Method: http.MethodPost, Path: "/api/logout", Bearer: "stale", KeepSession: true}, nil)
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_NetworkErrorAndBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	c := api.New(target, api.WithCircuitBreaker(2, time.Minute))
	for i := 0; i < 3; i++ {
		err := c.Get(context.Background(), "/api/x", nil, nil)
		require.ErrorIs(t, err, errors.ErrNetwork)
	}
	err := c.Get(context.Background(), "/api/x", nil, nil)
	require.ErrorIs(t, err, errors.ErrNetwork)
	require.Contains(t, err.Error(), "backend unavailable")
}

func TestClient_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := api.New(srv.URL).Get(ctx, "/slow", nil, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_GetBlob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	body, contentType, err := api.New(srv.URL).GetBlob(context.Background(), "/api/report", url.Values{"annee": {"2026"}})
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(body))
	require.Equal(t, "application/pdf", contentType)
}

func TestPagination(t *testing.T) {
	p := api.Pagination{Limit: 20, Offset: 40}
	require.Equal(t, "limit=20&offset=40", p.Query().Encode())
	require.Equal(t, api.Pagination{Limit: 20, Offset: 60}, p.NextPage())
	require.Empty(t, api.Pagination{}.Query())
}

func TestClient_RateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	// one request per second with a burst of one: the second call has to wait
	c := api.New(srv.URL, api.WithRateLimit(1))
	require.NoError(t, c.Get(context.Background(), "/a", nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := c.Get(ctx, "/b", nil, nil)
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())
}
