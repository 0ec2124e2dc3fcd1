package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("UNIFIED_LOGIN_ENDPOINT", "")
	t.Setenv("REQUEST_TIMEOUT", "")

	c := config.New()
	require.Equal(t, "http://localhost:8000", c.GetBaseURL())
	require.Equal(t, "/api/login", c.GetLoginEndpoint())
	require.Equal(t, "/api/token/refresh/", c.GetRefreshEndpoint())
	require.Equal(t, 15*time.Second, c.GetRequestTimeout())
	require.Equal(t, "DEV", c.GetEnv())
}

func TestConfig_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://portal.example.ma/")
	t.Setenv("UNIFIED_LOGIN_ENDPOINT", "/api/auth/login/")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("BREAKER_FAILURES", "not-a-number")
	t.Setenv("SESSION_FILE", filepath.Join("tmp", "s.yaml"))

	c := config.New()
	require.Equal(t, "https://portal.example.ma", c.GetBaseURL())
	require.Equal(t, "/api/auth/login/", c.GetLoginEndpoint())
	require.Equal(t, 3*time.Second, c.GetRequestTimeout())
	require.Equal(t, 2.5, c.GetRateLimit())
	require.Equal(t, uint32(5), c.GetBreakerFailures())
	require.Equal(t, filepath.Join("tmp", "s.yaml"), c.GetSessionFile())
}

func TestConfig_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	require.Equal(t, 15*time.Second, config.New().GetRequestTimeout())
}
