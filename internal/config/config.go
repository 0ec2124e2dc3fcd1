package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	EndpointConfig
	OAuthConfig
	ClientConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetSessionFile() string
	GetLogLevel() string
	GetLogFormat() string
}

type EndpointConfig interface {
	GetLoginEndpoint() string
	GetGoogleLoginEndpoint() string
	GetRefreshEndpoint() string
	GetLogoutEndpoint() string
	GetRegisterCandidatEndpoint() string
	GetVerifyEmailEndpoint() string
	GetResendVerificationEndpoint() string
	GetRequestPasswordResetEndpoint() string
	GetPerformPasswordResetEndpoint() string
	GetCurrentUserEndpoint() string
}

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetRateLimit() float64
	GetBreakerFailures() uint32
	GetBreakerTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Endpoints
	OAuth
	Client
}

// New loads an optional .env file from the working directory and returns
// the environment-backed configuration.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
