package config

import (
	"strconv"
	"time"
)

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetRequestTimeout() time.Duration {
	return GetEnvDuration("REQUEST_TIMEOUT", 15*time.Second)
}

// GetRateLimit is the number of requests per second the client may issue. Zero disables throttling.
func (Client) GetRateLimit() float64 {
	return GetEnvFloat("RATE_LIMIT_RPS", 0)
}

// GetBreakerFailures is the number of consecutive transport failures before
// the circuit opens. Zero disables the breaker.
func (Client) GetBreakerFailures() uint32 {
	n, err := strconv.ParseUint(GetEnv("BREAKER_FAILURES", "5"), 10, 32)
	if err != nil {
		return 5
	}
	return uint32(n)
}

func (Client) GetBreakerTimeout() time.Duration {
	return GetEnvDuration("BREAKER_TIMEOUT", 30*time.Second)
}
