package config

import (
	"fmt"
	"strings"
	"time"
)

type DevAPIConfig interface {
	GetDevAPIPort() string
	GetDevAPISecret() string
	GetDevAPIAccessTokenTTL() time.Duration
	GetDevAPIRefreshTokenTTL() time.Duration
}

type DevAPI struct{}

var _ DevAPIConfig = DevAPI{}

func (DevAPI) GetDevAPIPort() string {
	port := GetEnv("DEVAPI_PORT", "8081")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (DevAPI) GetDevAPISecret() string {
	return GetEnv("DEVAPI_SECRET", "dev-only-signing-secret")
}

// GetDevAPIAccessTokenTTL defaults to two minutes
func (DevAPI) GetDevAPIAccessTokenTTL() time.Duration {
	return GetEnvDuration("DEVAPI_ACCESS_TTL", 2*time.Minute)
}

func (DevAPI) GetDevAPIRefreshTokenTTL() time.Duration {
	return GetEnvDuration("DEVAPI_REFRESH_TTL", 7*24*time.Hour)
}
