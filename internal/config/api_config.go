package config

import "time"

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the REST backend base path, fixed for the life of the process
func (API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8081/api/v1")
}

func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 10*time.Second)
}

func (API) GetLogoutTimeout() time.Duration {
	return GetEnvDuration("LOGOUT_TIMEOUT", 3*time.Second)
}
