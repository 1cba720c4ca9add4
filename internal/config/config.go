package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
	DevAPIConfig
}

type EnvConfig interface {
	GetPort() string
	GetBindHost() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetLogoutTimeout() time.Duration
}

type StoreConfig interface {
	GetTokenStore() string
	GetRedisURL() string
	GetRedisPrefix() string
}

type mainConfig struct {
	EnvVars
	API
	Store
	DevAPI
}

func New() Config {
	return mainConfig{}
}

// LoadDotEnv loads variables from the given .env files (default ".env") into the
// process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
