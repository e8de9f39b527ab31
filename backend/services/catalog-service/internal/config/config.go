package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/poofware/mono-repo/backend/shared/go-utils"
)

type Config struct {
	AppName    string
	AppPort    string
	AppUrl     string
	DBUrl      string
	LockField  string
	MaxRetries int
}

const (
	DefaultLockField  = "row_version"
	DefaultMaxRetries = 3
)

// build-time overrides, set with -ldflags
var (
	AppName = "catalog-service"
)

// LoadConfig reads the runtime environment and exits on anything missing.
func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)

	cfg, err := loadFromEnv(os.Getenv)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	if cfg.DBUrl == "" {
		utils.Logger.Warn("DATABASE_URL not set; using in-memory book store")
	}
	utils.Logger.Infof("Loaded config for %s (lock field %q, max retries %d)", cfg.AppName, cfg.LockField, cfg.MaxRetries)
	return cfg
}

func loadFromEnv(getenv func(string) string) (*Config, error) {
	if AppName == "" {
		return nil, fmt.Errorf("AppName was not provided via ldflags")
	}

	appPort := getenv("APP_PORT")
	if appPort == "" {
		return nil, fmt.Errorf("APP_PORT env var is missing")
	}
	appURL := getenv("APP_URL_FROM_ANYWHERE")
	if appURL == "" {
		return nil, fmt.Errorf("APP_URL_FROM_ANYWHERE env var is missing")
	}

	lockField := getenv("LOCK_FIELD")
	if lockField == "" {
		lockField = DefaultLockField
	}

	maxRetries := DefaultMaxRetries
	if raw := getenv("UPDATE_MAX_RETRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("UPDATE_MAX_RETRIES must be a positive integer, got %q", raw)
		}
		maxRetries = n
	}

	return &Config{
		AppName:    AppName,
		AppPort:    appPort,
		AppUrl:     appURL,
		DBUrl:      getenv("DATABASE_URL"),
		LockField:  lockField,
		MaxRetries: maxRetries,
	}, nil
}

func (c *Config) Close() {
}
