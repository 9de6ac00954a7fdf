package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names. Durations use time.ParseDuration syntax
// ("2h", "720h"); integers are plain decimal.
const (
	envHTTPAddr         = "HTTP_ADDR"
	envDatabaseDSN      = "DATABASE_DSN"
	envSecretKey        = "AUTH_SECRET_KEY"
	envBcryptCost       = "AUTH_BCRYPT_COST"
	envMaxLoginAttempts = "AUTH_MAX_LOGIN_ATTEMPTS"
	envLockDuration     = "AUTH_LOCK_DURATION"
	envAccessTokenTTL   = "AUTH_ACCESS_TOKEN_TTL"
)

// parseEnv overlays Config fields from the environment. Unset variables leave
// the current value alone; malformed numeric or duration values are ignored
// rather than guessed at, and Validate catches anything left inconsistent.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv(envHTTPAddr); ok {
		config.HTTPAddr = v
	}
	if v, ok := os.LookupEnv(envDatabaseDSN); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv(envSecretKey); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv(envBcryptCost); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.BcryptCost = n
		}
	}
	if v, ok := os.LookupEnv(envMaxLoginAttempts); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.MaxLoginAttempts = n
		}
	}
	if v, ok := os.LookupEnv(envLockDuration); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.LockDuration = d
		}
	}
	if v, ok := os.LookupEnv(envAccessTokenTTL); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenTTL = d
		}
	}
}
