package config

import (
	"fmt"

	"github.com/dmitrijs2005/jobmarket/internal/flagx"
)

// parseEnv loads .env (if present) and overlays the process environment:
// GO_ENV, LOG_LEVEL, JWT_SECRET, JWT_REFRESH_SECRET, DATABASE_DSN, MONGO_URI,
// ACCESS_TOKEN_TTL, REFRESH_TOKEN_TTL.
func parseEnv(config *Config) error {
	if err := flagx.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	flagx.EnvString("GO_ENV", &config.Environment)
	flagx.EnvString("LOG_LEVEL", &config.LogLevel)
	flagx.EnvString("JWT_SECRET", &config.AccessSecret)
	flagx.EnvString("JWT_REFRESH_SECRET", &config.RefreshSecret)
	flagx.EnvString("DATABASE_DSN", &config.DatabaseDSN)
	flagx.EnvString("MONGO_URI", &config.MongoURI)

	if err := flagx.EnvDuration("ACCESS_TOKEN_TTL", &config.AccessTokenTTL); err != nil {
		return fmt.Errorf("ACCESS_TOKEN_TTL: %w", err)
	}
	if err := flagx.EnvDuration("REFRESH_TOKEN_TTL", &config.RefreshTokenTTL); err != nil {
		return fmt.Errorf("REFRESH_TOKEN_TTL: %w", err)
	}
	return nil
}
