package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the settings a running server cannot do
// without are present. Redis and S3 stay optional in every
// environment.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.DBUser == "" {
		errors = append(errors, "database user is required (DB_USER or db_user secret)")
	}
	if cfg.DBPassword == "" {
		errors = append(errors, "database password is required (DB_PASSWORD or db_password secret)")
	}
	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT secret is required (JWT_SECRET or jwt_secret secret)")
	}
	if (cfg.RedisURL != "" || cfg.RedisHost != "") && cfg.RedisPort == "" {
		errors = append(errors, "redis port is required when redis is configured")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}
	return nil
}
