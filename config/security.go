package config

import (
	"hotspotportal/utils"
	"time"
)

type LockoutConfig struct {
	MaxFailedAttempts int
	AttemptWindow     time.Duration
	LockoutDuration   time.Duration
}

func LoadLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxFailedAttempts: utils.GetEnvAsInt("LOCKOUT_MAX_ATTEMPTS", 5),
		AttemptWindow:     utils.GetEnvAsDuration("LOCKOUT_WINDOW", time.Hour),
		LockoutDuration:   utils.GetEnvAsDuration("LOCKOUT_DURATION", 15*time.Minute),
	}
}

type JWTConfig struct {
	SecretKey      string
	ExpirationTime time.Duration
	Issuer         string
}

// LoadJWTConfig reads JWT_EXPIRATION_TIME in seconds, as the rest of the
// deployment tooling writes it.
func LoadJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:      utils.GetEnvAsString("JWT_SECRET_KEY", ""),
		ExpirationTime: time.Duration(utils.GetEnvAsInt("JWT_EXPIRATION_TIME", 3600)) * time.Second,
		Issuer:         utils.GetEnvAsString("JWT_ISSUER", "hotspotPortal"),
	}
}
