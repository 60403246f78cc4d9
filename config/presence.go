package config

import (
	"hotspotportal/utils"
	"time"
)

type PresenceConfig struct {
	LookupTimeout    time.Duration
	UsernameCap      int
	SessionCap       int
	DashboardTimeout time.Duration
}

func LoadPresenceConfig() PresenceConfig {
	return PresenceConfig{
		LookupTimeout:    utils.GetEnvAsDuration("PRESENCE_LOOKUP_TIMEOUT", 3*time.Second),
		UsernameCap:      utils.GetEnvAsInt("PRESENCE_USERNAME_CAP", 50),
		SessionCap:       utils.GetEnvAsInt("PRESENCE_SESSION_CAP", 100),
		DashboardTimeout: utils.GetEnvAsDuration("DASHBOARD_TIMEOUT", 30*time.Second),
	}
}

type RedisConfig struct {
	URL          string
	AlertChannel string
	// AlertSink is "redis" to publish alerts or "log" to only log them.
	AlertSink string
}

func LoadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:          utils.GetEnvAsString("REDIS_URL", "redis://localhost:6379/0"),
		AlertChannel: utils.GetEnvAsString("ALERT_CHANNEL", "portal:alerts"),
		AlertSink:    utils.GetEnvAsString("ALERT_SINK", "redis"),
	}
}
