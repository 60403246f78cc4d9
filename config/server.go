package config

import (
	"strings"
	"time"

	"hotspotportal/utils"
)

type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

func LoadServerConfig() ServerConfig {
	var origins []string
	for _, origin := range strings.Split(utils.GetEnvAsString("CORS_ALLOWED_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return ServerConfig{
		Port:            utils.GetEnvAsString("PORT", "8080"),
		AllowedOrigins:  origins,
		MaxBodyBytes:    int64(utils.GetEnvAsInt("MAX_BODY_BYTES", 1<<20)),
		ShutdownTimeout: utils.GetEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}
