package config

import (
	"hotspotportal/utils"
	"time"
)

type DatabaseConfig struct {
	URI                     string
	MaxPoolSize             uint64
	MinPoolSize             uint64
	MaxConnIdleTime         time.Duration
	DatabaseName            string
	RetryWrites             bool
	AccountsCollection      string
	LoginAttemptsCollection string
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URI:                     utils.GetEnvAsString("MONGO_URI", "mongodb://localhost:27017"),
		MaxPoolSize:             utils.GetEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
		MinPoolSize:             utils.GetEnvAsUint64("MONGO_MIN_POOL_SIZE", 10),
		MaxConnIdleTime:         time.Duration(utils.GetEnvAsInt("MONGO_MAX_CONN_IDLE_TIME", 60)) * time.Second,
		DatabaseName:            utils.GetEnvAsString("MONGO_DB", "hotspot_portal"),
		RetryWrites:             utils.GetEnvAsBool("MONGO_RETRY_WRITES", true),
		AccountsCollection:      utils.GetEnvAsString("ACCOUNTS_COLLECTION", "accounts"),
		LoginAttemptsCollection: utils.GetEnvAsString("LOGIN_ATTEMPTS_COLLECTION", "login_attempts"),
	}
}
