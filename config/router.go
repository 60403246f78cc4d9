package config

import (
	"hotspotportal/utils"
	"time"
)

// RouterConfig describes how to reach the RouterOS API of the hotspot
// controller.
type RouterConfig struct {
	Address        string
	Username       string
	Password       string
	UseTLS         bool
	ConnectTimeout time.Duration
}

func LoadRouterConfig() RouterConfig {
	return RouterConfig{
		Address:        utils.GetEnvAsString("ROUTER_ADDRESS", "192.168.88.1:8728"),
		Username:       utils.GetEnvAsString("ROUTER_USERNAME", "admin"),
		Password:       utils.GetEnvAsString("ROUTER_PASSWORD", ""),
		UseTLS:         utils.GetEnvAsBool("ROUTER_USE_TLS", false),
		ConnectTimeout: utils.GetEnvAsDuration("ROUTER_CONNECT_TIMEOUT", 5*time.Second),
	}
}
