package model

import "time"

// HealthStats is the payload of the health endpoint.
type HealthStats struct {
	Status string `json:"status"`
	System struct {
		CPUUsage    float64 `json:"cpu_usage"`
		MemoryUsage float64 `json:"memory_usage"`
	} `json:"system"`
	Dependencies struct {
		Router string `json:"router"`
		Store  string `json:"store"`
	} `json:"dependencies"`
	CheckedAt time.Time `json:"checked_at"`
}
