package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"hotspotportal/model"
	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 3 * time.Second

func (h *Handler) Health(c *gin.Context) {
	var stats model.HealthStats
	stats.Status = "ok"
	stats.System.CPUUsage = utils.GetCPUUsage()
	stats.System.MemoryUsage = utils.GetMemoryUsage()
	stats.CheckedAt = time.Now().UTC()

	stats.Dependencies.Router = h.check(c.Request.Context(), "router", h.Gateway)
	stats.Dependencies.Store = h.check(c.Request.Context(), "store", h.Store)

	status := http.StatusOK
	if stats.Dependencies.Router != "ok" || stats.Dependencies.Store != "ok" {
		stats.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, &utils.Response{Status: status, Data: stats})
}

func (h *Handler) check(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return "unconfigured"
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		log.Printf("Health check of %s failed: %v", name, err)
		return "unavailable"
	}
	return "ok"
}
