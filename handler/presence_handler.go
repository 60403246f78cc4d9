package handler

import (
	"context"
	"log"
	"time"

	"hotspotportal/gateway"
	"hotspotportal/model"
	"hotspotportal/services"
	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
)

type dashboardResult struct {
	views       []model.PresenceView
	routerError string
	err         error
}

// DashboardPresence builds the multi-account presence view. The whole
// request is bounded by DashboardTimeout and answers {"error":"timeout"}
// when it runs out.
func (h *Handler) DashboardPresence(c *gin.Context) {
	timeout := h.DashboardTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	done := make(chan dashboardResult, 1)
	go func() {
		done <- h.buildDashboard(ctx)
	}()

	var result dashboardResult
	select {
	case <-ctx.Done():
	case result = <-done:
	}
	if ctx.Err() != nil {
		utils.TrackError("dashboard", "timeout")
		log.Printf("Dashboard presence timed out after %s (request %s)", timeout, c.GetString("request_id"))
		utils.GatewayTimeout(c, "timeout")
		return
	}

	if result.err != nil {
		log.Printf("Dashboard presence failed: %v", result.err)
		utils.InternalError(c, "Failed to load accounts")
		return
	}

	online := 0
	for _, v := range result.views {
		if v.Status == model.PresenceOnline {
			online++
		}
	}
	response := gin.H{
		"accounts": result.views,
		"online":   online,
		"total":    len(result.views),
	}
	if result.routerError != "" {
		response["router_error"] = result.routerError
	}
	utils.Success(c, response)
}

func (h *Handler) buildDashboard(ctx context.Context) dashboardResult {
	accounts, err := h.Accounts.ListAccounts(ctx)
	if err != nil {
		return dashboardResult{err: err}
	}

	live, routerError := h.liveSessions(ctx)
	return dashboardResult{
		views:       h.Presence.BuildPresenceView(ctx, accounts, live),
		routerError: routerError,
	}
}

// liveSessions lists active sessions with DHCP host names attached. A router
// failure yields no sessions and a user-facing message; a lease failure only
// loses the host names.
func (h *Handler) liveSessions(ctx context.Context) ([]model.LiveSession, string) {
	live, err := h.Gateway.ListLiveSessions(ctx, "")
	if err != nil {
		log.Printf("Listing live sessions failed: %v", err)
		utils.TrackError("router", "list_live_sessions")
		return nil, gateway.UserMessage(err)
	}

	leases, err := h.Gateway.ListDHCPLeases(ctx)
	if err != nil {
		log.Printf("Listing DHCP leases failed, host names omitted: %v", err)
		return live, ""
	}
	services.AttachHostNames(live, leases)
	return live, ""
}

func (h *Handler) AccountPresence(c *gin.Context) {
	account, ok := h.loadAccount(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	live, routerError := h.liveSessions(ctx)
	view := h.Presence.BuildAccountPresence(ctx, *account, live)

	response := gin.H{"presence": view}
	if routerError != "" {
		response["router_error"] = routerError
	}
	utils.Success(c, response)
}
