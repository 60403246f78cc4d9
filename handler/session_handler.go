package handler

import (
	"log"

	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
)

// KickSession removes one entry of the router's active list.
func (h *Handler) KickSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		utils.BadRequest(c, "Session ID required")
		return
	}

	if err := h.Gateway.RemoveLiveSession(c.Request.Context(), sessionID); err != nil {
		respondGatewayError(c, "remove_live_session", err)
		return
	}

	log.Printf("Account %s removed live session %s", c.GetString("account_id"), sessionID)
	utils.Success(c, gin.H{"message": "Session removed", "session_id": sessionID})
}
