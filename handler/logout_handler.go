package handler

import (
	"log"

	"hotspotportal/services"
	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Logout(c *gin.Context) {
	value, exists := c.Get("claims")
	claims, ok := value.(*services.Claims)
	if !exists || !ok {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	if err := h.Blacklist.Revoke(c.Request.Context(), claims); err != nil {
		log.Printf("Failed to revoke token for account %s: %v", claims.AccountID, err)
		utils.TrackError("auth", "token_revoke")
		utils.InternalError(c, "Failed to log out")
		return
	}

	utils.TokenUsage.WithLabelValues("access", "revoked").Inc()
	utils.Success(c, gin.H{"message": "Logged out"})
}
