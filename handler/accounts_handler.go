package handler

import (
	"errors"
	"log"

	"hotspotportal/model"
	"hotspotportal/repository"
	"hotspotportal/services"
	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
)

// AccountQuota never fails because of the router; an unknown quota comes
// back with known=false.
func (h *Handler) AccountQuota(c *gin.Context) {
	account, ok := h.loadAccount(c)
	if !ok {
		return
	}

	quota := h.Quota.Evaluate(c.Request.Context(), account.AnchorToken)
	utils.Success(c, gin.H{"quota": quota})
}

// VerifyIdentity checks an anchor token against the router before an
// account is created for it. Router errors are reported, not guessed around.
func (h *Handler) VerifyIdentity(c *gin.Context) {
	var req model.VerifyIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("accounts", "invalid_verify_request")
		utils.BadRequest(c, "Invalid Request")
		return
	}

	identity, err := h.Resolver.Resolve(c.Request.Context(), req.AnchorToken)
	if err != nil && !errors.Is(err, services.ErrIdentityNotFound) {
		respondGatewayError(c, "resolve_identity", err)
		return
	}

	switch err := services.CheckVerifyMode(req.Mode, identity); {
	case errors.Is(err, services.ErrIdentityExists):
		utils.Conflict(c, "A hotspot user with this anchor token already exists")
	case errors.Is(err, services.ErrIdentityNotFound):
		utils.NotFound(c, "No hotspot user found for this anchor token")
	case err != nil:
		utils.BadRequest(c, "Unknown verification mode")
	default:
		utils.Success(c, gin.H{
			"anchor_token": req.AnchorToken,
			"mode":         req.Mode,
			"identity":     identity,
		})
	}
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var req model.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackError("accounts", "invalid_create_request")
		utils.BadRequest(c, "Invalid Request")
		return
	}

	account, err := h.Creator.CreateAccount(c.Request.Context(), req)
	switch {
	case err == nil:
		log.Printf("Account %s created for anchor %s by %s", account.ID, account.AnchorToken, c.GetString("account_id"))
		utils.Success(c, gin.H{"account": account})
	case errors.Is(err, services.ErrIdentityExists):
		utils.Conflict(c, "A hotspot user with this anchor token already exists")
	case errors.Is(err, services.ErrIdentityNotFound):
		utils.NotFound(c, "No hotspot user found for this anchor token")
	case errors.Is(err, repository.ErrDuplicateAccount):
		utils.Conflict(c, "Username or anchor token already in use")
	case isGatewayError(err):
		respondGatewayError(c, "create_account", err)
	default:
		log.Printf("Creating account %s failed: %v", req.Username, err)
		utils.InternalError(c, "Failed to create account")
	}
}
