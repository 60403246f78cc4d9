package handler

import (
	"log"
	"time"

	"hotspotportal/model"
	"hotspotportal/services"
	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
)

const invalidCredentials = "Invalid username or password"

func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var loginReq model.LoginRequest
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		utils.TrackError("auth", "invalid_request")
		utils.TrackAuthAttempt("failure", "validation")
		utils.BadRequest(c, "Invalid Request")
		return
	}

	account, err := h.Accounts.FindByUsername(ctx, loginReq.Username)
	if err != nil {
		utils.TrackError("auth", "account_lookup")
		log.Printf("Login lookup for %q failed: %v", loginReq.Username, err)
		utils.InternalError(c, "Login is temporarily unavailable")
		return
	}
	if account == nil {
		services.ComparePasswords(services.DummyPasswordHash, loginReq.Password)
		utils.TrackAuthAttempt("failure", "unknown_account")
		utils.Unauthorized(c, invalidCredentials)
		return
	}

	// The lock is checked before any credential work.
	status := h.Lockout.IsLockedOut(ctx, account.ID)
	if status.Degraded {
		log.Printf("Lockout state unknown for account %s, allowing attempt", account.ID)
	}
	if status.Locked {
		utils.TrackAuthAttempt("failure", "locked")
		respondLocked(c, status.Until)
		return
	}

	if !services.ComparePasswords(account.PasswordHash, loginReq.Password) {
		utils.TrackAuthAttempt("failure", "invalid_password")
		h.rejectCredentials(c, account)
		return
	}

	if account.TwoFactorEnabled {
		if loginReq.TwoFactorCode == "" {
			utils.TrackAuthAttempt("pending", "2fa_required")
			utils.Success(c, gin.H{
				"requires_2fa": true,
				"message":      "2FA code required",
			})
			return
		}
		if !totp.Validate(loginReq.TwoFactorCode, account.TwoFactorSecret) {
			utils.TrackAuthAttempt("failure", "invalid_2fa")
			h.rejectCredentials(c, account)
			return
		}
	}

	if err := h.Lockout.Reset(ctx, account.ID); err != nil {
		log.Printf("Clearing login attempts for %s failed: %v", account.ID, err)
	}

	token, claims, err := h.Tokens.GenerateToken(account)
	if err != nil {
		utils.TrackError("auth", "token_generation")
		utils.InternalError(c, "Failed to generate token")
		return
	}
	utils.TokenUsage.WithLabelValues("access", "generated").Inc()
	utils.TrackAuthAttempt("success", "login")

	utils.Success(c, gin.H{
		"message":    "Login successful",
		"token":      token,
		"expires_at": claims.ExpiresAt.Time,
		"account": gin.H{
			"id":                   account.ID,
			"username":             account.Username,
			"display_name":         account.DisplayName,
			"role":                 account.Role,
			"must_change_password": account.MustChangePassword,
		},
	})
}

// rejectCredentials records the failure and answers with the generic
// message, unless this failure is the one that locked the account.
func (h *Handler) rejectCredentials(c *gin.Context, account *model.Account) {
	outcome := h.Lockout.RecordFailure(c.Request.Context(), account.ID, c.ClientIP(), utils.DeviceLabel(c.Request.UserAgent()))
	if outcome.JustLocked {
		status := h.Lockout.IsLockedOut(c.Request.Context(), account.ID)
		until := status.Until
		if until.IsZero() {
			until = time.Now().UTC()
		}
		respondLocked(c, until)
		return
	}
	utils.Unauthorized(c, invalidCredentials)
}

func respondLocked(c *gin.Context, until time.Time) {
	utils.TooManyRequests(c, "Account is temporarily locked", gin.H{
		"locked_until": until.UTC(),
	})
}
