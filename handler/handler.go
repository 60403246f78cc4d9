package handler

import (
	"context"
	"errors"
	"log"
	"time"

	"hotspotportal/gateway"
	"hotspotportal/model"
	"hotspotportal/services"
	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
)

type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindByID(ctx context.Context, accountID string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
}

type LockoutGate interface {
	IsLockedOut(ctx context.Context, accountID string) services.LockoutStatus
	RecordFailure(ctx context.Context, accountID, ipAddress, userAgent string) services.FailureOutcome
	Reset(ctx context.Context, accountID string) error
}

type TokenIssuer interface {
	GenerateToken(account *model.Account) (string, *services.Claims, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, claims *services.Claims) error
}

type HotspotGateway interface {
	ListLiveSessions(ctx context.Context, username string) ([]model.LiveSession, error)
	ListDHCPLeases(ctx context.Context) ([]model.DHCPLease, error)
	RemoveLiveSession(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

type PresenceBuilder interface {
	BuildPresenceView(ctx context.Context, accounts []model.Account, live []model.LiveSession) []model.PresenceView
	BuildAccountPresence(ctx context.Context, account model.Account, live []model.LiveSession) model.PresenceView
}

type QuotaEvaluator interface {
	Evaluate(ctx context.Context, anchorToken string) model.DeviceQuota
}

type IdentityResolver interface {
	Resolve(ctx context.Context, anchorToken string) (*model.HotspotIdentity, error)
}

type AccountCreator interface {
	CreateAccount(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the JSON API. Every collaborator is injected by main.
type Handler struct {
	Accounts  AccountStore
	Lockout   LockoutGate
	Tokens    TokenIssuer
	Blacklist TokenRevoker
	Gateway   HotspotGateway
	Presence  PresenceBuilder
	Quota     QuotaEvaluator
	Resolver  IdentityResolver
	Creator   AccountCreator
	Store     Pinger

	DashboardTimeout time.Duration
}

// respondGatewayError maps a classified router error onto a status code. The
// raw router text only goes to the log.
func respondGatewayError(c *gin.Context, op string, err error) {
	log.Printf("%s failed (request %s): %v", op, c.GetString("request_id"), err)
	utils.TrackError("router", op)

	message := gateway.UserMessage(err)
	switch {
	case errors.Is(err, gateway.ErrConnectTimeout), errors.Is(err, context.DeadlineExceeded):
		utils.GatewayTimeout(c, message)
	case errors.Is(err, gateway.ErrUnreachable):
		utils.ServiceUnavailable(c, message)
	default:
		utils.BadGateway(c, message)
	}
}

func isGatewayError(err error) bool {
	var remote *gateway.RemoteError
	return errors.Is(err, gateway.ErrConnectTimeout) ||
		errors.Is(err, gateway.ErrCredentialsRejected) ||
		errors.Is(err, gateway.ErrUnreachable) ||
		errors.As(err, &remote)
}

// loadAccount resolves the :id path parameter. Non-admins may only read
// their own account.
func (h *Handler) loadAccount(c *gin.Context) (*model.Account, bool) {
	accountID := c.Param("id")
	if c.GetString("role") != model.RoleAdmin && c.GetString("account_id") != accountID {
		utils.Forbidden(c, "Insufficient permissions")
		return nil, false
	}

	account, err := h.Accounts.FindByID(c.Request.Context(), accountID)
	if err != nil {
		log.Printf("Error fetching account %s: %v", accountID, err)
		utils.InternalError(c, "Failed to fetch account")
		return nil, false
	}
	if account == nil {
		utils.NotFound(c, "Account not found")
		return nil, false
	}
	return account, true
}
