package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"hotspotportal/gateway"
	"hotspotportal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accountsRouter(env *testEnv) *gin.Engine {
	r := gin.New()
	r.GET("/api/accounts/:id/quota", withIdentity("acc-admin", model.RoleAdmin, env.handler.AccountQuota))
	r.POST("/api/accounts/verify", withIdentity("acc-admin", model.RoleAdmin, env.handler.VerifyIdentity))
	r.DELETE("/api/sessions/:sessionId", withIdentity("acc-admin", model.RoleAdmin, env.handler.KickSession))
	r.GET("/api/health", env.handler.Health)
	return r
}

func TestAccountQuota(t *testing.T) {
	env := newTestEnv(t)
	env.router.live = []model.LiveSession{
		{SessionID: "*1", Username: "budi.s"},
		{SessionID: "*2", Username: "budi.s"},
	}
	r := accountsRouter(env)

	w := performJSON(r, http.MethodGet, "/api/accounts/acc-budi/quota", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Quota model.DeviceQuota `json:"quota"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data.Quota.MaxDevices)
	assert.Equal(t, 2, *body.Data.Quota.MaxDevices)
	assert.Equal(t, 2, body.Data.Quota.CurrentDevices)
	assert.True(t, body.Data.Quota.IsFull)
	assert.True(t, body.Data.Quota.Known)

	w = performJSON(r, http.MethodGet, "/api/accounts/missing/quota", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountQuotaRouterDownIsNotAnError(t *testing.T) {
	env := newTestEnv(t)
	env.router.resolveErr = gateway.ErrUnreachable

	w := performJSON(accountsRouter(env), http.MethodGet, "/api/accounts/acc-budi/quota", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"known":false`)
	assert.Contains(t, w.Body.String(), `"max_devices":null`)
}

func TestVerifyIdentity(t *testing.T) {
	tests := []struct {
		name   string
		req    model.VerifyIdentityRequest
		err    error
		status int
	}{
		{"existing found by embedded comment", model.VerifyIdentityRequest{AnchorToken: "1987", Mode: "existing"}, nil, http.StatusOK},
		{"existing found by legacy comment", model.VerifyIdentityRequest{AnchorToken: "2001", Mode: "existing"}, nil, http.StatusOK},
		{"existing missing", model.VerifyIdentityRequest{AnchorToken: "9999", Mode: "existing"}, nil, http.StatusNotFound},
		{"new but taken", model.VerifyIdentityRequest{AnchorToken: "1987", Mode: "new"}, nil, http.StatusConflict},
		{"new and free", model.VerifyIdentityRequest{AnchorToken: "9999", Mode: "new"}, nil, http.StatusOK},
		{"bad mode", model.VerifyIdentityRequest{AnchorToken: "9999", Mode: "maybe"}, nil, http.StatusBadRequest},
		{"bad token", model.VerifyIdentityRequest{AnchorToken: "12 34", Mode: "new"}, nil, http.StatusBadRequest},
		{"router timeout", model.VerifyIdentityRequest{AnchorToken: "1987", Mode: "new"}, gateway.ErrConnectTimeout, http.StatusGatewayTimeout},
		{"router credentials", model.VerifyIdentityRequest{AnchorToken: "1987", Mode: "new"}, gateway.ErrCredentialsRejected, http.StatusBadGateway},
		{"router remote error", model.VerifyIdentityRequest{AnchorToken: "1987", Mode: "new"}, &gateway.RemoteError{Command: "/ip/hotspot/user/print", Raw: "no such command"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.router.resolveErr = tt.err

			w := performJSON(accountsRouter(env), http.MethodPost, "/api/accounts/verify", tt.req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotContains(t, w.Body.String(), "no such command")
		})
	}
}

func TestCreateAccountTakenUsernameLeavesRouterUntouched(t *testing.T) {
	env := newTestEnv(t)
	r := gin.New()
	r.POST("/api/accounts", withIdentity("acc-admin", model.RoleAdmin, env.handler.CreateAccount))

	before := len(env.router.identities)
	req := createRequest("7007", "new")
	req.Username = "budi"
	w := performJSON(r, http.MethodPost, "/api/accounts", req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, env.router.identities, before)

	// A retry with a free username still succeeds in mode "new".
	w = performJSON(r, http.MethodPost, "/api/accounts", createRequest("7007", "new"))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestKickSession(t *testing.T) {
	env := newTestEnv(t)
	r := accountsRouter(env)

	w := performJSON(r, http.MethodDelete, "/api/sessions/*A1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"*A1"}, env.router.removed)

	env.router.removeErr = gateway.ErrUnreachable
	w = performJSON(r, http.MethodDelete, "/api/sessions/*A2", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	r := accountsRouter(env)

	w := performJSON(r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body.Data["status"])

	env.router.pingErr = gateway.ErrUnreachable
	w = performJSON(r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decode(t, w).Data["status"])
}

func createRequest(anchor, mode string) model.CreateAccountRequest {
	return model.CreateAccountRequest{
		Username:        "rina",
		DisplayName:     "Rina Wati",
		AnchorToken:     anchor,
		Role:            model.RoleStaff,
		Password:        "Start#Pass1",
		Mode:            mode,
		HotspotUsername: "rina.w",
		HotspotPassword: "hs-pass",
		HotspotProfile:  "guru",
	}
}

func TestCreateAccount(t *testing.T) {
	env := newTestEnv(t)
	r := gin.New()
	r.POST("/api/accounts", withIdentity("acc-admin", model.RoleAdmin, env.handler.CreateAccount))

	w := performJSON(r, http.MethodPost, "/api/accounts", createRequest("3003", "new"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password_hash")
	assert.Contains(t, w.Body.String(), `"must_change_password":true`)

	// The new hotspot user now carries the anchor, so the portal can find it.
	identity, err := env.handler.Resolver.Resolve(context.Background(), "3003")
	require.NoError(t, err)
	assert.Equal(t, "rina.w", identity.Username)

	w = performJSON(r, http.MethodPost, "/api/accounts", createRequest("3003", "new"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performJSON(r, http.MethodPost, "/api/accounts", createRequest("4004", "existing"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := createRequest("5005", "new")
	req.Password = "weak"
	w = performJSON(r, http.MethodPost, "/api/accounts", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.router.resolveErr = gateway.ErrCredentialsRejected
	w = performJSON(r, http.MethodPost, "/api/accounts", createRequest("6006", "new"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
