package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hotspotportal/config"
	"hotspotportal/model"
	"hotspotportal/repository"
	"hotspotportal/services"
	"hotspotportal/usecase"
	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitValidator()
}

type fakeAccounts struct {
	accounts []model.Account
	err      error
}

func (f *fakeAccounts) FindByUsername(_ context.Context, username string) (*model.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.accounts {
		if f.accounts[i].Username == username {
			account := f.accounts[i]
			return &account, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) FindByID(_ context.Context, accountID string) (*model.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.accounts {
		if f.accounts[i].ID == accountID {
			account := f.accounts[i]
			return &account, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) FindByAnchorToken(_ context.Context, anchorToken string) (*model.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.accounts {
		if f.accounts[i].AnchorToken == anchorToken {
			account := f.accounts[i]
			return &account, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) AddAccount(_ context.Context, account *model.Account) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.accounts {
		if existing.Username == account.Username || existing.AnchorToken == account.AnchorToken {
			return repository.ErrDuplicateAccount
		}
	}
	f.accounts = append(f.accounts, *account)
	return nil
}

func (f *fakeAccounts) ListAccounts(context.Context) ([]model.Account, error) {
	return f.accounts, f.err
}

// memoryAttempts is an in-memory attempt store backing a real LockoutGuard.
type memoryAttempts struct {
	mu   sync.Mutex
	rows []model.LoginAttempt
}

func (m *memoryAttempts) InsertAttempt(_ context.Context, attempt *model.LoginAttempt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *attempt
	row.ID = utils.NewID()
	m.rows = append(m.rows, row)
	return row.ID, nil
}

func (m *memoryAttempts) CountAttempts(_ context.Context, accountID, status string, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if row.AccountID == accountID && row.Status == status && !row.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memoryAttempts) LatestAttempt(_ context.Context, accountID, status string) (*model.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.LoginAttempt
	for i := range m.rows {
		row := m.rows[i]
		if row.AccountID == accountID && row.Status == status && (latest == nil || row.Timestamp.After(latest.Timestamp)) {
			latest = &row
		}
	}
	return latest, nil
}

func (m *memoryAttempts) DeleteAttempts(_ context.Context, accountID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var deleted int64
	for _, row := range m.rows {
		if row.AccountID == accountID {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return deleted, nil
}

func (m *memoryAttempts) count(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.rows {
		if row.Status == status {
			n++
		}
	}
	return n
}

type fakeRevoker struct {
	revoked []string
	err     error
}

func (f *fakeRevoker) Revoke(_ context.Context, claims *services.Claims) error {
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, claims.ID)
	return nil
}

// fakeRouter stands in for the gateway. Identities are keyed by username.
type fakeRouter struct {
	mu         sync.Mutex
	identities []model.HotspotIdentity
	profiles   map[string]model.HotspotProfile
	live       []model.LiveSession
	leases     []model.DHCPLease
	liveErr    error
	leaseErr   error
	resolveErr error
	removeErr  error
	pingErr    error
	delay      time.Duration
	removed    []string
}

func (f *fakeRouter) ListIdentities(_ context.Context, comment string) ([]model.HotspotIdentity, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	if comment == "" {
		return f.identities, nil
	}
	var out []model.HotspotIdentity
	for _, identity := range f.identities {
		if identity.Comment == comment {
			out = append(out, identity)
		}
	}
	return out, nil
}

func (f *fakeRouter) AddIdentity(_ context.Context, identity model.HotspotIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity.RemoteID = "*new"
	f.identities = append(f.identities, identity)
	return nil
}

func (f *fakeRouter) RemoveIdentity(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.identities[:0]
	for _, identity := range f.identities {
		if identity.Username != username {
			kept = append(kept, identity)
		}
	}
	f.identities = kept
	return nil
}

func (f *fakeRouter) FindIdentityByUsername(_ context.Context, username string) (*model.HotspotIdentity, error) {
	for _, identity := range f.identities {
		if identity.Username == username {
			found := identity
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeRouter) GetProfile(_ context.Context, name string) (*model.HotspotProfile, error) {
	profile, ok := f.profiles[name]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (f *fakeRouter) ListLiveSessions(ctx context.Context, username string) ([]model.LiveSession, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.liveErr != nil {
		return nil, f.liveErr
	}
	var out []model.LiveSession
	for _, s := range f.live {
		if username == "" || s.Username == username {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRouter) ListDHCPLeases(context.Context) ([]model.DHCPLease, error) {
	return f.leases, f.leaseErr
}

func (f *fakeRouter) RemoveLiveSession(_ context.Context, sessionID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, sessionID)
	return nil
}

func (f *fakeRouter) Ping(context.Context) error {
	return f.pingErr
}

type fakeStore struct{ err error }

func (f fakeStore) Ping(context.Context) error { return f.err }

type testEnv struct {
	handler  *Handler
	accounts *fakeAccounts
	attempts *memoryAttempts
	router   *fakeRouter
	revoker  *fakeRevoker
	tokens   *services.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := services.HashPassword("Correct#Pass1")
	require.NoError(t, err)

	accounts := &fakeAccounts{accounts: []model.Account{
		{ID: "acc-admin", Username: "admin", DisplayName: "Admin", AnchorToken: "1001", Role: model.RoleAdmin, PasswordHash: hash},
		{ID: "acc-budi", Username: "budi", DisplayName: "Budi Santoso", AnchorToken: "1987", Role: model.RoleTeacher, PasswordHash: hash},
		{ID: "acc-siti", Username: "siti", DisplayName: "Siti Aminah", AnchorToken: "2001", Role: model.RoleTeacher, PasswordHash: hash},
	}}
	router := &fakeRouter{
		identities: []model.HotspotIdentity{
			{RemoteID: "*1", Username: "budi.s", ProfileName: "guru", Comment: "Budi Santoso - NIP:1987"},
			{RemoteID: "*2", Username: "siti.a", ProfileName: "guru", Comment: "2001"},
		},
		profiles: map[string]model.HotspotProfile{"guru": {Name: "guru", SharedUsers: 2}},
	}
	attempts := &memoryAttempts{}
	revoker := &fakeRevoker{}
	tokens := services.NewTokenService(config.JWTConfig{SecretKey: "test_secret_key", ExpirationTime: time.Hour, Issuer: "hotspotPortal"})
	resolver := services.NewIdentityResolver(router)

	h := &Handler{
		Accounts:  accounts,
		Lockout:   services.NewLockoutGuard(attempts, services.LogNotifier{}, config.LockoutConfig{MaxFailedAttempts: 5, AttemptWindow: time.Hour, LockoutDuration: 15 * time.Minute}),
		Tokens:    tokens,
		Blacklist: revoker,
		Gateway:   router,
		Presence: services.NewSessionAggregator(router, config.PresenceConfig{
			LookupTimeout: time.Second,
			UsernameCap:   50,
			SessionCap:    100,
		}),
		Quota:            services.NewDeviceQuotaEvaluator(resolver, router, router),
		Resolver:         resolver,
		Creator:          &usecase.AccountService{Accounts: accounts, Resolver: resolver, Identities: router},
		Store:            fakeStore{},
		DashboardTimeout: 2 * time.Second,
	}

	return &testEnv{handler: h, accounts: accounts, attempts: attempts, router: router, revoker: revoker, tokens: tokens}
}

// withIdentity mimics the auth middleware.
func withIdentity(accountID, role string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("account_id", accountID)
		c.Set("role", role)
		next(c)
	}
}

func performJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Error string                 `json:"error"`
	Data  map[string]interface{} `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

var errRouterDown = errors.New("router down")
