package services

import (
	"context"
	"strings"
	"time"

	"hotspotportal/config"
	"hotspotportal/model"
	"hotspotportal/utils"

	"golang.org/x/sync/errgroup"
)

// IdentityLookup fetches the hotspot identity of a router username. It
// returns nil, nil when the router has no such user.
type IdentityLookup interface {
	FindIdentityByUsername(ctx context.Context, username string) (*model.HotspotIdentity, error)
}

type SessionAggregator struct {
	lookup        IdentityLookup
	lookupTimeout time.Duration
	usernameCap   int
	sessionCap    int
}

func NewSessionAggregator(lookup IdentityLookup, cfg config.PresenceConfig) *SessionAggregator {
	return &SessionAggregator{
		lookup:        lookup,
		lookupTimeout: cfg.LookupTimeout,
		usernameCap:   cfg.UsernameCap,
		sessionCap:    cfg.SessionCap,
	}
}

// BuildPresenceView computes the dashboard view for many accounts. Only the
// first usernameCap distinct router usernames are looked up and at most
// sessionCap sessions are attached across all accounts.
func (a *SessionAggregator) BuildPresenceView(ctx context.Context, accounts []model.Account, live []model.LiveSession) []model.PresenceView {
	return a.build(ctx, accounts, live, a.usernameCap, a.sessionCap)
}

// BuildAccountPresence computes the view of a single account without caps.
func (a *SessionAggregator) BuildAccountPresence(ctx context.Context, account model.Account, live []model.LiveSession) model.PresenceView {
	return a.build(ctx, []model.Account{account}, live, 0, 0)[0]
}

func (a *SessionAggregator) build(ctx context.Context, accounts []model.Account, live []model.LiveSession, usernameCap, sessionCap int) []model.PresenceView {
	usernames := distinctUsernames(live, usernameCap)
	comments := a.resolveComments(ctx, usernames)

	owners := make(map[string]string, len(comments))
	for username, comment := range comments {
		if token := ownerOf(comment, accounts); token != "" {
			owners[username] = token
		}
	}

	groups := make(map[string][]model.LiveSession)
	correlated := 0
	for _, session := range live {
		if sessionCap > 0 && correlated >= sessionCap {
			break
		}
		token, ok := owners[session.Username]
		if !ok {
			continue
		}
		groups[token] = append(groups[token], session)
		correlated++
	}

	views := make([]model.PresenceView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, presenceFor(account, groups[account.AnchorToken]))
	}
	return views
}

// ownerOf returns the anchor token of the account a hotspot comment belongs
// to. The token extracted from the comment is tried first, then the looser
// MatchesAnchor rule the resolver uses; the first account in order wins.
func ownerOf(comment string, accounts []model.Account) string {
	extracted := AnchorFromComment(comment)
	for _, account := range accounts {
		if account.AnchorToken != "" && account.AnchorToken == extracted {
			return account.AnchorToken
		}
	}
	for _, account := range accounts {
		if MatchesAnchor(comment, account.AnchorToken) {
			return account.AnchorToken
		}
	}
	return ""
}

// resolveComments looks up every username concurrently. Each lookup has its
// own timeout; a lookup that fails, times out or finds no identity just
// leaves its username out of the result.
func (a *SessionAggregator) resolveComments(ctx context.Context, usernames []string) map[string]string {
	results := make([]string, len(usernames))

	var g errgroup.Group
	g.SetLimit(max(len(usernames), 1))
	for i, username := range usernames {
		i, username := i, username
		g.Go(func() error {
			results[i] = a.lookupComment(ctx, username)
			return nil
		})
	}
	_ = g.Wait()

	comments := make(map[string]string, len(usernames))
	for i, username := range usernames {
		if results[i] != "" {
			comments[username] = results[i]
		}
	}
	return comments
}

type lookupResult struct {
	identity *model.HotspotIdentity
	err      error
}

func (a *SessionAggregator) lookupComment(ctx context.Context, username string) string {
	timeout := a.lookupTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan lookupResult, 1)
	go func() {
		identity, err := a.lookup.FindIdentityByUsername(lctx, username)
		done <- lookupResult{identity: identity, err: err}
	}()

	select {
	case <-lctx.Done():
		utils.TrackPresenceLookup("timeout")
		return ""
	case r := <-done:
		switch {
		case r.err != nil:
			utils.TrackPresenceLookup("error")
			return ""
		case r.identity == nil:
			utils.TrackPresenceLookup("unknown")
			return ""
		}
		utils.TrackPresenceLookup("resolved")
		return strings.TrimSpace(r.identity.Comment)
	}
}

func presenceFor(account model.Account, sessions []model.LiveSession) model.PresenceView {
	view := model.PresenceView{
		AccountID:   account.ID,
		DisplayName: account.DisplayName,
		AnchorToken: account.AnchorToken,
		Status:      model.PresenceOffline,
		Sessions:    []model.LiveSession{},
	}
	if len(sessions) == 0 {
		return view
	}

	var longest int64
	for _, s := range sessions {
		seconds := s.UptimeSeconds
		if seconds == 0 && s.Uptime != "" {
			if parsed, err := utils.ParseUptime(s.Uptime); err == nil {
				seconds = parsed
			}
		}
		if seconds > longest {
			longest = seconds
		}
	}

	view.Status = model.PresenceOnline
	view.ActiveDeviceCount = len(sessions)
	view.LongestUptime = utils.FormatUptime(longest)
	view.Sessions = sessions
	return view
}

func distinctUsernames(live []model.LiveSession, limit int) []string {
	seen := make(map[string]bool)
	var usernames []string
	for _, s := range live {
		if s.Username == "" || seen[s.Username] {
			continue
		}
		if limit > 0 && len(usernames) >= limit {
			break
		}
		seen[s.Username] = true
		usernames = append(usernames, s.Username)
	}
	return usernames
}

// AttachHostNames fills LiveSession.HostName from DHCP leases, matching on
// MAC address first and IP address second.
func AttachHostNames(sessions []model.LiveSession, leases []model.DHCPLease) {
	byMAC := make(map[string]string, len(leases))
	byAddr := make(map[string]string, len(leases))
	for _, lease := range leases {
		if lease.HostName == "" {
			continue
		}
		if lease.MACAddress != "" {
			byMAC[lease.MACAddress] = lease.HostName
		}
		if lease.Address != "" {
			byAddr[lease.Address] = lease.HostName
		}
	}

	for i := range sessions {
		if name, ok := byMAC[sessions[i].MACAddress]; ok {
			sessions[i].HostName = name
		} else if name, ok := byAddr[sessions[i].Address]; ok {
			sessions[i].HostName = name
		}
	}
}
