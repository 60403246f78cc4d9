package gateway

import (
	"context"
	"strconv"
	"strings"

	"hotspotportal/model"
	"hotspotportal/utils"
)

const (
	cmdIdentityPrint = "/ip/hotspot/user/print"
	cmdIdentityAdd   = "/ip/hotspot/user/add"
	cmdIdentityDel   = "/ip/hotspot/user/remove"
	cmdActivePrint   = "/ip/hotspot/active/print"
	cmdActiveRemove  = "/ip/hotspot/active/remove"
	cmdProfilePrint  = "/ip/hotspot/user/profile/print"
	cmdLeasePrint    = "/ip/dhcp-server/lease/print"
	cmdSystemIdent   = "/system/identity/print"
)

// ListIdentities lists hotspot users. A non-empty comment turns the call
// into an exact server-side match on the comment field.
func (g *Gateway) ListIdentities(ctx context.Context, comment string) ([]model.HotspotIdentity, error) {
	var args []string
	if comment != "" {
		args = append(args, "?comment="+comment)
	}

	rows, err := g.Execute(ctx, cmdIdentityPrint, args...)
	if err != nil {
		return nil, err
	}

	identities := make([]model.HotspotIdentity, 0, len(rows))
	for _, row := range rows {
		identities = append(identities, decodeIdentity(row))
	}
	return identities, nil
}

// FindIdentityByUsername returns nil without error when the router has no
// such user.
func (g *Gateway) FindIdentityByUsername(ctx context.Context, username string) (*model.HotspotIdentity, error) {
	rows, err := g.Execute(ctx, cmdIdentityPrint, "?name="+username)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	identity := decodeIdentity(rows[0])
	return &identity, nil
}

// RemoveIdentity deletes the hotspot user with the given name.
func (g *Gateway) RemoveIdentity(ctx context.Context, username string) error {
	_, err := g.Execute(ctx, cmdIdentityDel, "=numbers="+username)
	return err
}

// AddIdentity creates a hotspot user. The router assigns the .id, so
// RemoteID is ignored.
func (g *Gateway) AddIdentity(ctx context.Context, identity model.HotspotIdentity) error {
	args := []string{
		"=name=" + identity.Username,
		"=password=" + identity.Password,
		"=comment=" + identity.Comment,
	}
	if identity.ProfileName != "" {
		args = append(args, "=profile="+identity.ProfileName)
	}
	_, err := g.Execute(ctx, cmdIdentityAdd, args...)
	return err
}

// ListLiveSessions lists connected devices, optionally only those of one
// hotspot user.
func (g *Gateway) ListLiveSessions(ctx context.Context, username string) ([]model.LiveSession, error) {
	var args []string
	if username != "" {
		args = append(args, "?user="+username)
	}

	rows, err := g.Execute(ctx, cmdActivePrint, args...)
	if err != nil {
		return nil, err
	}

	sessions := make([]model.LiveSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, decodeLiveSession(row))
	}
	return sessions, nil
}

func (g *Gateway) RemoveLiveSession(ctx context.Context, sessionID string) error {
	_, err := g.Execute(ctx, cmdActiveRemove, "=.id="+sessionID)
	return err
}

// GetProfile returns nil without error when the profile does not exist.
func (g *Gateway) GetProfile(ctx context.Context, name string) (*model.HotspotProfile, error) {
	rows, err := g.Execute(ctx, cmdProfilePrint, "?name="+name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &model.HotspotProfile{
		Name:        rows[0]["name"],
		SharedUsers: parseSharedUsers(rows[0]["shared-users"]),
	}, nil
}

func (g *Gateway) ListDHCPLeases(ctx context.Context) ([]model.DHCPLease, error) {
	rows, err := g.Execute(ctx, cmdLeasePrint)
	if err != nil {
		return nil, err
	}

	leases := make([]model.DHCPLease, 0, len(rows))
	for _, row := range rows {
		leases = append(leases, model.DHCPLease{
			Address:    row["address"],
			MACAddress: strings.ToUpper(row["mac-address"]),
			HostName:   row["host-name"],
			Status:     row["status"],
		})
	}
	return leases, nil
}

// Ping checks that the router accepts the portal's credentials.
func (g *Gateway) Ping(ctx context.Context) error {
	_, err := g.Execute(ctx, cmdSystemIdent)
	return err
}

func decodeIdentity(row map[string]string) model.HotspotIdentity {
	return model.HotspotIdentity{
		RemoteID:    row[".id"],
		Username:    row["name"],
		Password:    row["password"],
		ProfileName: row["profile"],
		Comment:     row["comment"],
	}
}

func decodeLiveSession(row map[string]string) model.LiveSession {
	session := model.LiveSession{
		SessionID:  row[".id"],
		Username:   row["user"],
		Address:    row["address"],
		MACAddress: strings.ToUpper(row["mac-address"]),
		Uptime:     row["uptime"],
		BytesIn:    parseInt64(row["bytes-in"]),
		BytesOut:   parseInt64(row["bytes-out"]),
	}
	if seconds, err := utils.ParseUptime(session.Uptime); err == nil {
		session.UptimeSeconds = seconds
	}
	return session
}

// parseSharedUsers treats "unlimited", empty and non-positive values as no
// limit.
func parseSharedUsers(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseInt64(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
