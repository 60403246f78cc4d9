package services

import (
	"context"
	"log"

	"hotspotportal/model"
)

type AnchorResolver interface {
	Resolve(ctx context.Context, anchorToken string) (*model.HotspotIdentity, error)
}

type ProfileSource interface {
	GetProfile(ctx context.Context, name string) (*model.HotspotProfile, error)
}

type SessionSource interface {
	ListLiveSessions(ctx context.Context, username string) ([]model.LiveSession, error)
}

// DeviceQuotaEvaluator reports how many devices an identity may connect and
// how many are connected now. It never fails: quota is display-only.
type DeviceQuotaEvaluator struct {
	resolver AnchorResolver
	profiles ProfileSource
	sessions SessionSource
}

func NewDeviceQuotaEvaluator(resolver AnchorResolver, profiles ProfileSource, sessions SessionSource) *DeviceQuotaEvaluator {
	return &DeviceQuotaEvaluator{resolver: resolver, profiles: profiles, sessions: sessions}
}

func (e *DeviceQuotaEvaluator) Evaluate(ctx context.Context, anchorToken string) model.DeviceQuota {
	identity, err := e.resolver.Resolve(ctx, anchorToken)
	if err != nil {
		log.Printf("Quota: resolving %s failed: %v", anchorToken, err)
		return model.DeviceQuota{}
	}

	profile, err := e.profiles.GetProfile(ctx, identity.ProfileName)
	if err != nil {
		log.Printf("Quota: profile %s for %s failed: %v", identity.ProfileName, anchorToken, err)
		return model.DeviceQuota{ProfileName: identity.ProfileName}
	}

	live, err := e.sessions.ListLiveSessions(ctx, identity.Username)
	if err != nil {
		log.Printf("Quota: live sessions for %s failed: %v", identity.Username, err)
		return model.DeviceQuota{ProfileName: identity.ProfileName}
	}

	quota := model.DeviceQuota{
		ProfileName:    identity.ProfileName,
		CurrentDevices: len(live),
		Known:          true,
	}
	if profile != nil && profile.SharedUsers > 0 {
		limit := profile.SharedUsers
		quota.MaxDevices = &limit
		quota.IsFull = quota.CurrentDevices >= limit
	}
	return quota
}
