package services

import (
	"context"
	"errors"
	"log"
	"time"

	"hotspotportal/config"
	"hotspotportal/model"
	"hotspotportal/utils"
)

var ErrStoreUnavailable = errors.New("login attempt store unavailable")

// AttemptStore persists login attempt rows. LatestAttempt returns nil, nil
// when the account has no row with that status.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, attempt *model.LoginAttempt) (string, error)
	CountAttempts(ctx context.Context, accountID, status string, since time.Time) (int64, error)
	LatestAttempt(ctx context.Context, accountID, status string) (*model.LoginAttempt, error)
	DeleteAttempts(ctx context.Context, accountID string) (int64, error)
}

const AlertAccountLocked = "account_locked"

// LockoutStatus is the result of a lock check. Degraded means the store
// could not be read and the check failed open.
type LockoutStatus struct {
	Locked   bool
	Until    time.Time
	Degraded bool
}

// FailureOutcome describes what RecordFailure did. FailedCount is the number
// of FAILED rows inside the window, including this one.
type FailureOutcome struct {
	FailedCount int
	Locked      bool
	JustLocked  bool
	Degraded    bool
}

// LockoutGuard implements the NORMAL -> LOCKED -> NORMAL account state
// machine on top of the attempt rows. Lock expiry is computed on read.
type LockoutGuard struct {
	store    AttemptStore
	notifier Notifier
	cfg      config.LockoutConfig
	now      func() time.Time
}

func NewLockoutGuard(store AttemptStore, notifier Notifier, cfg config.LockoutConfig) *LockoutGuard {
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = time.Hour
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	return &LockoutGuard{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (g *LockoutGuard) IsLockedOut(ctx context.Context, accountID string) LockoutStatus {
	latest, err := g.store.LatestAttempt(ctx, accountID, model.AttemptLocked)
	if err != nil {
		log.Printf("Lockout check for %s failed open: %v", accountID, err)
		utils.TrackError("lockout", "store_read_failed")
		return LockoutStatus{Degraded: true}
	}
	if latest == nil {
		return LockoutStatus{}
	}

	until := latest.Timestamp.Add(g.cfg.LockoutDuration)
	if !g.now().Before(until) {
		return LockoutStatus{}
	}
	return LockoutStatus{Locked: true, Until: until}
}

// RecordFailure appends a FAILED row and locks the account once the window
// holds MaxFailedAttempts of them. An account that is already locked does
// not get a second LOCKED row. Store failures are logged and reported as
// Degraded, never returned.
func (g *LockoutGuard) RecordFailure(ctx context.Context, accountID, ipAddress, userAgent string) FailureOutcome {
	now := g.now()

	_, err := g.store.InsertAttempt(ctx, &model.LoginAttempt{
		AccountID: accountID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Timestamp: now,
		Status:    model.AttemptFailed,
	})
	if err != nil {
		log.Printf("Recording failed login for %s skipped: %v", accountID, err)
		utils.TrackError("lockout", "store_write_failed")
		return FailureOutcome{Degraded: true}
	}

	count, err := g.store.CountAttempts(ctx, accountID, model.AttemptFailed, now.Add(-g.cfg.AttemptWindow))
	if err != nil {
		log.Printf("Counting failed logins for %s skipped: %v", accountID, err)
		utils.TrackError("lockout", "store_read_failed")
		return FailureOutcome{Degraded: true}
	}

	outcome := FailureOutcome{FailedCount: int(count)}
	if outcome.FailedCount < g.cfg.MaxFailedAttempts {
		return outcome
	}

	current := g.IsLockedOut(ctx, accountID)
	if current.Locked {
		outcome.Locked = true
		return outcome
	}

	_, err = g.store.InsertAttempt(ctx, &model.LoginAttempt{
		AccountID: accountID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Timestamp: now,
		Status:    model.AttemptLocked,
	})
	if err != nil {
		log.Printf("Locking %s skipped: %v", accountID, err)
		utils.TrackError("lockout", "store_write_failed")
		outcome.Degraded = true
		return outcome
	}

	outcome.Locked = true
	outcome.JustLocked = true
	utils.TrackLockout()
	log.Printf("Account %s locked after %d failed attempts from %s", accountID, outcome.FailedCount, ipAddress)

	if g.notifier != nil {
		g.notifier.Notify(ctx, AlertAccountLocked, map[string]interface{}{
			"account_id":      accountID,
			"ip_address":      ipAddress,
			"user_agent":      userAgent,
			"failed_attempts": outcome.FailedCount,
			"locked_until":    now.Add(g.cfg.LockoutDuration),
		})
	}
	return outcome
}

// Reset clears every attempt row of the account after a successful login.
// The error is returned so the caller can decide whether it matters.
func (g *LockoutGuard) Reset(ctx context.Context, accountID string) error {
	if _, err := g.store.DeleteAttempts(ctx, accountID); err != nil {
		utils.TrackError("lockout", "store_reset_failed")
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
