package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hotspotportal/model"
	"hotspotportal/repository"
	"hotspotportal/services"
	"hotspotportal/utils"
)

type AccountWriter interface {
	AddAccount(ctx context.Context, account *model.Account) error
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindByAnchorToken(ctx context.Context, anchorToken string) (*model.Account, error)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, anchorToken string) (*model.HotspotIdentity, error)
}

type IdentityCreator interface {
	AddIdentity(ctx context.Context, identity model.HotspotIdentity) error
	RemoveIdentity(ctx context.Context, username string) error
}

// AccountService provisions portal accounts and keeps each one anchored to
// exactly one hotspot user.
type AccountService struct {
	Accounts   AccountWriter
	Resolver   IdentityResolver
	Identities IdentityCreator
}

// CreateAccount verifies the anchor token against the router according to
// the request mode, creates the hotspot user for mode "new", then stores the
// account with a forced password change. Router errors are returned as is.
// A hotspot user created here is removed again if the account cannot be
// stored.
func (s *AccountService) CreateAccount(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error) {
	if err := s.checkUnique(ctx, req); err != nil {
		return nil, err
	}

	identity, err := s.Resolver.Resolve(ctx, req.AnchorToken)
	if err != nil && !errors.Is(err, services.ErrIdentityNotFound) {
		return nil, err
	}
	if err := services.CheckVerifyMode(req.Mode, identity); err != nil {
		return nil, err
	}

	createdIdentity := false
	if req.Mode == services.VerifyNew {
		if err := s.Identities.AddIdentity(ctx, model.HotspotIdentity{
			Username:    req.HotspotUsername,
			Password:    req.HotspotPassword,
			ProfileName: req.HotspotProfile,
			Comment:     AnchorComment(req.DisplayName, req.AnchorToken),
		}); err != nil {
			return nil, err
		}
		createdIdentity = true
		log.Printf("Created hotspot user %s for anchor %s", req.HotspotUsername, req.AnchorToken)
	}

	hash, err := services.HashPassword(req.Password)
	if err != nil {
		s.rollbackIdentity(ctx, createdIdentity, req.HotspotUsername)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:                 utils.NewID(),
		Username:           req.Username,
		DisplayName:        req.DisplayName,
		AnchorToken:        req.AnchorToken,
		Role:               req.Role,
		PasswordHash:       hash,
		MustChangePassword: true,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.Accounts.AddAccount(ctx, account); err != nil {
		s.rollbackIdentity(ctx, createdIdentity, req.HotspotUsername)
		return nil, err
	}
	return account, nil
}

func (s *AccountService) checkUnique(ctx context.Context, req model.CreateAccountRequest) error {
	existing, err := s.Accounts.FindByUsername(ctx, req.Username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return repository.ErrDuplicateAccount
	}
	existing, err = s.Accounts.FindByAnchorToken(ctx, req.AnchorToken)
	if err != nil {
		return fmt.Errorf("check anchor token: %w", err)
	}
	if existing != nil {
		return repository.ErrDuplicateAccount
	}
	return nil
}

// rollbackIdentity removes a hotspot user created for a failed account. It
// runs detached from the request context.
func (s *AccountService) rollbackIdentity(ctx context.Context, created bool, username string) {
	if !created {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.Identities.RemoveIdentity(rctx, username); err != nil {
		utils.TrackError("router", "identity_rollback_failed")
		log.Printf("Failed to remove hotspot user %s after account error: %v", username, err)
		return
	}
	log.Printf("Removed hotspot user %s after account error", username)
}

// AnchorComment is the comment written on hotspot users created by the
// portal, e.g. "Budi Santoso - NIP:1987".
func AnchorComment(displayName, anchorToken string) string {
	return displayName + " - " + services.AnchorPrefix + anchorToken
}
