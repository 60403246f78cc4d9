package usecase

import (
	"context"
	"errors"
	"testing"

	"hotspotportal/gateway"
	"hotspotportal/model"
	"hotspotportal/repository"
	"hotspotportal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	identity *model.HotspotIdentity
	err      error
}

func (s stubResolver) Resolve(context.Context, string) (*model.HotspotIdentity, error) {
	return s.identity, s.err
}

type recordingWriter struct {
	existing []model.Account
	addErr   error
	added    []*model.Account
}

func (r *recordingWriter) AddAccount(_ context.Context, account *model.Account) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.added = append(r.added, account)
	return nil
}

func (r *recordingWriter) FindByUsername(_ context.Context, username string) (*model.Account, error) {
	for i := range r.existing {
		if r.existing[i].Username == username {
			return &r.existing[i], nil
		}
	}
	return nil, nil
}

func (r *recordingWriter) FindByAnchorToken(_ context.Context, anchorToken string) (*model.Account, error) {
	for i := range r.existing {
		if r.existing[i].AnchorToken == anchorToken {
			return &r.existing[i], nil
		}
	}
	return nil, nil
}

type recordingCreator struct {
	created   []model.HotspotIdentity
	removed   []string
	removeErr error
}

func (r *recordingCreator) AddIdentity(_ context.Context, identity model.HotspotIdentity) error {
	r.created = append(r.created, identity)
	return nil
}

func (r *recordingCreator) RemoveIdentity(_ context.Context, username string) error {
	r.removed = append(r.removed, username)
	return r.removeErr
}

func baseRequest(mode string) model.CreateAccountRequest {
	return model.CreateAccountRequest{
		Username:        "budi",
		DisplayName:     "Budi Santoso",
		AnchorToken:     "1987",
		Role:            model.RoleTeacher,
		Password:        "Start#Pass1",
		Mode:            mode,
		HotspotUsername: "budi.s",
		HotspotPassword: "hs-pass",
		HotspotProfile:  "guru",
	}
}

func TestCreateAccountExisting(t *testing.T) {
	writer := &recordingWriter{}
	creator := &recordingCreator{}
	svc := &AccountService{
		Accounts:   writer,
		Resolver:   stubResolver{identity: &model.HotspotIdentity{Username: "budi.s"}},
		Identities: creator,
	}

	account, err := svc.CreateAccount(context.Background(), baseRequest(services.VerifyExisting))
	require.NoError(t, err)
	assert.True(t, account.MustChangePassword)
	assert.NotEqual(t, "Start#Pass1", account.PasswordHash)
	assert.True(t, services.ComparePasswords(account.PasswordHash, "Start#Pass1"))
	assert.Len(t, writer.added, 1)
	assert.Empty(t, creator.created)
}

func TestCreateAccountNewCreatesHotspotUser(t *testing.T) {
	writer := &recordingWriter{}
	creator := &recordingCreator{}
	svc := &AccountService{
		Accounts:   writer,
		Resolver:   stubResolver{err: services.ErrIdentityNotFound},
		Identities: creator,
	}

	_, err := svc.CreateAccount(context.Background(), baseRequest(services.VerifyNew))
	require.NoError(t, err)
	require.Len(t, creator.created, 1)
	assert.Equal(t, "Budi Santoso - NIP:1987", creator.created[0].Comment)
	assert.True(t, services.MatchesAnchor(creator.created[0].Comment, "1987"))
	assert.Len(t, writer.added, 1)
}

func TestCreateAccountRejections(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		resolver stubResolver
		want     error
	}{
		{"new but identity exists", services.VerifyNew, stubResolver{identity: &model.HotspotIdentity{}}, services.ErrIdentityExists},
		{"existing but missing", services.VerifyExisting, stubResolver{err: services.ErrIdentityNotFound}, services.ErrIdentityNotFound},
		{"router unreachable", services.VerifyExisting, stubResolver{err: gateway.ErrUnreachable}, gateway.ErrUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &recordingWriter{}
			creator := &recordingCreator{}
			svc := &AccountService{Accounts: writer, Resolver: tt.resolver, Identities: creator}

			_, err := svc.CreateAccount(context.Background(), baseRequest(tt.mode))
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, writer.added)
			assert.Empty(t, creator.created)
		})
	}
}

func TestCreateAccountExistingAccountStopsBeforeRouter(t *testing.T) {
	tests := []struct {
		name     string
		existing model.Account
	}{
		{"same username", model.Account{Username: "budi", AnchorToken: "other"}},
		{"same anchor token", model.Account{Username: "other", AnchorToken: "1987"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &recordingWriter{existing: []model.Account{tt.existing}}
			creator := &recordingCreator{}
			svc := &AccountService{
				Accounts:   writer,
				Resolver:   stubResolver{err: services.ErrIdentityNotFound},
				Identities: creator,
			}

			_, err := svc.CreateAccount(context.Background(), baseRequest(services.VerifyNew))
			assert.ErrorIs(t, err, repository.ErrDuplicateAccount)
			assert.Empty(t, creator.created)
			assert.Empty(t, writer.added)
		})
	}
}

func TestCreateAccountStoreFailureRemovesHotspotUser(t *testing.T) {
	tests := []struct {
		name      string
		addErr    error
		removeErr error
	}{
		{"duplicate on insert", repository.ErrDuplicateAccount, nil},
		{"store down", errors.New("connection reset"), nil},
		{"rollback fails too", errors.New("connection reset"), gateway.ErrUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &recordingWriter{addErr: tt.addErr}
			creator := &recordingCreator{removeErr: tt.removeErr}
			svc := &AccountService{
				Accounts:   writer,
				Resolver:   stubResolver{err: services.ErrIdentityNotFound},
				Identities: creator,
			}

			_, err := svc.CreateAccount(context.Background(), baseRequest(services.VerifyNew))
			assert.ErrorIs(t, err, tt.addErr)
			require.Len(t, creator.created, 1)
			assert.Equal(t, []string{"budi.s"}, creator.removed)
		})
	}
}

func TestCreateAccountExistingModeNeverRemovesHotspotUser(t *testing.T) {
	writer := &recordingWriter{addErr: errors.New("connection reset")}
	creator := &recordingCreator{}
	svc := &AccountService{
		Accounts:   writer,
		Resolver:   stubResolver{identity: &model.HotspotIdentity{Username: "budi.s"}},
		Identities: creator,
	}

	_, err := svc.CreateAccount(context.Background(), baseRequest(services.VerifyExisting))
	require.Error(t, err)
	assert.Empty(t, creator.removed)
}
