package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"hotspotportal/config"
	"hotspotportal/model"
	"hotspotportal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateAccount = errors.New("username or anchor token already in use")

func GetAccountRepo(client *mongo.Client, cfg config.DatabaseConfig) *AccountRepo {
	return &AccountRepo{
		MongoCollection: client.Database(cfg.DatabaseName).Collection(cfg.AccountsCollection),
	}
}

type AccountRepo struct {
	MongoCollection *mongo.Collection
}

func (r *AccountRepo) AddAccount(ctx context.Context, account *model.Account) error {
	timer := utils.TrackDBOperation("insert", "accounts")
	defer timer.ObserveDuration()

	if account.Username == "" || account.AnchorToken == "" || account.PasswordHash == "" {
		utils.TrackError("database", "invalid_account_data")
		return errors.New("username, anchor token and password required")
	}
	if account.ID == "" {
		account.ID = utils.NewID()
	}

	_, err := r.MongoCollection.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateAccount
		}
		utils.TrackError("database", "account_creation_failed")
		return fmt.Errorf("failed to add account: %w", err)
	}
	return nil
}

// FindByUsername returns nil, nil when no account matches.
func (r *AccountRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

// FindByAnchorToken returns nil, nil when no account matches.
func (r *AccountRepo) FindByAnchorToken(ctx context.Context, anchorToken string) (*model.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "anchor_token", Value: anchorToken}})
}

func (r *AccountRepo) FindByID(ctx context.Context, accountID string) (*model.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "account_id", Value: accountID}})
}

func (r *AccountRepo) findOne(ctx context.Context, filter bson.D) (*model.Account, error) {
	timer := utils.TrackDBOperation("find", "accounts")
	defer timer.ObserveDuration()

	var account model.Account
	err := r.MongoCollection.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		utils.TrackError("database", "account_lookup_error")
		log.Println("Error finding account:", err)
		return nil, err
	}
	return &account, nil
}

// ListAccounts returns every account ordered by display name.
func (r *AccountRepo) ListAccounts(ctx context.Context) ([]model.Account, error) {
	timer := utils.TrackDBOperation("find", "accounts")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "display_name", Value: 1}})
	cursor, err := r.MongoCollection.Find(ctx, bson.D{}, opts)
	if err != nil {
		utils.TrackError("database", "account_list_error")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := make([]model.Account, 0)
	if err := cursor.All(ctx, &accounts); err != nil {
		utils.TrackError("database", "account_decode_error")
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}
	return accounts, nil
}
