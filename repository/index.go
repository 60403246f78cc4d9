package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"hotspotportal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureIndexes(ctx context.Context, db *mongo.Database, cfg config.DatabaseConfig) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	accountIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "account_id", Value: 1}},
			Options: options.Index().
				SetName("account_id_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetName("username_unique").
				SetUnique(true),
		},
		// One account per hotspot identity
		{
			Keys: bson.D{{Key: "anchor_token", Value: 1}},
			Options: options.Index().
				SetName("anchor_token_unique").
				SetUnique(true),
		},
	}

	attemptIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "account_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().
				SetName("account_status_time"),
		},
	}

	if _, err := db.Collection(cfg.AccountsCollection).Indexes().CreateMany(ctx, accountIndexes); err != nil {
		return fmt.Errorf("failed to create accounts indexes: %w", err)
	}
	if _, err := db.Collection(cfg.LoginAttemptsCollection).Indexes().CreateMany(ctx, attemptIndexes); err != nil {
		return fmt.Errorf("failed to create login attempt indexes: %w", err)
	}

	log.Println("Successfully created all indexes")
	return nil
}
