package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotspotportal/config"
	"hotspotportal/model"
	"hotspotportal/utils"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const attemptRetries = 3

func GetLoginAttemptRepo(client *mongo.Client, cfg config.DatabaseConfig) *LoginAttemptRepo {
	return &LoginAttemptRepo{
		MongoCollection: client.Database(cfg.DatabaseName).Collection(cfg.LoginAttemptsCollection),
		backoff:         50 * time.Millisecond,
	}
}

// LoginAttemptRepo stores the append-only FAILED and LOCKED rows. Network
// errors and timeouts are retried with a short exponential backoff.
type LoginAttemptRepo struct {
	MongoCollection *mongo.Collection
	backoff         time.Duration
}

func (r *LoginAttemptRepo) InsertAttempt(ctx context.Context, attempt *model.LoginAttempt) (string, error) {
	timer := utils.TrackDBOperation("insert", "login_attempts")
	defer timer.ObserveDuration()

	if attempt.AccountID == "" {
		return "", errors.New("attempt without account id")
	}
	if attempt.ID == "" {
		attempt.ID = utils.NewID()
	}
	if attempt.Timestamp.IsZero() {
		attempt.Timestamp = time.Now().UTC()
	}

	err := r.withRetry(ctx, func(ctx context.Context) error {
		_, err := r.MongoCollection.InsertOne(ctx, attempt)
		return err
	})
	if err != nil {
		utils.TrackError("database", "attempt_insert_failed")
		return "", fmt.Errorf("failed to insert login attempt: %w", err)
	}
	return attempt.ID, nil
}

func (r *LoginAttemptRepo) CountAttempts(ctx context.Context, accountID, status string, since time.Time) (int64, error) {
	timer := utils.TrackDBOperation("count", "login_attempts")
	defer timer.ObserveDuration()

	filter := bson.D{
		{Key: "account_id", Value: accountID},
		{Key: "status", Value: status},
		{Key: "timestamp", Value: bson.D{{Key: "$gte", Value: since}}},
	}

	var count int64
	err := r.withRetry(ctx, func(ctx context.Context) error {
		n, err := r.MongoCollection.CountDocuments(ctx, filter)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		utils.TrackError("database", "attempt_count_failed")
		return 0, fmt.Errorf("failed to count login attempts: %w", err)
	}
	return count, nil
}

// LatestAttempt returns nil, nil when the account has no row with status.
func (r *LoginAttemptRepo) LatestAttempt(ctx context.Context, accountID, status string) (*model.LoginAttempt, error) {
	timer := utils.TrackDBOperation("find", "login_attempts")
	defer timer.ObserveDuration()

	filter := bson.D{
		{Key: "account_id", Value: accountID},
		{Key: "status", Value: status},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var attempt model.LoginAttempt
	found := true
	err := r.withRetry(ctx, func(ctx context.Context) error {
		err := r.MongoCollection.FindOne(ctx, filter, opts).Decode(&attempt)
		if errors.Is(err, mongo.ErrNoDocuments) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		utils.TrackError("database", "attempt_lookup_failed")
		return nil, fmt.Errorf("failed to read login attempts: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &attempt, nil
}

// UpdateAttemptStatus rewrites the status of one row. The lockout flow
// appends LOCKED rows instead; this is kept for admin tooling.
func (r *LoginAttemptRepo) UpdateAttemptStatus(ctx context.Context, attemptID, status string) error {
	timer := utils.TrackDBOperation("update", "login_attempts")
	defer timer.ObserveDuration()

	if status != model.AttemptFailed && status != model.AttemptLocked {
		return fmt.Errorf("unknown attempt status %q", status)
	}

	var matched int64
	err := r.withRetry(ctx, func(ctx context.Context) error {
		result, err := r.MongoCollection.UpdateOne(ctx,
			bson.D{{Key: "attempt_id", Value: attemptID}},
			bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
		)
		if err != nil {
			return err
		}
		matched = result.MatchedCount
		return nil
	})
	if err != nil {
		utils.TrackError("database", "attempt_update_failed")
		return fmt.Errorf("failed to update login attempt: %w", err)
	}
	if matched == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *LoginAttemptRepo) DeleteAttempts(ctx context.Context, accountID string) (int64, error) {
	timer := utils.TrackDBOperation("delete", "login_attempts")
	defer timer.ObserveDuration()

	var deleted int64
	err := r.withRetry(ctx, func(ctx context.Context) error {
		result, err := r.MongoCollection.DeleteMany(ctx, bson.D{{Key: "account_id", Value: accountID}})
		if err != nil {
			return err
		}
		deleted = result.DeletedCount
		return nil
	})
	if err != nil {
		utils.TrackError("database", "attempt_delete_failed")
		return 0, fmt.Errorf("failed to delete login attempts: %w", err)
	}
	return deleted, nil
}

func (r *LoginAttemptRepo) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	base := r.backoff
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	b := retry.WithMaxRetries(attemptRetries, retry.NewExponential(base))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := op(ctx)
		if err != nil && isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
