package model

import "time"

const (
	AttemptFailed = "FAILED"
	AttemptLocked = "LOCKED"
)

// LoginAttempt rows are append-only. A successful login deletes every row of
// the account.
type LoginAttempt struct {
	ID        string    `bson:"attempt_id" json:"id"`
	AccountID string    `bson:"account_id" json:"account_id"`
	IPAddress string    `bson:"ip_address" json:"ip_address"`
	UserAgent string    `bson:"user_agent" json:"user_agent"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Status    string    `bson:"status" json:"status"`
}
