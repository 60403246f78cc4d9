package model

import "time"

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStaff   = "staff"
)

// Account is the local portal account. AnchorToken links it to exactly one
// hotspot identity on the router and is unique across accounts.
type Account struct {
	ID                 string    `bson:"account_id" json:"id"`
	Username           string    `bson:"username" json:"username"`
	DisplayName        string    `bson:"display_name" json:"display_name"`
	AnchorToken        string    `bson:"anchor_token" json:"anchor_token"`
	Role               string    `bson:"role" json:"role"`
	PasswordHash       string    `bson:"password_hash" json:"-"`
	MustChangePassword bool      `bson:"must_change_password" json:"must_change_password"`
	TwoFactorEnabled   bool      `bson:"two_factor_enabled" json:"two_factor_enabled"`
	TwoFactorSecret    string    `bson:"two_factor_secret" json:"-"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
}
