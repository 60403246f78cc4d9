package model

type LoginRequest struct {
	Username      string `json:"username" binding:"required,min=3,max=64"`
	Password      string `json:"password" binding:"required"`
	TwoFactorCode string `json:"two_factor_code,omitempty"`
}

// VerifyIdentityRequest checks an anchor token before an account is created
// for it. Mode is "existing" or "new".
type VerifyIdentityRequest struct {
	AnchorToken string `json:"anchor_token" binding:"required,anchor"`
	Mode        string `json:"mode" binding:"required,oneof=existing new"`
}

// CreateAccountRequest provisions a portal account. With mode "existing" the
// hotspot user must already be on the router; with "new" it is created
// there first using HotspotUsername and HotspotPassword.
type CreateAccountRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=64"`
	DisplayName     string `json:"display_name" binding:"required,max=128"`
	AnchorToken     string `json:"anchor_token" binding:"required,anchor"`
	Role            string `json:"role" binding:"required,oneof=admin teacher staff"`
	Password        string `json:"password" binding:"required,password"`
	Mode            string `json:"mode" binding:"required,oneof=existing new"`
	HotspotUsername string `json:"hotspot_username" binding:"required_if=Mode new"`
	HotspotPassword string `json:"hotspot_password" binding:"required_if=Mode new"`
	HotspotProfile  string `json:"hotspot_profile"`
}
