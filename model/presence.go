package model

const (
	PresenceOnline  = "online"
	PresenceOffline = "offline"
)

// PresenceView is recomputed on every dashboard request.
type PresenceView struct {
	AccountID         string        `json:"account_id"`
	DisplayName       string        `json:"display_name"`
	AnchorToken       string        `json:"anchor_token"`
	Status            string        `json:"status"`
	ActiveDeviceCount int           `json:"active_device_count"`
	LongestUptime     string        `json:"longest_uptime"`
	Sessions          []LiveSession `json:"sessions"`
}

type DeviceQuota struct {
	ProfileName    string `json:"profile"`
	MaxDevices     *int   `json:"max_devices"`
	CurrentDevices int    `json:"current_devices"`
	IsFull         bool   `json:"is_full"`
	// Known is false when the router could not be asked and the result is
	// the conservative default.
	Known bool `json:"known"`
}
