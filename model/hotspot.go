package model

// HotspotIdentity is a user record on the router's hotspot server. It is only
// ever a lookup result and is never persisted locally.
type HotspotIdentity struct {
	RemoteID    string `json:"remote_id"`
	Username    string `json:"username"`
	Password    string `json:"-"`
	ProfileName string `json:"profile"`
	Comment     string `json:"comment"`
}

// LiveSession is an entry of the hotspot active list. It exists only while
// the device stays connected.
type LiveSession struct {
	SessionID     string `json:"session_id"`
	Username      string `json:"username"`
	Address       string `json:"address"`
	MACAddress    string `json:"mac_address"`
	HostName      string `json:"host_name,omitempty"`
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	BytesIn       int64  `json:"bytes_in"`
	BytesOut      int64  `json:"bytes_out"`
}

type HotspotProfile struct {
	Name string `json:"name"`
	// SharedUsers is the concurrent device limit, 0 when the profile does
	// not set one.
	SharedUsers int `json:"shared_users"`
}

type DHCPLease struct {
	Address    string `json:"address"`
	MACAddress string `json:"mac_address"`
	HostName   string `json:"host_name"`
	Status     string `json:"status"`
}
