package db_models

// Account is one linked Mastodon/Swarm user pair. The composite
// (InstanceURL, MastodonID) is the account key used by sessions and the
// watermark map; SwarmID is the secondary index resolving push events
// to their owner.
type Account struct {
	BaseModel
	InstanceURL string `gorm:"uniqueIndex:idx_accounts_instance_user"`
	MastodonID  string `gorm:"uniqueIndex:idx_accounts_instance_user"`

	MastodonAccessToken string

	SwarmID          string `gorm:"index"`
	SwarmAccessToken string

	// LastCheckinID is the id of the most recently relayed checkin,
	// empty until the first relay.
	LastCheckinID string
}

// Key is the stable account identifier "instance_url:mastodon_id".
func (a *Account) Key() string {
	return a.InstanceURL + ":" + a.MastodonID
}

// Linked reports whether the Swarm side of the pair is connected; only
// linked accounts are polled.
func (a *Account) Linked() bool {
	return a.SwarmID != "" && a.SwarmAccessToken != ""
}
