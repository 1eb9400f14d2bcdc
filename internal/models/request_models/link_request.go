package request_models

// HomeForm starts the Mastodon linkage: the user submits their
// instance URL.
type HomeForm struct {
	InstanceURL string `form:"instance_url" binding:"required"`
}

// SwarmPushForm is the webhook body Swarm sends on every checkin: the
// checkin JSON as a string plus the shared push secret.
type SwarmPushForm struct {
	Checkin string `form:"checkin"`
	Secret  string `form:"secret"`
}
