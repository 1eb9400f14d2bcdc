package db_models

// AppRegistration is the OAuth application this service registered on
// one Mastodon instance, shared by every account of that instance.
type AppRegistration struct {
	BaseModel
	InstanceURL  string `gorm:"uniqueIndex"`
	ClientID     string
	ClientSecret string
	RedirectURI  string
}
