package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"swarmdon/pkg/utils"
)

// Config is the full environment surface of the relay.
type Config struct {
	Port        string
	PostgresURL string
	BaseURL     string
	ClientName  string

	SwarmClientID     string
	SwarmClientSecret string
	SwarmPushSecret   string

	SessionSecret string

	PollEnabled  bool
	PollInterval time.Duration

	FriendsMapPath string
}

// Load reads .env if present, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := Config{
		Port:              getEnv("PORT", "8000"),
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		BaseURL:           getEnv("BASE_URL", "https://127.0.0.1:8000"),
		ClientName:        getEnv("CLIENT_NAME", "Swarmdon"),
		SwarmClientID:     os.Getenv("SWARM_CLIENT_ID"),
		SwarmClientSecret: os.Getenv("SWARM_CLIENT_SECRET"),
		SwarmPushSecret:   os.Getenv("SWARM_PUSH_SECRET"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		PollEnabled:       getEnv("POLL_ENABLED", "true") == "true",
		PollInterval:      time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 300)) * time.Second,
		FriendsMapPath:    os.Getenv("FRIENDS_MAP"),
	}
	return cfg
}

// MastodonRedirectURI is where an instance sends the user back after
// authorizing.
func (c Config) MastodonRedirectURI() string {
	return c.BaseURL + "/mastodon/callback"
}

// SwarmRedirectURI is where Foursquare sends the user back after
// authorizing.
func (c Config) SwarmRedirectURI() string {
	return c.BaseURL + "/swarm/callback"
}

// FriendsMap loads the optional handle mapping file. A missing setting
// or unreadable file degrades to an empty map.
func (c Config) FriendsMap() map[string]string {
	if c.FriendsMapPath == "" {
		return map[string]string{}
	}
	friends, err := utils.ReadFriendsMap(c.FriendsMapPath)
	if err != nil {
		log.Printf("Unable to read friends map: %v", err)
		return map[string]string{}
	}
	return friends
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %d", key, value, fallback)
		return fallback
	}
	return parsed
}
