package services

import (
	"context"
	"time"

	"github.com/mattn/go-mastodon"

	"swarmdon/internal/models/db_models"
	"swarmdon/pkg/swarm"
)

// mastodonTimeout bounds every call to an instance. A hung instance
// must not stall a poll iteration or a webhook response.
const mastodonTimeout = 15 * time.Second

// newMastodonClient builds an instance client with a bounded request
// timeout; the library default carries none.
func newMastodonClient(config *mastodon.Config) *mastodon.Client {
	client := mastodon.NewClient(config)
	client.Timeout = mastodonTimeout
	return client
}

// NewSwarmFeedFactory adapts the shared Swarm client into per-token
// feeds.
func NewSwarmFeedFactory(client *swarm.Client) SwarmFeedFactory {
	return func(accessToken string) SwarmFeed {
		return client.User(accessToken)
	}
}

type mastodonPoster struct {
	client *mastodon.Client
}

func (p mastodonPoster) PostStatus(ctx context.Context, status string) error {
	_, err := p.client.PostStatus(ctx, &mastodon.Toot{Status: status})
	return err
}

// NewStatusPosterFactory posts through the account's own instance and
// token.
func NewStatusPosterFactory() StatusPosterFactory {
	return func(account *db_models.Account) StatusPoster {
		return mastodonPoster{client: newMastodonClient(&mastodon.Config{
			Server:      account.InstanceURL,
			AccessToken: account.MastodonAccessToken,
		})}
	}
}
