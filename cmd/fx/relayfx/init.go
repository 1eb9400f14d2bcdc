package relayfx

import (
	"go.uber.org/fx"

	"swarmdon/internal/repositories"
	"swarmdon/internal/services"
	"swarmdon/pkg/config"
	mem "swarmdon/pkg/memcache"
	"swarmdon/pkg/swarm"
)

var Module = fx.Provide(
	provideSwarmClient, provideWatermarks, provideSwarmFeeds, providePosters, provideRelayService)

func provideSwarmClient(cfg config.Config) *swarm.Client {
	return swarm.NewClient(cfg.SwarmClientID, cfg.SwarmClientSecret, cfg.SwarmRedirectURI())
}

func provideWatermarks() mem.WatermarkStore {
	return mem.NewWatermarks()
}

func provideSwarmFeeds(client *swarm.Client) services.SwarmFeedFactory {
	return services.NewSwarmFeedFactory(client)
}

func providePosters() services.StatusPosterFactory {
	return services.NewStatusPosterFactory()
}

func provideRelayService(
	accountRepo repositories.AccountRepository,
	watermarks mem.WatermarkStore,
	swarmFeeds services.SwarmFeedFactory,
	posters services.StatusPosterFactory,
	cfg config.Config,
) services.RelayServiceInterface {
	return services.NewRelayService(accountRepo, watermarks, swarmFeeds, posters, cfg.FriendsMap(), cfg.SwarmPushSecret)
}
