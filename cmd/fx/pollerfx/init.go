package pollerfx

import (
	"context"
	"log"

	"go.uber.org/fx"

	"swarmdon/internal/repositories"
	"swarmdon/internal/services"
	"swarmdon/pkg/config"
	mem "swarmdon/pkg/memcache"
)

var Module = fx.Options(
	fx.Provide(providePollerService),
	fx.Invoke(StartPoller),
)

func providePollerService(
	accountRepo repositories.AccountRepository,
	watermarks mem.WatermarkStore,
	relay services.RelayServiceInterface,
	swarmFeeds services.SwarmFeedFactory,
	cfg config.Config,
) services.PollerServiceInterface {
	return services.NewPollerService(accountRepo, watermarks, relay, swarmFeeds, cfg.PollInterval)
}

// StartPoller runs the poll loop for the process lifetime, unless
// polling is disabled.
func StartPoller(lc fx.Lifecycle, poller services.PollerServiceInterface, cfg config.Config) {
	if !cfg.PollEnabled {
		log.Println("Polling disabled, relying on push events only")
		return
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go poller.RunLoop(loopCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
