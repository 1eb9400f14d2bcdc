package dbfx

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"swarmdon/internal/infra"
	"swarmdon/pkg/config"
)

var Module = fx.Options(
	fx.Provide(provideDB),
	fx.Invoke(closeOnShutdown),
)

func provideDB(cfg config.Config) *gorm.DB {
	return infra.InitPostgresql(cfg)
}

func closeOnShutdown(lc fx.Lifecycle, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db)
			return nil
		},
	})
}
