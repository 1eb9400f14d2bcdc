package accountfx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"swarmdon/internal/repositories"
	"swarmdon/internal/services"
	"swarmdon/pkg/config"
	"swarmdon/pkg/swarm"
)

var Module = fx.Provide(
	provideAccountRepo, provideRegistrationRepo, provideAccountService)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideRegistrationRepo(db *gorm.DB) repositories.RegistrationRepository {
	return repositories.NewRegistrationRepository(db)
}

func provideAccountService(
	accountRepo repositories.AccountRepository,
	registrationRepo repositories.RegistrationRepository,
	swarmClient *swarm.Client,
	cfg config.Config,
) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, registrationRepo, swarmClient, cfg)
}
