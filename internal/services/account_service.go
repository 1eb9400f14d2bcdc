package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mattn/go-mastodon"

	"swarmdon/internal/models/db_models"
	"swarmdon/internal/repositories"
	"swarmdon/pkg/config"
	"swarmdon/pkg/swarm"
	"swarmdon/pkg/utils"
)

const mastodonScopes = "read:accounts write:statuses"

type AccountServiceInterface interface {
	// GetOrCreateRegistration returns the app registration for a
	// Mastodon instance, registering the application there on first
	// contact.
	GetOrCreateRegistration(ctx context.Context, instanceURL string) (*db_models.AppRegistration, error)

	// AuthorizeURL is the instance's OAuth authorize endpoint for our
	// registered application.
	AuthorizeURL(registration *db_models.AppRegistration) string

	// CompleteMastodonCallback exchanges the authorization code,
	// verifies the credentials and returns the (possibly new) account.
	CompleteMastodonCallback(ctx context.Context, instanceURL, code string) (*db_models.Account, error)

	// SwarmAuthenticateURL starts the Swarm OAuth leg.
	SwarmAuthenticateURL() string

	// CompleteSwarmCallback exchanges the Swarm code and links the
	// Swarm identity onto the session's account.
	CompleteSwarmCallback(ctx context.Context, instanceURL, mastodonID, code string) error
}

type AccountService struct {
	accountRepo      repositories.AccountRepository
	registrationRepo repositories.RegistrationRepository
	swarmClient      *swarm.Client
	cfg              config.Config
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	registrationRepo repositories.RegistrationRepository,
	swarmClient *swarm.Client,
	cfg config.Config,
) AccountServiceInterface {
	return &AccountService{
		accountRepo:      accountRepo,
		registrationRepo: registrationRepo,
		swarmClient:      swarmClient,
		cfg:              cfg,
	}
}

func (s *AccountService) GetOrCreateRegistration(ctx context.Context, instanceURL string) (*db_models.AppRegistration, error) {
	registration, err := s.registrationRepo.GetByInstance(ctx, instanceURL)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if registration != nil {
		return registration, nil
	}

	// RegisterApp goes through the package-level default client, so
	// the bound has to come from the context.
	ctx, cancel := context.WithTimeout(ctx, mastodonTimeout)
	defer cancel()
	app, err := mastodon.RegisterApp(ctx, &mastodon.AppConfig{
		Server:       instanceURL,
		ClientName:   s.cfg.ClientName,
		Scopes:       mastodonScopes,
		Website:      s.cfg.BaseURL,
		RedirectURIs: s.cfg.MastodonRedirectURI(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: registering on %s: %v", utils.ErrUpstream, instanceURL, err)
	}

	registration = &db_models.AppRegistration{
		InstanceURL:  instanceURL,
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		RedirectURI:  s.cfg.MastodonRedirectURI(),
	}
	if err := s.registrationRepo.Save(ctx, registration); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return registration, nil
}

func (s *AccountService) AuthorizeURL(registration *db_models.AppRegistration) string {
	q := url.Values{}
	q.Set("client_id", registration.ClientID)
	q.Set("redirect_uri", registration.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", mastodonScopes)
	return registration.InstanceURL + "/oauth/authorize?" + q.Encode()
}

func (s *AccountService) CompleteMastodonCallback(ctx context.Context, instanceURL, code string) (*db_models.Account, error) {
	registration, err := s.registrationRepo.GetByInstance(ctx, instanceURL)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if registration == nil {
		return nil, utils.ErrRegistrationNotFound
	}

	client := newMastodonClient(&mastodon.Config{
		Server:       instanceURL,
		ClientID:     registration.ClientID,
		ClientSecret: registration.ClientSecret,
	})
	if err := client.AuthenticateToken(ctx, code, registration.RedirectURI); err != nil {
		return nil, fmt.Errorf("%w: token exchange with %s: %v", utils.ErrUpstream, instanceURL, err)
	}
	self, err := client.GetAccountCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: verifying credentials with %s: %v", utils.ErrUpstream, instanceURL, err)
	}

	account, err := s.accountRepo.GetByKey(ctx, instanceURL, string(self.ID))
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account != nil {
		return account, nil
	}

	account = &db_models.Account{
		InstanceURL:         instanceURL,
		MastodonID:          string(self.ID),
		MastodonAccessToken: client.Config.AccessToken,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return account, nil
}

func (s *AccountService) SwarmAuthenticateURL() string {
	return s.swarmClient.AuthenticateURL()
}

func (s *AccountService) CompleteSwarmCallback(ctx context.Context, instanceURL, mastodonID, code string) error {
	account, err := s.accountRepo.GetByKey(ctx, instanceURL, mastodonID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}

	accessToken, err := s.swarmClient.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: swarm token exchange: %v", utils.ErrUpstream, err)
	}
	self, err := s.swarmClient.User(accessToken).GetSelf(ctx)
	if err != nil {
		return fmt.Errorf("%w: fetching swarm profile: %v", utils.ErrUpstream, err)
	}

	account.SwarmID = self.ID
	account.SwarmAccessToken = accessToken
	if err := s.accountRepo.SaveSwarmLink(ctx, account); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}
