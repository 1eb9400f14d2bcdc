package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"swarmdon/internal/models/db_models"
)

type AccountRepository interface {
	// GetByKey fetches an account by its composite key parts. Returns
	// (nil, nil) when absent.
	GetByKey(ctx context.Context, instanceURL, mastodonID string) (*db_models.Account, error)

	// GetBySwarmID resolves the owner of an incoming push event.
	// Returns (nil, nil) when no account is linked to that Swarm user.
	GetBySwarmID(ctx context.Context, swarmID string) (*db_models.Account, error)

	// Create stores a freshly authorized Mastodon account with the
	// Swarm side still unlinked.
	Create(ctx context.Context, account *db_models.Account) error

	// SaveSwarmLink records the Swarm id and access token once the
	// second OAuth leg completes.
	SaveSwarmLink(ctx context.Context, account *db_models.Account) error

	// UpdateWatermark persists the id of the most recently relayed
	// checkin for the account.
	UpdateWatermark(ctx context.Context, instanceURL, mastodonID, checkinID string) error

	// ListLinked returns every account with both sides connected, the
	// population the poll loop iterates.
	ListLinked(ctx context.Context) ([]db_models.Account, error)
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &AccountRepo{db: db}
}

type AccountRepo struct {
	db *gorm.DB
}

func (r AccountRepo) GetByKey(ctx context.Context, instanceURL, mastodonID string) (*db_models.Account, error) {
	var account db_models.Account
	err := r.db.WithContext(ctx).
		Where("instance_url = ? AND mastodon_id = ?", instanceURL, mastodonID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r AccountRepo) GetBySwarmID(ctx context.Context, swarmID string) (*db_models.Account, error) {
	var account db_models.Account
	err := r.db.WithContext(ctx).
		Where("swarm_id = ?", swarmID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r AccountRepo) Create(ctx context.Context, account *db_models.Account) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Create(account).Error
	})
}

func (r AccountRepo) SaveSwarmLink(ctx context.Context, account *db_models.Account) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.WithContext(ctx).
			Model(&db_models.Account{}).
			Where("instance_url = ? AND mastodon_id = ?", account.InstanceURL, account.MastodonID).
			Updates(map[string]interface{}{
				"swarm_id":           account.SwarmID,
				"swarm_access_token": account.SwarmAccessToken,
			}).Error
	})
}

func (r AccountRepo) UpdateWatermark(ctx context.Context, instanceURL, mastodonID, checkinID string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("instance_url = ? AND mastodon_id = ?", instanceURL, mastodonID).
		Update("last_checkin_id", checkinID).Error
}

func (r AccountRepo) ListLinked(ctx context.Context) ([]db_models.Account, error) {
	var accounts []db_models.Account
	err := r.db.WithContext(ctx).
		Where("swarm_id <> '' AND swarm_access_token <> ''").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
