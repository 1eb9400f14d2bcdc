package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"swarmdon/internal/models/db_models"
)

type RegistrationRepository interface {
	// GetByInstance fetches the app registration for one Mastodon
	// instance. Returns (nil, nil) when absent.
	GetByInstance(ctx context.Context, instanceURL string) (*db_models.AppRegistration, error)

	// Save stores a freshly registered application.
	Save(ctx context.Context, registration *db_models.AppRegistration) error
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &RegistrationRepo{db: db}
}

type RegistrationRepo struct {
	db *gorm.DB
}

func (r RegistrationRepo) GetByInstance(ctx context.Context, instanceURL string) (*db_models.AppRegistration, error) {
	var registration db_models.AppRegistration
	err := r.db.WithContext(ctx).
		Where("instance_url = ?", instanceURL).
		First(&registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &registration, nil
}

func (r RegistrationRepo) Save(ctx context.Context, registration *db_models.AppRegistration) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Create(registration).Error
	})
}
