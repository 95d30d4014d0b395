package repository

import (
	"context"
	"errors"

	"github.com/brewops/schemasync/internal/domain"
	"gorm.io/gorm"
)

// settingsRecordID pins the fetch-settings table to a single row.
const settingsRecordID = 1

// SettingsRepository handles the fetch-settings singleton record.
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new SettingsRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *SettingsRepository: repository instance bound to db.
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves the fetch settings.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *domain.FetchSettings: settings record.
//   - error: gorm.ErrRecordNotFound if no settings have been saved yet.
func (r *SettingsRepository) Get(ctx context.Context) (*domain.FetchSettings, error) {
	var settings domain.FetchSettings
	if err := r.db.WithContext(ctx).First(&settings, "id = ?", settingsRecordID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save creates or replaces the fetch settings.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - settings: settings values to persist.
// Returns:
//   - error: non-nil if the write fails.
func (r *SettingsRepository) Save(ctx context.Context, settings *domain.FetchSettings) error {
	settings.ID = settingsRecordID
	return r.db.WithContext(ctx).Save(settings).Error
}

// EnsureDefaults seeds the settings record from configuration when none
// exists. An existing record is left untouched so dashboard edits survive
// restarts.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - seed: settings values to use when the table is empty.
// Returns:
//   - error: non-nil if the read or write fails.
func (r *SettingsRepository) EnsureDefaults(ctx context.Context, seed *domain.FetchSettings) error {
	_, err := r.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.Save(ctx, seed)
}
