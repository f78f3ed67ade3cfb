package repositories

import (
	"errors"
	"fmt"
	"time"

	"droptrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProgressRepository is a GORM implementation of ProgressRepository.
type GORMProgressRepository struct {
	db *gorm.DB
}

// NewGORMProgressRepository creates a new instance of GORMProgressRepository.
func NewGORMProgressRepository(db *gorm.DB) *GORMProgressRepository {
	return &GORMProgressRepository{
		db: db,
	}
}

// GetByKey retrieves the entry for (user, account, week start).
func (r *GORMProgressRepository) GetByKey(userID, accountID string, weekStart time.Time) (*models.ProgressEntry, error) {
	var entry models.ProgressEntry
	err := r.db.First(&entry, "user_id = ? AND account_id = ? AND week_start = ?", userID, accountID, weekStart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("progress for account %s week %s: %w",
				accountID, weekStart.Format("2006-01-02"), models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get progress by key: %w", err)
	}
	return &entry, nil
}

// GetByID retrieves a single entry by its ID.
func (r *GORMProgressRepository) GetByID(id string) (*models.ProgressEntry, error) {
	var entry models.ProgressEntry
	if err := r.db.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("progress %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get progress by ID %s: %w", id, err)
	}
	return &entry, nil
}

// ListForWeek retrieves the user's entries for one week, restricted to the
// given account ids.
func (r *GORMProgressRepository) ListForWeek(userID string, weekStart time.Time, accountIDs []string) ([]models.ProgressEntry, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	var entries []models.ProgressEntry
	err := r.db.Where("user_id = ? AND week_start = ? AND account_id IN ?", userID, weekStart, accountIDs).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list progress for week %s: %w", weekStart.Format("2006-01-02"), err)
	}
	return entries, nil
}

// Create creates a new progress entry in the database.
func (r *GORMProgressRepository) Create(entry *models.ProgressEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create progress entry: %w", err)
	}
	return nil
}

// Update updates an existing progress entry in the database.
func (r *GORMProgressRepository) Update(entry *models.ProgressEntry) error {
	// Save would skip nil pointer fields on partial structs; use Select to
	// force the nullable columns through so clearing CaseName persists.
	res := r.db.Model(entry).
		Select("drop_farmed", "case_name", "additional_drop", "last_updated").
		Updates(map[string]interface{}{
			"drop_farmed":     entry.DropFarmed,
			"case_name":       entry.CaseName,
			"additional_drop": entry.AdditionalDrop,
			"last_updated":    entry.LastUpdated,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update progress entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("progress %s: %w", entry.ID, models.ErrNotFound)
	}
	return nil
}
