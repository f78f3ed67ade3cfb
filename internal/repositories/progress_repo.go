package repositories

import (
	"time"

	"droptrack/internal/models"
)

// ProgressRepository defines the interface for weekly-progress data access.
// The natural key is (user, account, week start); GetByKey is how the upsert
// in the progress service decides between insert and update.
type ProgressRepository interface {
	// GetByKey returns the entry for the natural key, or ErrNotFound.
	GetByKey(userID, accountID string, weekStart time.Time) (*models.ProgressEntry, error)
	GetByID(id string) (*models.ProgressEntry, error)
	// ListForWeek returns the user's entries for one week, restricted to the
	// given account ids.
	ListForWeek(userID string, weekStart time.Time, accountIDs []string) ([]models.ProgressEntry, error)
	Create(entry *models.ProgressEntry) error
	Update(entry *models.ProgressEntry) error
}
