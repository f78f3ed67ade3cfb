package repositories

import (
	"fmt"
	"sync"
	"time"

	"droptrack/internal/models"

	"github.com/google/uuid"
)

// MockProgressRepository is an in-memory implementation of ProgressRepository.
type MockProgressRepository struct {
	entries map[string]models.ProgressEntry
	mu      sync.RWMutex
}

// NewMockProgressRepository creates a new instance of MockProgressRepository.
func NewMockProgressRepository() *MockProgressRepository {
	return &MockProgressRepository{
		entries: make(map[string]models.ProgressEntry),
	}
}

// GetByKey returns the entry for (user, account, week start).
func (r *MockProgressRepository) GetByKey(userID, accountID string, weekStart time.Time) (*models.ProgressEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.UserID == userID && e.AccountID == accountID && e.WeekStart.Equal(weekStart) {
			entry := e
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("progress for account %s week %s: %w",
		accountID, weekStart.Format("2006-01-02"), models.ErrNotFound)
}

// GetByID returns an entry by its ID.
func (r *MockProgressRepository) GetByID(id string) (*models.ProgressEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("progress %s: %w", id, models.ErrNotFound)
	}
	return &entry, nil
}

// ListForWeek returns the user's entries for one week, restricted to the
// given account ids.
func (r *MockProgressRepository) ListForWeek(userID string, weekStart time.Time, accountIDs []string) ([]models.ProgressEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idSet := make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		idSet[id] = struct{}{}
	}

	var entryList []models.ProgressEntry
	for _, e := range r.entries {
		if e.UserID != userID || !e.WeekStart.Equal(weekStart) {
			continue
		}
		if _, ok := idSet[e.AccountID]; ok {
			entryList = append(entryList, e)
		}
	}
	return entryList, nil
}

// Create adds a new progress entry.
func (r *MockProgressRepository) Create(entry *models.ProgressEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	r.entries[entry.ID] = *entry
	return nil
}

// Update modifies an existing progress entry.
func (r *MockProgressRepository) Update(entry *models.ProgressEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[entry.ID]
	if !ok {
		return fmt.Errorf("progress %s: %w", entry.ID, models.ErrNotFound)
	}
	r.entries[entry.ID] = *entry
	return nil
}
