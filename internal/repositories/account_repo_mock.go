package repositories

import (
	"fmt"
	"sort"
	"sync"

	"droptrack/internal/models"

	"github.com/google/uuid"
)

// MockAccountRepository is an in-memory implementation of AccountRepository.
type MockAccountRepository struct {
	accounts map[string]models.TrackedAccount
	mu       sync.RWMutex
}

// NewMockAccountRepository creates a new instance of MockAccountRepository.
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]models.TrackedAccount),
	}
}

// ListByUser returns the user's accounts ordered by sort number.
func (r *MockAccountRepository) ListByUser(userID string) ([]models.TrackedAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accountList := make([]models.TrackedAccount, 0)
	for _, acc := range r.accounts {
		if acc.UserID == userID {
			accountList = append(accountList, acc)
		}
	}
	sort.SliceStable(accountList, func(i, j int) bool {
		return accountList[i].SortNumber < accountList[j].SortNumber
	})
	return accountList, nil
}

// GetByID returns an account by its ID.
func (r *MockAccountRepository) GetByID(id string) (*models.TrackedAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, models.ErrNotFound)
	}
	return &account, nil
}

// FindByUserAndSteamID returns the user's account with the given steamid.
func (r *MockAccountRepository) FindByUserAndSteamID(userID, steamID string) (*models.TrackedAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acc := range r.accounts {
		if acc.UserID == userID && acc.SteamID == steamID {
			account := acc
			return &account, nil
		}
	}
	return nil, fmt.Errorf("account with steamid %s: %w", steamID, models.ErrNotFound)
}

// NextSortNumber computes the next append-to-end sort number for the user.
func (r *MockAccountRepository) NextSortNumber(userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	next := 0
	found := false
	for _, acc := range r.accounts {
		if acc.UserID == userID && (!found || acc.SortNumber >= next) {
			next = acc.SortNumber + 1
			found = true
		}
	}
	return next, nil
}

// Create adds a new tracked account.
func (r *MockAccountRepository) Create(account *models.TrackedAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	r.accounts[account.ID] = *account
	return nil
}

// Update modifies an existing tracked account.
func (r *MockAccountRepository) Update(account *models.TrackedAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.accounts[account.ID]
	if !ok {
		return fmt.Errorf("account %s: %w", account.ID, models.ErrNotFound)
	}
	r.accounts[account.ID] = *account
	return nil
}

// SetSortNumber updates one account's sort number, filtered by owner.
func (r *MockAccountRepository) SetSortNumber(id, userID string, sortNumber int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok || account.UserID != userID {
		return false, nil
	}
	account.SortNumber = sortNumber
	r.accounts[id] = account
	return true, nil
}

// Delete removes the user's account by its ID.
func (r *MockAccountRepository) Delete(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok || account.UserID != userID {
		return fmt.Errorf("account %s: %w", id, models.ErrNotFound)
	}
	delete(r.accounts, id)
	return nil
}
