package repositories

import (
	"errors"
	"fmt"

	"droptrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAccountRepository is a GORM implementation of AccountRepository.
type GORMAccountRepository struct {
	db *gorm.DB
}

// NewGORMAccountRepository creates a new instance of GORMAccountRepository.
func NewGORMAccountRepository(db *gorm.DB) *GORMAccountRepository {
	return &GORMAccountRepository{
		db: db,
	}
}

// ListByUser retrieves the user's accounts ordered by sort number.
func (r *GORMAccountRepository) ListByUser(userID string) ([]models.TrackedAccount, error) {
	var accounts []models.TrackedAccount
	if err := r.db.Where("user_id = ?", userID).Order("sort_number asc").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts for user %s: %w", userID, err)
	}
	return accounts, nil
}

// GetByID retrieves a single account by its ID.
func (r *GORMAccountRepository) GetByID(id string) (*models.TrackedAccount, error) {
	var account models.TrackedAccount
	if err := r.db.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by ID %s: %w", id, err)
	}
	return &account, nil
}

// FindByUserAndSteamID retrieves the user's account with the given steamid.
func (r *GORMAccountRepository) FindByUserAndSteamID(userID, steamID string) (*models.TrackedAccount, error) {
	var account models.TrackedAccount
	if err := r.db.First(&account, "user_id = ? AND steam_id = ?", userID, steamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account with steamid %s: %w", steamID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find account by steamid %s: %w", steamID, err)
	}
	return &account, nil
}

// NextSortNumber computes the next append-to-end sort number for the user.
func (r *GORMAccountRepository) NextSortNumber(userID string) (int, error) {
	var account models.TrackedAccount
	err := r.db.Where("user_id = ?", userID).Order("sort_number desc").First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get max sort number for user %s: %w", userID, err)
	}
	return account.SortNumber + 1, nil
}

// Create creates a new tracked account in the database.
func (r *GORMAccountRepository) Create(account *models.TrackedAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if err := r.db.Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Update updates an existing tracked account in the database.
func (r *GORMAccountRepository) Update(account *models.TrackedAccount) error {
	res := r.db.Save(account)
	if res.Error != nil {
		return fmt.Errorf("failed to update account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %s: %w", account.ID, models.ErrNotFound)
	}
	return nil
}

// SetSortNumber updates one account's sort number, filtered by owner.
func (r *GORMAccountRepository) SetSortNumber(id, userID string, sortNumber int) (bool, error) {
	res := r.db.Model(&models.TrackedAccount{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("sort_number", sortNumber)
	if res.Error != nil {
		return false, fmt.Errorf("failed to set sort number for account %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete deletes the user's account by its ID.
func (r *GORMAccountRepository) Delete(id, userID string) error {
	res := r.db.Delete(&models.TrackedAccount{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %s: %w", id, models.ErrNotFound)
	}
	return nil
}
