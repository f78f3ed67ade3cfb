package repositories

import "droptrack/internal/models"

// AccountRepository defines the interface for tracked-account data access.
// Methods that take a userID alongside an account ID filter on both, so a
// caller can never touch another user's account by guessing ids.
type AccountRepository interface {
	// ListByUser returns the user's accounts ordered ascending by sort number.
	ListByUser(userID string) ([]models.TrackedAccount, error)
	GetByID(id string) (*models.TrackedAccount, error)
	// FindByUserAndSteamID returns the user's account with the given steamid,
	// or ErrNotFound.
	FindByUserAndSteamID(userID, steamID string) (*models.TrackedAccount, error)
	// NextSortNumber returns max(sort_number)+1 for the user, or 0 when the
	// user has no accounts yet.
	NextSortNumber(userID string) (int, error)
	Create(account *models.TrackedAccount) error
	Update(account *models.TrackedAccount) error
	// SetSortNumber updates one account's sort number, filtered by owner.
	// It reports whether a row matched; a miss is not an error.
	SetSortNumber(id, userID string, sortNumber int) (bool, error)
	// Delete removes the user's account, or returns ErrNotFound.
	Delete(id, userID string) error
}
