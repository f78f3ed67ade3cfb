package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"droptrack/internal/models"
	"droptrack/internal/repositories"

	"github.com/google/uuid"
)

// AccountService handles business logic for a user's tracked accounts,
// including the drag-and-drop display ordering.
type AccountService struct {
	repo repositories.AccountRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo repositories.AccountRepository) *AccountService {
	return &AccountService{
		repo: repo,
	}
}

// ListAccounts retrieves the user's accounts in display order.
func (s *AccountService) ListAccounts(userID string) ([]models.TrackedAccount, error) {
	return s.repo.ListByUser(userID)
}

// validSteamID reports whether s is exactly 17 numeric characters.
func validSteamID(s string) bool {
	if len(s) != 17 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// AddAccount creates a tracked account for the user, appending it at the end
// of the display order.
func (s *AccountService) AddAccount(userID, accountName, steamID string) (*models.TrackedAccount, error) {
	if accountName == "" || steamID == "" {
		return nil, fmt.Errorf("account name and SteamID64 are required: %w", models.ErrValidation)
	}
	if !validSteamID(steamID) {
		return nil, fmt.Errorf("invalid SteamID64 format, must be 17 digits: %w", models.ErrValidation)
	}

	if existing, err := s.repo.FindByUserAndSteamID(userID, steamID); err == nil && existing != nil {
		return nil, fmt.Errorf("account with SteamID %s is already being tracked: %w", steamID, models.ErrConflict)
	} else if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	nextSort, err := s.repo.NextSortNumber(userID)
	if err != nil {
		return nil, err
	}

	account := &models.TrackedAccount{
		UserID:      userID,
		AccountName: accountName,
		SteamID:     steamID,
		SortNumber:  nextSort,
		AddedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(account); err != nil {
		return nil, err
	}
	return account, nil
}

// ReorderAccounts sets each account's sort number to its index in orderedIDs.
// Every id is validated up front; a malformed id fails the whole request
// before any write. Updates themselves are best-effort and per-account: ids
// that don't exist or belong to someone else are skipped, and the caller can
// compare the returned matched count against len(orderedIDs) to detect
// partial application.
func (s *AccountService) ReorderAccounts(userID string, orderedIDs []string) (int, error) {
	for _, id := range orderedIDs {
		if _, err := uuid.Parse(id); err != nil {
			return 0, fmt.Errorf("invalid account ID format: %s: %w", id, models.ErrValidation)
		}
	}

	matched := 0
	for index, id := range orderedIDs {
		ok, err := s.repo.SetSortNumber(id, userID, index)
		if err != nil {
			log.Printf("Error setting sort number for account %s (user %s): %v", id, userID, err)
			continue
		}
		if ok {
			matched++
		}
	}
	if matched != len(orderedIDs) {
		log.Printf("Warning: matched count (%d) doesn't equal submitted ID count (%d) for user %s",
			matched, len(orderedIDs), userID)
	}
	return matched, nil
}

// EditAccount renames an account and/or changes its steamid, leaving the
// sort number untouched.
func (s *AccountService) EditAccount(userID, accountID, accountName, steamID string) error {
	if accountName == "" || steamID == "" {
		return fmt.Errorf("account name and SteamID64 are required: %w", models.ErrValidation)
	}
	if !validSteamID(steamID) {
		return fmt.Errorf("invalid SteamID64 format, must be 17 digits: %w", models.ErrValidation)
	}

	account, err := s.repo.GetByID(accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("account not found or no permission to edit it: %w", models.ErrNotFound)
		}
		return err
	}
	if account.UserID != userID {
		// Same message as a missing account so ids can't be probed.
		return fmt.Errorf("account not found or no permission to edit it: %w", models.ErrNotFound)
	}

	if steamID != account.SteamID {
		if existing, err := s.repo.FindByUserAndSteamID(userID, steamID); err == nil && existing != nil && existing.ID != accountID {
			return fmt.Errorf("another account ('%s') already uses SteamID %s: %w",
				existing.AccountName, steamID, models.ErrConflict)
		} else if err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}
	}

	account.AccountName = accountName
	account.SteamID = steamID
	return s.repo.Update(account)
}

// DeleteAccount removes the user's account. Remaining accounts keep their
// sort numbers; gaps don't affect ordering.
func (s *AccountService) DeleteAccount(userID, accountID string) error {
	if err := s.repo.Delete(accountID, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("account not found or no permission to delete it: %w", models.ErrNotFound)
		}
		return err
	}
	return nil
}
