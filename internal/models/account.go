package models

import "time"

// TrackedAccount is a game account a user follows on their dashboard.
// SteamID is unique per owner, not globally. SortNumber defines the user's
// chosen display order; gaps are allowed, only the relative order matters.
type TrackedAccount struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID      string    `json:"user_id" gorm:"index;type:varchar(36)"`
	AccountName string    `json:"account_name" validate:"required,min=1,max=100"`
	SteamID     string    `json:"steamid" gorm:"type:varchar(17)" validate:"required,len=17,numeric"`
	SortNumber  int       `json:"sort_number"`
	AddedAt     time.Time `json:"added_at"`
}
