package models

import "time"

// ProgressEntry records, for one tracked account and one tracking week,
// whether the weekly drop was farmed and which case dropped. At most one
// entry exists per (UserID, AccountID, WeekStart); writes go through an
// upsert keyed on that triple. WeekStart is always midnight UTC of the
// week's anchor day.
//
// Invariant: when DropFarmed is false, CaseName and AdditionalDrop are nil.
type ProgressEntry struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string    `json:"user_id" gorm:"index;type:varchar(36)"`
	AccountID      string    `json:"account_doc_id" gorm:"index;type:varchar(36)"`
	WeekStart      time.Time `json:"week_start" gorm:"index"`
	DropFarmed     bool      `json:"drop_farmed"`
	CaseName       *string   `json:"case_name"`
	AdditionalDrop *string   `json:"additional_drop"`
	LastUpdated    time.Time `json:"last_updated"`
}

// WeekViewRow is one dashboard line: a tracked account joined with its
// progress entry for the requested week, if any. Accounts without an entry
// still get a row, with ProgressID nil and the "N/A"/"-" placeholders.
type WeekViewRow struct {
	ProgressID     *string `json:"progress_id"`
	AccountID      string  `json:"account_doc_id"`
	AccountName    string  `json:"account_name"`
	SteamID        string  `json:"steamid"`
	WeekStart      string  `json:"week_start"`
	DropFarmed     bool    `json:"drop_farmed"`
	CaseName       string  `json:"case_name"`
	AdditionalDrop string  `json:"additional_drop"`
	CaseValue      float64 `json:"case_value"`
}

// WeekView is the aggregated view of one tracking week: every account the
// user tracks, in display order, plus the summed value of farmed drops.
type WeekView struct {
	WeekStart  string        `json:"week_start"`
	Rows       []WeekViewRow `json:"progress"`
	TotalValue float64       `json:"total_value"`
}
