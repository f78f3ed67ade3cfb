package models

import "time"

// CaseItem is a priced catalog entry maintained by admins. Progress entries
// reference it by CaseName, so renaming or deleting a case leaves historical
// entries pointing at a name that simply resolves to price 0.
type CaseItem struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CaseName    string    `json:"case_name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=1,max=100"`
	CasePrice   float64   `json:"case_price" validate:"gte=0"`
	ReleaseDate time.Time `json:"release_date"`
}
