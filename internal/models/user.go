package models

import "time"

// Role values stored in User.Role. New registrations always get RoleUser;
// admins are promoted directly in the database.
const (
	RoleUser  = "user"
	RoleAdmin = "Admin"
)

// User represents a registered user of the tracker.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username       string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Password       string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash
	Role           string    `json:"role" gorm:"type:varchar(20)"`
	UsedInviteCode string    `json:"-" gorm:"type:varchar(100)"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// IsAdmin reports whether the user may access admin-only routes.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
