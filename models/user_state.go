package models

import (
	"time"
)

// UserState holds the conversational state of one user: the category the
// user last selected from the menu. Free text arriving without an active
// category gets a prompt to /start instead.
type UserState struct {
	UserID    int64     `gorm:"primaryKey" json:"user_id"`
	Category  string    `json:"category"`
	UpdatedAt time.Time `json:"updated_at"`
}
