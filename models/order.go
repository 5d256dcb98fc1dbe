package models

import (
	"fmt"
	"time"
)

// Order represents one pending-or-verified payment challenge. At most one
// order exists per (user_id, category); issuing a new challenge for the same
// pair overwrites the old one and resets verified. Orders are never deleted,
// only superseded or left to lapse.
type Order struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   int64  `gorm:"uniqueIndex:idx_user_category" json:"user_id"`
	Category string `gorm:"uniqueIndex:idx_user_category" json:"category"`
	// Amount is in minor currency units (kopecks): basePrice*100 plus a
	// fresh two-digit offset that makes the transfer identifiable.
	Amount    int64     `json:"amount"`
	Code      string    `json:"code"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AmountRubles formats the amount as "rubles,kopecks" for display.
func (o Order) AmountRubles() string {
	return formatMinorUnits(o.Amount)
}

func formatMinorUnits(v int64) string {
	return fmt.Sprintf("%d,%02d", v/100, v%100)
}
