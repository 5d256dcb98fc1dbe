package orders

import (
	"errors"
	"time"

	"github.com/avtoyurist/docbot/models"
	"github.com/avtoyurist/docbot/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the durable keyed storage for payment challenges: one row per
// (user, category), updated atomically.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on top of a gorm handle
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Upsert creates or replaces the order for (userID, category). Replacement
// always overwrites amount and code, resets verified and restarts the issue
// timestamp, so a stale confirmation for the replaced challenge can never
// verify the new one.
func (s *Store) Upsert(userID int64, category string, amount int64, code string) (models.Order, error) {
	now := time.Now()
	order := models.Order{
		UserID:    userID,
		Category:  category,
		Amount:    amount,
		Code:      code,
		Verified:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "category"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"amount":     amount,
			"code":       code,
			"verified":   false,
			"created_at": now,
			"updated_at": now,
		}),
	}).Create(&order).Error
	if err != nil {
		return models.Order{}, utils.StorageError("failed to upsert order", err)
	}

	// Re-read so the caller sees the stored row (the Create above does not
	// refill the struct on the conflict path).
	stored, found, err := s.Get(userID, category)
	if err != nil {
		return models.Order{}, err
	}
	if !found {
		return models.Order{}, utils.StorageError("order vanished after upsert", nil)
	}
	return stored, nil
}

// Get returns the order for (userID, category), if any
func (s *Store) Get(userID int64, category string) (models.Order, bool, error) {
	var order models.Order
	err := s.db.Where("user_id = ? AND category = ?", userID, category).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, false, nil
		}
		return models.Order{}, false, utils.StorageError("failed to load order", err)
	}
	return order, true, nil
}

// MarkVerified flips the order to verified, but only while the stored amount
// and code still equal the expected ones. A challenge reissued between the
// confirmation read and this write changes both, so the update matches zero
// rows and the stale confirmation is rejected.
func (s *Store) MarkVerified(userID int64, category string, expectedAmount int64, expectedCode string) (bool, error) {
	res := s.db.Model(&models.Order{}).
		Where("user_id = ? AND category = ? AND amount = ? AND code = ?",
			userID, category, expectedAmount, expectedCode).
		Update("verified", true)
	if res.Error != nil {
		return false, utils.StorageError("failed to mark order verified", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetActiveCategory records the category the user last selected
func (s *Store) SetActiveCategory(userID int64, category string) error {
	state := models.UserState{UserID: userID, Category: category, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&state).Error
	if err != nil {
		return utils.StorageError("failed to save user state", err)
	}
	return nil
}

// ActiveCategory returns the category the user last selected, if any
func (s *Store) ActiveCategory(userID int64) (string, bool, error) {
	var state models.UserState
	err := s.db.Where("user_id = ?", userID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, utils.StorageError("failed to load user state", err)
	}
	return state.Category, true, nil
}

// ListOrders returns all orders newest first, for the operator export
func (s *Store) ListOrders() ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, utils.StorageError("failed to list orders", err)
	}
	return orders, nil
}
