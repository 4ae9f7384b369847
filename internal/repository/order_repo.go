package repository

import (
	"time"

	"giftpay/internal/domain"
	"giftpay/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *models.GiftcardTransaction) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) GetByReference(ref string) (*models.GiftcardTransaction, error) {
	var o models.GiftcardTransaction
	if err := r.db.Where("reference = ?", ref).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByGatewayRef(ref string) (*models.GiftcardTransaction, error) {
	var o models.GiftcardTransaction
	if err := r.db.Where("gateway_ref = ?", ref).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(userID uint, limit int) ([]models.GiftcardTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.GiftcardTransaction
	err := r.db.Where("user_id = ?", userID).Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *OrderRepository) ListByStatus(status string, limit int) ([]models.GiftcardTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.GiftcardTransaction
	q := r.db.Order("id ASC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&rows).Error
	return rows, err
}

// Transition flips the order status only if it still holds the expected
// value. The false return is the exactly-once guard for reviews and webhook
// settlements.
func (r *OrderRepository) Transition(id uint, from, to string, extra map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if to == domain.StatusCompleted || to == domain.StatusRejected {
		now := time.Now()
		updates["reviewed_at"] = &now
	}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.Model(&models.GiftcardTransaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
