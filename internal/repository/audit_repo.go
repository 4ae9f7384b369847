package repository

import (
	"giftpay/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(a *models.AuditLog) error {
	return r.db.Create(a).Error
}

func (r *AuditLogRepository) List(limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.AuditLog
	err := r.db.Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
