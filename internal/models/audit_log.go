package models

import (
	"time"

	"gorm.io/gorm"
)

// AuditLog records admin reviews and webhook settlements for traceability.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     *uint          `gorm:"index" json:"user_id"`
	Action     string         `gorm:"size:100;not null;index" json:"action"`
	Resource   string         `gorm:"size:50" json:"resource"`
	ResourceID string         `gorm:"size:128" json:"resource_id"`
	Detail     string         `gorm:"size:512" json:"detail"`
	IP         string         `gorm:"size:45" json:"ip"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
