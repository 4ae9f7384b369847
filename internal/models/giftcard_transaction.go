package models

import (
	"time"

	"gorm.io/gorm"
)

// GiftcardTransaction is the buy/sell order record. TotalKobo always equals
// money.Total(UnitAmountKobo, Quantity, RateBps). Only the status,
// rejection reason and review timestamp change after creation, and only
// through the review workflow or the gateway webhook.
type GiftcardTransaction struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Reference       string         `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Type            string         `gorm:"size:10;not null;index" json:"type"` // BUY | SELL
	BrandID         uint           `gorm:"not null;index" json:"brand_id"`
	VariantID       uint           `gorm:"not null;index" json:"variant_id"`
	VariantName     string         `gorm:"size:100" json:"variant_name"`
	Quantity        int            `gorm:"not null" json:"quantity"`
	UnitAmountKobo  int64          `gorm:"not null" json:"unit_amount_kobo"`
	RateBps         int64          `gorm:"not null" json:"rate_bps"`
	TotalKobo       int64          `gorm:"not null" json:"total_kobo"`
	Status          string         `gorm:"size:20;not null;index" json:"status"`
	PaymentMethod   string         `gorm:"size:30;not null" json:"payment_method"`
	ProofURL        string         `gorm:"size:512" json:"proof_url,omitempty"`
	CardCode        string         `gorm:"type:text" json:"-"` // sell side: code surrendered by the user
	RejectionReason string         `gorm:"size:255" json:"rejection_reason,omitempty"`
	WalletTxRef     string         `gorm:"size:64;index" json:"wallet_tx_ref,omitempty"`
	GatewayRef      string         `gorm:"size:128;index" json:"gateway_ref,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (GiftcardTransaction) TableName() string {
	return "giftcard_transactions"
}
