package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletTransaction is the append-only ledger row behind every balance
// change. Amount is always positive; the type decides the direction. A row
// that reaches COMPLETED or REJECTED is never mutated again.
type WalletTransaction struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	Type             string         `gorm:"size:20;not null;index" json:"type"` // FUND, PURCHASE, WITHDRAWAL, REFUND
	AmountKobo       int64          `gorm:"not null" json:"amount_kobo"`
	Status           string         `gorm:"size:20;not null;index" json:"status"`
	PaymentMethod    string         `gorm:"size:30" json:"payment_method"`
	Reference        string         `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	Description      string         `gorm:"size:255" json:"description"`
	ProofURL         string         `gorm:"size:512" json:"proof_url,omitempty"` // manual transfer receipt
	BalanceAfterKobo *int64         `json:"balance_after_kobo,omitempty"`        // snapshot once completed
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
