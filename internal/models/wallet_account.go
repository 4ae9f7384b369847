package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletAccount is the single custodial balance per user. The balance is only
// ever written by the ledger repository, and never goes negative.
type WalletAccount struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceKobo int64          `gorm:"not null;default:0" json:"balance_kobo"`
	Currency    string         `gorm:"size:3;default:'NGN'" json:"currency"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletAccount) TableName() string {
	return "wallet_accounts"
}
