package models

import (
	"time"

	"gorm.io/gorm"
)

// GiftcardBrand groups variants of one retailer (Amazon, Steam, ...).
type GiftcardBrand struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	ImageURL  string         `gorm:"size:512" json:"image_url"`
	Active    bool           `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Variants []GiftcardVariant `gorm:"foreignKey:BrandID" json:"variants,omitempty"`
}

func (GiftcardBrand) TableName() string {
	return "giftcard_brands"
}

// GiftcardVariant is one purchasable denomination of a brand. Rates are
// admin-maintained basis points applied to the face value; they are inputs
// to order pricing, not derived by the core.
type GiftcardVariant struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	BrandID       uint           `gorm:"not null;index" json:"brand_id"`
	Name          string         `gorm:"size:100;not null" json:"name"` // e.g. "USA 100 USD"
	FaceValueKobo int64          `gorm:"not null" json:"face_value_kobo"`
	BuyRateBps    int64          `gorm:"not null;default:0" json:"buy_rate_bps"`
	SellRateBps   int64          `gorm:"not null;default:0" json:"sell_rate_bps"`
	Active        bool           `gorm:"default:true;index" json:"active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Brand GiftcardBrand `gorm:"foreignKey:BrandID" json:"-"`
}

func (GiftcardVariant) TableName() string {
	return "giftcard_variants"
}
