package models

import (
	"time"

	"gorm.io/gorm"
)

// InventoryUnit is one sellable gift card code stocked by an admin. A unit
// with Sold=true or a non-null AssignedOrder is invisible to every other
// order; claiming happens through a single conditional update on
// assigned_order, never by read-then-write.
type InventoryUnit struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	BrandID       uint           `gorm:"not null;index" json:"brand_id"`
	VariantID     uint           `gorm:"not null;index" json:"variant_id"`
	FaceValueKobo int64          `gorm:"not null" json:"face_value_kobo"`
	RateBps       int64          `gorm:"not null" json:"rate_bps"` // buy rate at stocking time
	Code          string         `gorm:"size:255;not null" json:"-"`
	Sold          bool           `gorm:"default:false;index" json:"sold"`
	AssignedOrder *string        `gorm:"size:64;index" json:"assigned_order,omitempty"` // order reference holding this unit
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Brand   GiftcardBrand   `gorm:"foreignKey:BrandID" json:"-"`
	Variant GiftcardVariant `gorm:"foreignKey:VariantID" json:"-"`
}

func (InventoryUnit) TableName() string {
	return "inventory_units"
}
