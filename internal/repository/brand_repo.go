package repository

import (
	"giftpay/internal/models"

	"gorm.io/gorm"
)

type BrandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

func (r *BrandRepository) Create(b *models.GiftcardBrand) error {
	return r.db.Create(b).Error
}

func (r *BrandRepository) CreateVariant(v *models.GiftcardVariant) error {
	return r.db.Create(v).Error
}

func (r *BrandRepository) ListActive() ([]models.GiftcardBrand, error) {
	var brands []models.GiftcardBrand
	err := r.db.Preload("Variants", "active = ?", true).
		Where("active = ?", true).Order("name").Find(&brands).Error
	return brands, err
}

func (r *BrandRepository) GetVariant(variantID uint) (*models.GiftcardVariant, error) {
	var v models.GiftcardVariant
	if err := r.db.First(&v, variantID).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *BrandRepository) UpdateVariantRates(variantID uint, buyRateBps, sellRateBps int64) error {
	return r.db.Model(&models.GiftcardVariant{}).Where("id = ?", variantID).
		Updates(map[string]interface{}{"buy_rate_bps": buyRateBps, "sell_rate_bps": sellRateBps}).Error
}
