package repository

import (
	"errors"

	"giftpay/internal/models"

	"gorm.io/gorm"
)

var (
	ErrOutOfStock  = errors.New("no gift card units available")
	ErrAlreadySold = errors.New("gift card unit already sold")
)

// InventoryRepository owns the stock of gift card codes. A unit is claimed
// by exactly one order through a conditional update on assigned_order; two
// orders racing for the last unit see one success and one ErrOutOfStock.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// ReserveUnit claims one free unit of the variant for the given order
// reference. Losing a claim race just moves on to the next candidate; the
// pool is finite so the loop terminates.
func (r *InventoryRepository) ReserveUnit(brandID, variantID uint, orderRef string) (*models.InventoryUnit, error) {
	for {
		var unit models.InventoryUnit
		err := r.db.
			Where("brand_id = ? AND variant_id = ? AND sold = ? AND assigned_order IS NULL", brandID, variantID, false).
			Order("id").First(&unit).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutOfStock
		}
		if err != nil {
			return nil, err
		}
		res := r.db.Model(&models.InventoryUnit{}).
			Where("id = ? AND sold = ? AND assigned_order IS NULL", unit.ID, false).
			UpdateColumn("assigned_order", orderRef)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			unit.AssignedOrder = &orderRef
			return &unit, nil
		}
	}
}

// MarkSold finalizes a unit; calling it again is a no-op.
func (r *InventoryRepository) MarkSold(unitID uint) error {
	return r.db.Model(&models.InventoryUnit{}).Where("id = ?", unitID).
		UpdateColumn("sold", true).Error
}

// MarkOrderSold finalizes every unit held by the order.
func (r *InventoryRepository) MarkOrderSold(orderRef string) error {
	return r.db.Model(&models.InventoryUnit{}).Where("assigned_order = ?", orderRef).
		UpdateColumn("sold", true).Error
}

// Release returns a held unit to the pool. A finalized unit cannot be
// released.
func (r *InventoryRepository) Release(unitID uint) error {
	res := r.db.Model(&models.InventoryUnit{}).
		Where("id = ? AND sold = ?", unitID, false).
		UpdateColumn("assigned_order", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.InventoryUnit{}).
			Where("id = ? AND sold = ?", unitID, true).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySold
		}
	}
	return nil
}

// ReleaseOrder is the compensation path: it frees every non-sold unit held
// by the order reference.
func (r *InventoryRepository) ReleaseOrder(orderRef string) error {
	return r.db.Model(&models.InventoryUnit{}).
		Where("assigned_order = ? AND sold = ?", orderRef, false).
		UpdateColumn("assigned_order", nil).Error
}

// CountAvailable is advisory only; reservation is the authority and a race
// between count and reserve resolves as ErrOutOfStock from ReserveUnit.
func (r *InventoryRepository) CountAvailable(brandID, variantID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.InventoryUnit{}).
		Where("brand_id = ? AND variant_id = ? AND sold = ? AND assigned_order IS NULL", brandID, variantID, false).
		Count(&count).Error
	return count, err
}

// AddUnits stocks a batch of codes (admin only).
func (r *InventoryRepository) AddUnits(units []models.InventoryUnit) error {
	if len(units) == 0 {
		return nil
	}
	return r.db.Create(&units).Error
}

// UnitsByOrder returns the units held or sold under an order reference.
func (r *InventoryRepository) UnitsByOrder(orderRef string) ([]models.InventoryUnit, error) {
	var units []models.InventoryUnit
	err := r.db.Where("assigned_order = ?", orderRef).Order("id").Find(&units).Error
	return units, err
}

func (r *InventoryRepository) GetByID(unitID uint) (*models.InventoryUnit, error) {
	var unit models.InventoryUnit
	if err := r.db.First(&unit, unitID).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}
