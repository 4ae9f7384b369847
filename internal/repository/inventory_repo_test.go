package repository

import (
	"fmt"
	"testing"
	"time"

	"giftpay/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupInventoryTest(t *testing.T) (*InventoryRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.InventoryUnit{}))
	return NewInventoryRepository(db), db
}

func stockUnits(t *testing.T, repo *InventoryRepository, n int) {
	t.Helper()
	units := make([]models.InventoryUnit, 0, n)
	for i := 0; i < n; i++ {
		units = append(units, models.InventoryUnit{
			BrandID:       1,
			VariantID:     1,
			FaceValueKobo: 100000,
			RateBps:       9000,
			Code:          fmt.Sprintf("CODE-%04d", i),
		})
	}
	require.NoError(t, repo.AddUnits(units))
}

func TestReserveUnitClaimsEachUnitOnce(t *testing.T) {
	repo, _ := setupInventoryTest(t)
	stockUnits(t, repo, 3)

	seen := map[uint]bool{}
	for i := 0; i < 3; i++ {
		unit, err := repo.ReserveUnit(1, 1, fmt.Sprintf("order-%d", i))
		require.NoError(t, err)
		assert.False(t, seen[unit.ID], "unit %d handed out twice", unit.ID)
		seen[unit.ID] = true
	}

	_, err := repo.ReserveUnit(1, 1, "order-late")
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestReserveUnitIgnoresOtherVariants(t *testing.T) {
	repo, _ := setupInventoryTest(t)
	require.NoError(t, repo.AddUnits([]models.InventoryUnit{
		{BrandID: 1, VariantID: 2, FaceValueKobo: 50000, RateBps: 9000, Code: "OTHER-1"},
	}))

	_, err := repo.ReserveUnit(1, 1, "order-a")
	assert.ErrorIs(t, err, ErrOutOfStock)

	unit, err := repo.ReserveUnit(1, 2, "order-b")
	require.NoError(t, err)
	assert.Equal(t, "OTHER-1", unit.Code)
}

func TestReleaseReturnsUnitToPool(t *testing.T) {
	repo, _ := setupInventoryTest(t)
	stockUnits(t, repo, 1)

	unit, err := repo.ReserveUnit(1, 1, "order-a")
	require.NoError(t, err)

	_, err = repo.ReserveUnit(1, 1, "order-b")
	assert.ErrorIs(t, err, ErrOutOfStock)

	require.NoError(t, repo.Release(unit.ID))

	again, err := repo.ReserveUnit(1, 1, "order-b")
	require.NoError(t, err)
	assert.Equal(t, unit.ID, again.ID)
}

func TestReleaseSoldUnitFails(t *testing.T) {
	repo, _ := setupInventoryTest(t)
	stockUnits(t, repo, 1)

	unit, err := repo.ReserveUnit(1, 1, "order-a")
	require.NoError(t, err)
	require.NoError(t, repo.MarkSold(unit.ID))

	assert.ErrorIs(t, repo.Release(unit.ID), ErrAlreadySold)
}

func TestMarkSoldIsIdempotent(t *testing.T) {
	repo, _ := setupInventoryTest(t)
	stockUnits(t, repo, 1)

	unit, err := repo.ReserveUnit(1, 1, "order-a")
	require.NoError(t, err)
	require.NoError(t, repo.MarkSold(unit.ID))
	require.NoError(t, repo.MarkSold(unit.ID))

	got, err := repo.GetByID(unit.ID)
	require.NoError(t, err)
	assert.True(t, got.Sold)
}

func TestReleaseOrderFreesOnlyUnsoldUnits(t *testing.T) {
	repo, _ := setupInventoryTest(t)
	stockUnits(t, repo, 3)

	for i := 0; i < 3; i++ {
		_, err := repo.ReserveUnit(1, 1, "order-a")
		require.NoError(t, err)
	}
	units, err := repo.UnitsByOrder("order-a")
	require.NoError(t, err)
	require.Len(t, units, 3)
	require.NoError(t, repo.MarkSold(units[0].ID))

	require.NoError(t, repo.ReleaseOrder("order-a"))

	available, err := repo.CountAvailable(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), available)

	sold, err := repo.GetByID(units[0].ID)
	require.NoError(t, err)
	assert.True(t, sold.Sold)
	require.NotNil(t, sold.AssignedOrder)
	assert.Equal(t, "order-a", *sold.AssignedOrder)
}

func TestMarkOrderSoldFinalizesAllHeldUnits(t *testing.T) {
	repo, _ := setupInventoryTest(t)
	stockUnits(t, repo, 2)

	for i := 0; i < 2; i++ {
		_, err := repo.ReserveUnit(1, 1, "order-a")
		require.NoError(t, err)
	}
	require.NoError(t, repo.MarkOrderSold("order-a"))

	units, err := repo.UnitsByOrder("order-a")
	require.NoError(t, err)
	require.Len(t, units, 2)
	for _, u := range units {
		assert.True(t, u.Sold)
	}

	available, err := repo.CountAvailable(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), available)
}

func TestReserveUnitConcurrentClaims(t *testing.T) {
	repo, db := setupInventoryTest(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	const units = 3
	const claimers = 8
	stockUnits(t, repo, units)

	type claim struct {
		unit *models.InventoryUnit
		err  error
	}
	results := make(chan claim, claimers)
	for i := 0; i < claimers; i++ {
		ref := fmt.Sprintf("order-%d", i)
		go func() {
			unit, err := repo.ReserveUnit(1, 1, ref)
			results <- claim{unit: unit, err: err}
		}()
	}

	claimed := map[uint]bool{}
	var losers int
	for i := 0; i < claimers; i++ {
		c := <-results
		if c.err != nil {
			require.ErrorIs(t, c.err, ErrOutOfStock)
			losers++
			continue
		}
		assert.False(t, claimed[c.unit.ID], "unit %d claimed twice", c.unit.ID)
		claimed[c.unit.ID] = true
	}
	assert.Len(t, claimed, units, "every stocked unit claimed exactly once")
	assert.Equal(t, claimers-units, losers)

	available, err := repo.CountAvailable(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), available)
}

func TestCountAvailableExcludesHeldAndSold(t *testing.T) {
	repo, _ := setupInventoryTest(t)
	stockUnits(t, repo, 5)

	unitA, err := repo.ReserveUnit(1, 1, "order-a")
	require.NoError(t, err)
	unitB, err := repo.ReserveUnit(1, 1, "order-b")
	require.NoError(t, err)
	require.NoError(t, repo.MarkSold(unitB.ID))
	_ = unitA

	available, err := repo.CountAvailable(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), available)
}
