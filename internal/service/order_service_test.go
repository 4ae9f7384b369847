package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"giftpay/internal/domain"
	"giftpay/internal/models"
	"giftpay/internal/repository"
	"giftpay/pkg/money"
	"giftpay/pkg/payment"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db        *gorm.DB
	svc       *OrderService
	review    *ReviewService
	ledger    *repository.LedgerRepository
	inventory *repository.InventoryRepository
	orders    *repository.OrderRepository
	gateway   *payment.StubProvider
	user      *models.User
	variant   *models.GiftcardVariant
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupOrderTest(t *testing.T) *orderFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.WalletAccount{}, &models.WalletTransaction{},
		&models.GiftcardBrand{}, &models.GiftcardVariant{}, &models.InventoryUnit{},
		&models.GiftcardTransaction{}, &models.Notification{}, &models.AuditLog{},
	))

	log := newTestLogger()
	ledger := repository.NewLedgerRepository(db)
	inventory := repository.NewInventoryRepository(db)
	orders := repository.NewOrderRepository(db)
	brands := repository.NewBrandRepository(db)
	users := repository.NewUserRepository(db)
	events := NewEventService(repository.NewNotificationRepository(db), log)
	gateway := payment.NewStubProvider()

	user := &models.User{Email: "buyer@example.com", Role: domain.RoleUser}
	require.NoError(t, users.Create(user))

	brand := &models.GiftcardBrand{Name: "Amazon", Active: true}
	require.NoError(t, brands.Create(brand))
	variant := &models.GiftcardVariant{
		BrandID:       brand.ID,
		Name:          "USA 100 USD",
		FaceValueKobo: 100000,
		BuyRateBps:    10000,
		SellRateBps:   8500,
		Active:        true,
	}
	require.NoError(t, brands.CreateVariant(variant))

	svc := NewOrderService(ledger, inventory, orders, brands, users, gateway, events, log,
		"https://giftpay.test/callback", 5*time.Second)
	review := NewReviewService(db, events, repository.NewAuditLogRepository(db), log)

	return &orderFixture{
		db: db, svc: svc, review: review,
		ledger: ledger, inventory: inventory, orders: orders,
		gateway: gateway, user: user, variant: variant,
	}
}

func (f *orderFixture) stock(t *testing.T, n int) {
	t.Helper()
	units := make([]models.InventoryUnit, 0, n)
	for i := 0; i < n; i++ {
		units = append(units, models.InventoryUnit{
			BrandID:       f.variant.BrandID,
			VariantID:     f.variant.ID,
			FaceValueKobo: f.variant.FaceValueKobo,
			RateBps:       f.variant.BuyRateBps,
			Code:          fmt.Sprintf("AMZN-%04d", i),
		})
	}
	require.NoError(t, f.inventory.AddUnits(units))
}

func (f *orderFixture) fund(t *testing.T, amountKobo int64) {
	t.Helper()
	_, err := f.ledger.ApplyEntry(f.user.ID, amountKobo, domain.WalletTxFund, repository.EntryMeta{
		PaymentMethod: domain.MethodManualTransfer,
	})
	require.NoError(t, err)
}

func (f *orderFixture) balance(t *testing.T) int64 {
	t.Helper()
	balance, err := f.ledger.GetBalance(f.user.ID)
	require.NoError(t, err)
	return balance
}

func TestBuyWalletSufficientBalance(t *testing.T) {
	f := setupOrderTest(t)
	f.stock(t, 2)
	f.fund(t, 300000)

	res, err := f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 2, Method: domain.MethodWallet,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, res.Order.Status)
	assert.Equal(t, int64(200000), res.Order.TotalKobo)
	assert.Len(t, res.Codes, 2)
	assert.Equal(t, int64(100000), f.balance(t))

	units, err := f.inventory.UnitsByOrder(res.Order.Reference)
	require.NoError(t, err)
	require.Len(t, units, 2)
	for _, u := range units {
		assert.True(t, u.Sold)
	}
	require.NoError(t, f.ledger.CheckConsistency(f.user.ID))
}

func TestBuyWalletInsufficientBalanceReleasesUnits(t *testing.T) {
	f := setupOrderTest(t)
	f.stock(t, 1)
	f.fund(t, 50000)

	_, err := f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 1, Method: domain.MethodWallet,
	})
	assert.ErrorIs(t, err, repository.ErrInsufficientFunds)

	// balance untouched, unit back in the pool, no order row
	assert.Equal(t, int64(50000), f.balance(t))
	available, err := f.inventory.CountAvailable(f.variant.BrandID, f.variant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), available)

	var orders int64
	require.NoError(t, f.db.Model(&models.GiftcardTransaction{}).Count(&orders).Error)
	assert.Equal(t, int64(0), orders)
}

func TestBuyOutOfStock(t *testing.T) {
	f := setupOrderTest(t)
	f.stock(t, 1)
	f.fund(t, 500000)

	_, err := f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 2, Method: domain.MethodWallet,
	})
	assert.ErrorIs(t, err, repository.ErrOutOfStock)

	available, err := f.inventory.CountAvailable(f.variant.BrandID, f.variant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), available)
}

func TestBuyValidation(t *testing.T) {
	f := setupOrderTest(t)

	_, err := f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 0, Method: domain.MethodWallet,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 1, Method: "CRYPTO",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 1, Method: domain.MethodManualTransfer,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "manual transfer without proof")

	_, err = f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: 999, Quantity: 1, Method: domain.MethodWallet,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuyManualTransferApproval(t *testing.T) {
	f := setupOrderTest(t)
	f.stock(t, 1)

	res, err := f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 1,
		Method: domain.MethodManualTransfer, ProofURL: "https://img.example/receipt.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, res.Order.Status)
	assert.Empty(t, res.Codes)
	require.NotEmpty(t, res.Order.WalletTxRef)

	// the incoming transfer sits as a pending fund, balance untouched
	wt, err := f.ledger.GetByReference(res.Order.WalletTxRef)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, wt.Status)
	assert.Equal(t, domain.WalletTxFund, wt.Type)
	assert.Equal(t, int64(0), f.balance(t))

	approved, err := f.review.Approve(99, res.Order.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, approved.Status)

	// fund and purchase cancel out, with a full ledger trail
	assert.Equal(t, int64(0), f.balance(t))
	require.NoError(t, f.ledger.CheckConsistency(f.user.ID))

	units, err := f.inventory.UnitsByOrder(res.Order.Reference)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.True(t, units[0].Sold)

	codes, err := f.svc.CodesForOrder(f.user.ID, res.Order.Reference)
	require.NoError(t, err)
	assert.Equal(t, []string{"AMZN-0000"}, codes)
}

func TestBuyManualTransferRejectionReleasesUnit(t *testing.T) {
	f := setupOrderTest(t)
	f.stock(t, 1)

	res, err := f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 1,
		Method: domain.MethodManualTransfer, ProofURL: "https://img.example/receipt.jpg",
	})
	require.NoError(t, err)

	rejected, err := f.review.Reject(99, res.Order.Reference, "fake receipt")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "fake receipt", rejected.RejectionReason)

	// unit back in the pool, pending fund voided, balance untouched
	available, err := f.inventory.CountAvailable(f.variant.BrandID, f.variant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), available)

	wt, err := f.ledger.GetByReference(res.Order.WalletTxRef)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, wt.Status)
	assert.Equal(t, int64(0), f.balance(t))
}

func TestBuyGatewayWebhookSettlement(t *testing.T) {
	f := setupOrderTest(t)
	f.stock(t, 1)

	res, err := f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 1, Method: domain.MethodGateway,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, res.Order.Status)
	assert.NotEmpty(t, res.CheckoutURL)
	require.NotEmpty(t, res.Order.GatewayRef)

	// webhook before the charge is actually paid: verification fails,
	// order stays pending
	_, err = f.svc.ConfirmGatewayPayment(context.Background(), res.Order.GatewayRef,
		res.Order.TotalKobo, domain.Currency)
	assert.ErrorIs(t, err, domain.ErrValidation)
	order, err := f.orders.GetByReference(res.Order.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)

	f.gateway.Confirm(res.Order.GatewayRef, res.Order.TotalKobo)

	settled, err := f.svc.ConfirmGatewayPayment(context.Background(), res.Order.GatewayRef,
		res.Order.TotalKobo, domain.Currency)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, settled.Status)

	units, err := f.inventory.UnitsByOrder(res.Order.Reference)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.True(t, units[0].Sold)

	// a duplicate webhook settles nothing
	_, err = f.svc.ConfirmGatewayPayment(context.Background(), res.Order.GatewayRef,
		res.Order.TotalKobo, domain.Currency)
	assert.ErrorIs(t, err, repository.ErrAlreadySettled)
}

func TestConfirmGatewayPaymentAmountMismatch(t *testing.T) {
	f := setupOrderTest(t)
	f.stock(t, 1)

	res, err := f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 1, Method: domain.MethodGateway,
	})
	require.NoError(t, err)
	f.gateway.Confirm(res.Order.GatewayRef, res.Order.TotalKobo)

	_, err = f.svc.ConfirmGatewayPayment(context.Background(), res.Order.GatewayRef,
		res.Order.TotalKobo-1, domain.Currency)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.ConfirmGatewayPayment(context.Background(), res.Order.GatewayRef,
		res.Order.TotalKobo, "USD")
	assert.ErrorIs(t, err, domain.ErrValidation)

	order, err := f.orders.GetByReference(res.Order.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
}

func TestSellCreatesPendingOrder(t *testing.T) {
	f := setupOrderTest(t)

	order, err := f.svc.Sell(SellInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 2, CardCode: "XXXX-YYYY",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, money.Total(100000, 2, 8500), order.TotalKobo)
	assert.Equal(t, int64(170000), order.TotalKobo)

	// nothing moves before review
	assert.Equal(t, int64(0), f.balance(t))
}

func TestSellValidation(t *testing.T) {
	f := setupOrderTest(t)

	_, err := f.svc.Sell(SellInput{UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 0, CardCode: "X"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Sell(SellInput{UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrValidation, "card code or image required")

	require.NoError(t, f.db.Model(&models.GiftcardVariant{}).Where("id = ?", f.variant.ID).
		UpdateColumn("active", false).Error)
	_, err = f.svc.Sell(SellInput{UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 1, CardCode: "X"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCodesForOrderOwnershipAndStatus(t *testing.T) {
	f := setupOrderTest(t)
	f.stock(t, 1)
	f.fund(t, 200000)

	res, err := f.svc.Buy(context.Background(), BuyInput{
		UserID: f.user.ID, VariantID: f.variant.ID, Quantity: 1, Method: domain.MethodWallet,
	})
	require.NoError(t, err)

	codes, err := f.svc.CodesForOrder(f.user.ID, res.Order.Reference)
	require.NoError(t, err)
	assert.Len(t, codes, 1)

	_, err = f.svc.CodesForOrder(f.user.ID+1, res.Order.Reference)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
