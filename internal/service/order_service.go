package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giftpay/internal/domain"
	"giftpay/internal/models"
	"giftpay/internal/repository"
	"giftpay/pkg/money"
	"giftpay/pkg/payment"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderService orchestrates buy and sell orders. For buys, inventory is
// reserved before payment settles so a charged user always has units held,
// and units are marked sold only after settlement succeeds. Any failure
// mid-flight releases everything reserved for the order before the error
// surfaces.
type OrderService struct {
	ledger        *repository.LedgerRepository
	inventory     *repository.InventoryRepository
	orders        *repository.OrderRepository
	brands        *repository.BrandRepository
	users         *repository.UserRepository
	gateway       payment.Provider
	events        *EventService
	log           *logrus.Logger
	callbackURL   string
	verifyTimeout time.Duration
}

func NewOrderService(
	ledger *repository.LedgerRepository,
	inventory *repository.InventoryRepository,
	orders *repository.OrderRepository,
	brands *repository.BrandRepository,
	users *repository.UserRepository,
	gateway payment.Provider,
	events *EventService,
	log *logrus.Logger,
	callbackURL string,
	verifyTimeout time.Duration,
) *OrderService {
	if verifyTimeout <= 0 {
		verifyTimeout = 15 * time.Second
	}
	return &OrderService{
		ledger:        ledger,
		inventory:     inventory,
		orders:        orders,
		brands:        brands,
		users:         users,
		gateway:       gateway,
		events:        events,
		log:           log,
		callbackURL:   callbackURL,
		verifyTimeout: verifyTimeout,
	}
}

type SellInput struct {
	UserID    uint
	VariantID uint
	Quantity  int
	CardCode  string
	ProofURL  string // photo of the physical card
}

// Sell records a pending sell order. Nothing moves in the ledger or the
// inventory until an admin verifies the surrendered card and approves.
func (s *OrderService) Sell(in SellInput) (*models.GiftcardTransaction, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	if in.CardCode == "" && in.ProofURL == "" {
		return nil, fmt.Errorf("%w: card code or card image required", domain.ErrValidation)
	}
	variant, err := s.activeVariant(in.VariantID)
	if err != nil {
		return nil, err
	}
	if variant.SellRateBps <= 0 {
		return nil, fmt.Errorf("%w: selling is disabled for this card", domain.ErrValidation)
	}
	order := &models.GiftcardTransaction{
		Reference:      uuid.NewString(),
		UserID:         in.UserID,
		Type:           domain.OrderTypeSell,
		BrandID:        variant.BrandID,
		VariantID:      variant.ID,
		VariantName:    variant.Name,
		Quantity:       in.Quantity,
		UnitAmountKobo: variant.FaceValueKobo,
		RateBps:        variant.SellRateBps,
		TotalKobo:      money.Total(variant.FaceValueKobo, in.Quantity, variant.SellRateBps),
		Status:         domain.StatusPending,
		PaymentMethod:  domain.MethodWallet,
		CardCode:       in.CardCode,
		ProofURL:       in.ProofURL,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"reference": order.Reference, "user_id": in.UserID,
		"total_kobo": order.TotalKobo}).Info("sell order created")
	return order, nil
}

type BuyInput struct {
	UserID    uint
	VariantID uint
	Quantity  int
	Method    string
	ProofURL  string // required for manual transfer
}

type BuyResult struct {
	Order       *models.GiftcardTransaction
	Codes       []string // delivered immediately on completed orders
	CheckoutURL string   // gateway checkout, pending orders only
}

// Buy runs the full buy flow: validate, reserve inventory, settle payment,
// record the order. A completed order delivers its codes; a pending one
// waits for admin review or the gateway webhook.
func (s *OrderService) Buy(ctx context.Context, in BuyInput) (*BuyResult, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	switch in.Method {
	case domain.MethodWallet, domain.MethodGateway:
	case domain.MethodManualTransfer:
		if in.ProofURL == "" {
			return nil, fmt.Errorf("%w: proof of payment required for manual transfer", domain.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, in.Method)
	}
	variant, err := s.activeVariant(in.VariantID)
	if err != nil {
		return nil, err
	}
	if variant.BuyRateBps <= 0 {
		return nil, fmt.Errorf("%w: this card is not for sale", domain.ErrValidation)
	}

	// Advisory pre-check; ReserveUnit remains the authority.
	available, err := s.inventory.CountAvailable(variant.BrandID, variant.ID)
	if err != nil {
		return nil, err
	}
	if available < int64(in.Quantity) {
		return nil, repository.ErrOutOfStock
	}

	ref := uuid.NewString()
	units := make([]models.InventoryUnit, 0, in.Quantity)
	for i := 0; i < in.Quantity; i++ {
		unit, err := s.inventory.ReserveUnit(variant.BrandID, variant.ID, ref)
		if err != nil {
			s.releaseOrder(ref)
			return nil, err
		}
		units = append(units, *unit)
	}

	total := money.Total(variant.FaceValueKobo, in.Quantity, variant.BuyRateBps)
	order := &models.GiftcardTransaction{
		Reference:      ref,
		UserID:         in.UserID,
		Type:           domain.OrderTypeBuy,
		BrandID:        variant.BrandID,
		VariantID:      variant.ID,
		VariantName:    variant.Name,
		Quantity:       in.Quantity,
		UnitAmountKobo: variant.FaceValueKobo,
		RateBps:        variant.BuyRateBps,
		TotalKobo:      total,
		PaymentMethod:  in.Method,
	}

	var checkoutURL string
	switch in.Method {
	case domain.MethodWallet:
		wt, err := s.ledger.ApplyEntry(in.UserID, -total, domain.WalletTxPurchase, repository.EntryMeta{
			PaymentMethod: domain.MethodWallet,
			Description:   "gift card purchase " + variant.Name,
		})
		if err != nil {
			s.releaseOrder(ref)
			return nil, err
		}
		order.Status = domain.StatusCompleted
		order.WalletTxRef = wt.Reference

	case domain.MethodManualTransfer:
		// The pending FUND leg models the incoming bank transfer; approval
		// settles it and applies the matching purchase debit.
		wt, err := s.ledger.RecordPending(in.UserID, total, domain.WalletTxFund, repository.EntryMeta{
			PaymentMethod: domain.MethodManualTransfer,
			Description:   "manual transfer for order " + ref,
			ProofURL:      in.ProofURL,
		})
		if err != nil {
			s.releaseOrder(ref)
			return nil, err
		}
		order.Status = domain.StatusPending
		order.WalletTxRef = wt.Reference
		order.ProofURL = in.ProofURL

	case domain.MethodGateway:
		user, err := s.users.GetByID(in.UserID)
		if err != nil {
			s.releaseOrder(ref)
			return nil, err
		}
		resp, err := s.gateway.InitiateCharge(ctx, payment.ChargeRequest{
			Reference:   ref,
			Email:       user.Email,
			AmountKobo:  total,
			Currency:    domain.Currency,
			Description: "gift card purchase " + variant.Name,
			CallbackURL: s.callbackURL,
		})
		if err != nil {
			s.releaseOrder(ref)
			return nil, err
		}
		order.Status = domain.StatusPending
		order.GatewayRef = resp.Reference
		checkoutURL = resp.CheckoutURL
	}

	if err := s.orders.Create(order); err != nil {
		if in.Method == domain.MethodWallet {
			if _, rerr := s.ledger.ApplyEntry(in.UserID, total, domain.WalletTxRefund, repository.EntryMeta{
				PaymentMethod: domain.MethodWallet,
				Description:   "reversal of failed order " + ref,
			}); rerr != nil {
				s.log.WithField("reference", ref).WithError(rerr).Error("failed to reverse wallet debit")
			}
		}
		s.releaseOrder(ref)
		return nil, err
	}

	result := &BuyResult{Order: order, CheckoutURL: checkoutURL}
	if order.Status == domain.StatusCompleted {
		// Units are consumed only now that payment is settled.
		if err := s.inventory.MarkOrderSold(ref); err != nil {
			s.log.WithField("reference", ref).WithError(err).Error("failed to mark units sold")
		}
		for _, u := range units {
			result.Codes = append(result.Codes, u.Code)
		}
		s.events.TransactionCompleted(in.UserID, total, ref)
	}
	s.log.WithFields(logrus.Fields{"reference": ref, "user_id": in.UserID, "method": in.Method,
		"status": order.Status, "total_kobo": total}).Info("buy order recorded")
	return result, nil
}

// ConfirmGatewayPayment settles a pending gateway buy after a webhook. The
// payload amount and currency are untrusted until they match the stored
// order, and the charge is re-verified with the gateway before anything
// settles. Verification failure leaves the order pending.
func (s *OrderService) ConfirmGatewayPayment(ctx context.Context, reference string, amountKobo int64, currency string) (*models.GiftcardTransaction, error) {
	order, err := s.orders.GetByGatewayRef(reference)
	if err != nil {
		return nil, err
	}
	if amountKobo != order.TotalKobo || currency != domain.Currency {
		return nil, fmt.Errorf("%w: webhook amount or currency does not match order %s", domain.ErrValidation, order.Reference)
	}
	vctx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()
	verified, err := s.gateway.VerifyCharge(vctx, reference)
	if err != nil {
		return nil, err
	}
	if !verified.Success || verified.AmountKobo != order.TotalKobo || verified.Currency != domain.Currency {
		return nil, fmt.Errorf("%w: gateway did not confirm charge %s", domain.ErrValidation, reference)
	}
	ok, err := s.orders.Transition(order.ID, domain.StatusPending, domain.StatusCompleted, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrAlreadySettled
	}
	if err := s.inventory.MarkOrderSold(order.Reference); err != nil {
		return nil, err
	}
	s.events.TransactionCompleted(order.UserID, order.TotalKobo, order.Reference)
	s.log.WithField("reference", order.Reference).Info("gateway buy settled")
	return s.orders.GetByReference(order.Reference)
}

// CodesForOrder returns the secret codes of a completed buy order.
func (s *OrderService) CodesForOrder(userID uint, reference string) ([]string, error) {
	order, err := s.orders.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID || order.Type != domain.OrderTypeBuy || order.Status != domain.StatusCompleted {
		return nil, fmt.Errorf("%w: no codes available for this order", domain.ErrValidation)
	}
	units, err := s.inventory.UnitsByOrder(reference)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(units))
	for _, u := range units {
		codes = append(codes, u.Code)
	}
	return codes, nil
}

func (s *OrderService) releaseOrder(ref string) {
	if err := s.inventory.ReleaseOrder(ref); err != nil {
		s.log.WithField("reference", ref).WithError(err).Error("failed to release reserved units")
	}
}

func (s *OrderService) activeVariant(variantID uint) (*models.GiftcardVariant, error) {
	variant, err := s.brands.GetVariant(variantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unknown gift card variant", domain.ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	if !variant.Active || variant.FaceValueKobo <= 0 {
		return nil, fmt.Errorf("%w: this gift card is unavailable", domain.ErrValidation)
	}
	return variant, nil
}
