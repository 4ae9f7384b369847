package service

import (
	"context"
	"fmt"
	"time"

	"giftpay/internal/domain"
	"giftpay/internal/models"
	"giftpay/internal/repository"
	"giftpay/pkg/payment"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// WalletService handles wallet funding. Manual transfers wait for admin
// review; gateway charges wait for the webhook.
type WalletService struct {
	ledger        *repository.LedgerRepository
	users         *repository.UserRepository
	gateway       payment.Provider
	events        *EventService
	log           *logrus.Logger
	callbackURL   string
	verifyTimeout time.Duration
}

func NewWalletService(
	ledger *repository.LedgerRepository,
	users *repository.UserRepository,
	gateway payment.Provider,
	events *EventService,
	log *logrus.Logger,
	callbackURL string,
	verifyTimeout time.Duration,
) *WalletService {
	if verifyTimeout <= 0 {
		verifyTimeout = 15 * time.Second
	}
	return &WalletService{
		ledger:        ledger,
		users:         users,
		gateway:       gateway,
		events:        events,
		log:           log,
		callbackURL:   callbackURL,
		verifyTimeout: verifyTimeout,
	}
}

func (s *WalletService) Balance(userID uint) (*models.WalletAccount, error) {
	return s.ledger.GetOrCreate(userID)
}

func (s *WalletService) History(userID uint, limit int) ([]models.WalletTransaction, error) {
	return s.ledger.ListByUser(userID, limit)
}

// FundManual records a pending fund awaiting proof review. The balance is
// untouched until an admin settles it.
func (s *WalletService) FundManual(userID uint, amountKobo int64, proofURL string) (*models.WalletTransaction, error) {
	if amountKobo <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if proofURL == "" {
		return nil, fmt.Errorf("%w: proof of payment required", domain.ErrValidation)
	}
	wt, err := s.ledger.RecordPending(userID, amountKobo, domain.WalletTxFund, repository.EntryMeta{
		PaymentMethod: domain.MethodManualTransfer,
		Description:   "wallet funding via bank transfer",
		ProofURL:      proofURL,
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "reference": wt.Reference,
		"amount_kobo": amountKobo}).Info("manual funding recorded")
	return wt, nil
}

// FundGateway starts a card charge for wallet funding and records the
// pending fund under the same reference the webhook will report.
func (s *WalletService) FundGateway(ctx context.Context, userID uint, amountKobo int64) (*models.WalletTransaction, string, error) {
	if amountKobo <= 0 {
		return nil, "", fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, "", err
	}
	ref := uuid.NewString()
	wt, err := s.ledger.RecordPending(userID, amountKobo, domain.WalletTxFund, repository.EntryMeta{
		PaymentMethod: domain.MethodGateway,
		Description:   "wallet funding via card",
		Reference:     ref,
	})
	if err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.InitiateCharge(ctx, payment.ChargeRequest{
		Reference:   ref,
		Email:       user.Email,
		AmountKobo:  amountKobo,
		Currency:    domain.Currency,
		Description: "wallet funding",
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		// do not leave an unfundable pending row behind
		if _, serr := s.ledger.SettlePending(ref, false); serr != nil {
			s.log.WithField("reference", ref).WithError(serr).Error("failed to void pending funding")
		}
		return nil, "", err
	}
	return wt, resp.CheckoutURL, nil
}

// ConfirmGatewayFunding settles a pending gateway funding after a webhook,
// with the same untrusted-payload rules as gateway buys.
func (s *WalletService) ConfirmGatewayFunding(ctx context.Context, reference string, amountKobo int64, currency string) (*models.WalletTransaction, error) {
	wt, err := s.ledger.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if wt.Type != domain.WalletTxFund || wt.PaymentMethod != domain.MethodGateway {
		return nil, fmt.Errorf("%w: reference %s is not a gateway funding", domain.ErrValidation, reference)
	}
	if amountKobo != wt.AmountKobo || currency != domain.Currency {
		return nil, fmt.Errorf("%w: webhook amount or currency does not match funding %s", domain.ErrValidation, reference)
	}
	vctx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()
	verified, err := s.gateway.VerifyCharge(vctx, reference)
	if err != nil {
		return nil, err
	}
	if !verified.Success || verified.AmountKobo != wt.AmountKobo || verified.Currency != domain.Currency {
		return nil, fmt.Errorf("%w: gateway did not confirm charge %s", domain.ErrValidation, reference)
	}
	settled, err := s.ledger.SettlePending(reference, true)
	if err != nil {
		return nil, err
	}
	s.events.WalletFunded(settled.UserID, settled.AmountKobo, reference)
	s.log.WithField("reference", reference).Info("gateway funding settled")
	return settled, nil
}

// CheckConsistency re-derives the balance from the ledger; a mismatch is
// surfaced, never repaired.
func (s *WalletService) CheckConsistency(userID uint) error {
	return s.ledger.CheckConsistency(userID)
}
