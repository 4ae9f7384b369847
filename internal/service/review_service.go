package service

import (
	"errors"
	"fmt"

	"giftpay/internal/domain"
	"giftpay/internal/models"
	"giftpay/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrAlreadyReviewed guards against double-clicks and duplicate review
// submissions: a terminal order cannot be reviewed again.
var ErrAlreadyReviewed = errors.New("transaction already reviewed")

// ReviewService is the admin review workflow. Approve and Reject run their
// status flip and the compensating ledger/inventory effects inside one
// database transaction, so a review either fully applies or not at all.
type ReviewService struct {
	db     *gorm.DB
	events *EventService
	audits *repository.AuditLogRepository
	log    *logrus.Logger
}

func NewReviewService(db *gorm.DB, events *EventService, audits *repository.AuditLogRepository, log *logrus.Logger) *ReviewService {
	return &ReviewService{db: db, events: events, audits: audits, log: log}
}

// Approve completes a pending order. Sell orders credit the seller's
// wallet; manual-transfer buys settle the pending fund and apply the
// matching purchase before the units are finalized.
func (s *ReviewService) Approve(adminID uint, reference string) (*models.GiftcardTransaction, error) {
	var approved *models.GiftcardTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		ledger := repository.NewLedgerRepository(tx)
		inventory := repository.NewInventoryRepository(tx)

		order, err := orders.GetByReference(reference)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: unknown order %s", domain.ErrValidation, reference)
		}
		if err != nil {
			return err
		}
		// Gateway buys settle only through the verified webhook. Approving
		// one here would fulfil an order the gateway never confirmed.
		if order.Type == domain.OrderTypeBuy && order.PaymentMethod == domain.MethodGateway {
			return fmt.Errorf("%w: gateway order %s settles via the payment webhook", domain.ErrValidation, reference)
		}
		ok, err := orders.Transition(order.ID, domain.StatusPending, domain.StatusCompleted, nil)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyReviewed
		}

		switch order.Type {
		case domain.OrderTypeSell:
			wt, err := ledger.ApplyEntry(order.UserID, order.TotalKobo, domain.WalletTxFund, repository.EntryMeta{
				PaymentMethod: domain.MethodWallet,
				Description:   "gift card sale payout " + reference,
			})
			if err != nil {
				return err
			}
			if err := tx.Model(&models.GiftcardTransaction{}).Where("id = ?", order.ID).
				UpdateColumn("wallet_tx_ref", wt.Reference).Error; err != nil {
				return err
			}
		case domain.OrderTypeBuy:
			if order.WalletTxRef != "" {
				if _, err := ledger.SettlePending(order.WalletTxRef, true); err != nil {
					return err
				}
				if _, err := ledger.ApplyEntry(order.UserID, -order.TotalKobo, domain.WalletTxPurchase, repository.EntryMeta{
					PaymentMethod: order.PaymentMethod,
					Description:   "gift card purchase " + reference,
				}); err != nil {
					return err
				}
			}
			if err := inventory.MarkOrderSold(order.Reference); err != nil {
				return err
			}
		}
		approved, err = orders.GetByReference(reference)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit(adminID, "order_approved", approved.Reference, "")
	s.events.TransactionCompleted(approved.UserID, approved.TotalKobo, approved.Reference)
	s.log.WithFields(logrus.Fields{"reference": reference, "admin_id": adminID}).Info("order approved")
	return approved, nil
}

// Reject terminates a pending order. Buy orders release their held units
// and void any pending fund leg; sell orders only record the reason.
func (s *ReviewService) Reject(adminID uint, reference, reason string) (*models.GiftcardTransaction, error) {
	var rejected *models.GiftcardTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		ledger := repository.NewLedgerRepository(tx)
		inventory := repository.NewInventoryRepository(tx)

		order, err := orders.GetByReference(reference)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: unknown order %s", domain.ErrValidation, reference)
		}
		if err != nil {
			return err
		}
		ok, err := orders.Transition(order.ID, domain.StatusPending, domain.StatusRejected,
			map[string]interface{}{"rejection_reason": reason})
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyReviewed
		}
		if order.Type == domain.OrderTypeBuy {
			if err := inventory.ReleaseOrder(order.Reference); err != nil {
				return err
			}
			if order.WalletTxRef != "" {
				if _, err := ledger.SettlePending(order.WalletTxRef, false); err != nil {
					return err
				}
			}
		}
		rejected, err = orders.GetByReference(reference)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit(adminID, "order_rejected", rejected.Reference, reason)
	s.events.TransactionRejected(rejected.UserID, rejected.TotalKobo, rejected.Reference, reason)
	s.log.WithFields(logrus.Fields{"reference": reference, "admin_id": adminID}).Info("order rejected")
	return rejected, nil
}

// SettleFunding reviews a pending manual wallet funding.
func (s *ReviewService) SettleFunding(adminID uint, reference string, approve bool) (*models.WalletTransaction, error) {
	ledger := repository.NewLedgerRepository(s.db)
	settled, err := ledger.SettlePending(reference, approve)
	if err != nil {
		return nil, err
	}
	action := "funding_rejected"
	if approve {
		action = "funding_approved"
		s.events.WalletFunded(settled.UserID, settled.AmountKobo, reference)
	}
	s.audit(adminID, action, reference, "")
	return settled, nil
}

func (s *ReviewService) audit(adminID uint, action, resourceID, detail string) {
	err := s.audits.Create(&models.AuditLog{
		UserID:     &adminID,
		Action:     action,
		Resource:   "transaction",
		ResourceID: resourceID,
		Detail:     detail,
	})
	if err != nil {
		s.log.WithField("action", action).WithError(err).Warn("failed to write audit log")
	}
}
