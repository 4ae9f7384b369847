package repository

import (
	"errors"
	"fmt"

	"giftpay/internal/domain"
	"giftpay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrWalletNotFound    = errors.New("wallet account not found")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrAlreadySettled    = errors.New("wallet transaction already settled")
	// ErrInconsistent means the stored balance no longer matches the sum of
	// completed ledger rows. It is never repaired silently.
	ErrInconsistent = errors.New("wallet balance does not match ledger")
)

// LedgerRepository is the only writer of wallet balances. Every balance
// change goes through a conditional update paired with an appended
// WalletTransaction in one database transaction.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// EntryMeta carries the descriptive fields of a ledger entry.
type EntryMeta struct {
	PaymentMethod string
	Description   string
	ProofURL      string
	Reference     string // generated when empty
}

func (r *LedgerRepository) GetAccount(userID uint) (*models.WalletAccount, error) {
	var acct models.WalletAccount
	err := r.db.Where("user_id = ?", userID).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *LedgerRepository) GetOrCreate(userID uint) (*models.WalletAccount, error) {
	acct, err := r.GetAccount(userID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, ErrWalletNotFound) {
		return nil, err
	}
	acct = &models.WalletAccount{UserID: userID, Currency: domain.Currency}
	if err := r.db.Create(acct).Error; err != nil {
		return nil, err
	}
	return acct, nil
}

func (r *LedgerRepository) GetBalance(userID uint) (int64, error) {
	acct, err := r.GetAccount(userID)
	if err != nil {
		return 0, err
	}
	return acct.BalanceKobo, nil
}

// ApplyEntry atomically adjusts the balance by deltaKobo and appends a
// COMPLETED WalletTransaction. A debit that would take the balance negative
// fails with ErrInsufficientFunds and leaves nothing behind.
func (r *LedgerRepository) ApplyEntry(userID uint, deltaKobo int64, txType string, meta EntryMeta) (*models.WalletTransaction, error) {
	if deltaKobo > 0 {
		if _, err := r.GetOrCreate(userID); err != nil {
			return nil, err
		}
	}
	ref := meta.Reference
	if ref == "" {
		ref = uuid.NewString()
	}
	var entry *models.WalletTransaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WalletAccount{}).
			Where("user_id = ? AND balance_kobo + ? >= 0", userID, deltaKobo).
			UpdateColumn("balance_kobo", gorm.Expr("balance_kobo + ?", deltaKobo))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.WalletAccount{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrWalletNotFound
			}
			return ErrInsufficientFunds
		}
		var acct models.WalletAccount
		if err := tx.Where("user_id = ?", userID).First(&acct).Error; err != nil {
			return err
		}
		amount := deltaKobo
		if amount < 0 {
			amount = -amount
		}
		balanceAfter := acct.BalanceKobo
		entry = &models.WalletTransaction{
			UserID:           userID,
			Type:             txType,
			AmountKobo:       amount,
			Status:           domain.StatusCompleted,
			PaymentMethod:    meta.PaymentMethod,
			Reference:        ref,
			Description:      meta.Description,
			BalanceAfterKobo: &balanceAfter,
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordPending appends a PENDING WalletTransaction without touching the
// balance. Used for settlements awaiting proof review or a gateway webhook.
func (r *LedgerRepository) RecordPending(userID uint, amountKobo int64, txType string, meta EntryMeta) (*models.WalletTransaction, error) {
	if amountKobo <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if _, err := r.GetOrCreate(userID); err != nil {
		return nil, err
	}
	ref := meta.Reference
	if ref == "" {
		ref = uuid.NewString()
	}
	entry := &models.WalletTransaction{
		UserID:        userID,
		Type:          txType,
		AmountKobo:    amountKobo,
		Status:        domain.StatusPending,
		PaymentMethod: meta.PaymentMethod,
		Reference:     ref,
		Description:   meta.Description,
		ProofURL:      meta.ProofURL,
	}
	if err := r.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// SettlePending moves a pending transaction to COMPLETED (applying the
// balance delta) or REJECTED (no balance effect). A second call on the same
// reference fails with ErrAlreadySettled; the delta is never applied twice.
func (r *LedgerRepository) SettlePending(reference string, approve bool) (*models.WalletTransaction, error) {
	var settled models.WalletTransaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var wt models.WalletTransaction
		if err := tx.Where("reference = ?", reference).First(&wt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown reference %s", domain.ErrValidation, reference)
			}
			return err
		}
		newStatus := domain.StatusRejected
		if approve {
			newStatus = domain.StatusCompleted
		}
		res := tx.Model(&models.WalletTransaction{}).
			Where("id = ? AND status = ?", wt.ID, domain.StatusPending).
			UpdateColumn("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySettled
		}
		if approve {
			delta := signedDelta(wt.Type, wt.AmountKobo)
			upd := tx.Model(&models.WalletAccount{}).
				Where("user_id = ? AND balance_kobo + ? >= 0", wt.UserID, delta).
				UpdateColumn("balance_kobo", gorm.Expr("balance_kobo + ?", delta))
			if upd.Error != nil {
				return upd.Error
			}
			if upd.RowsAffected == 0 {
				// rolls back the status flip as well
				return ErrInsufficientFunds
			}
			var acct models.WalletAccount
			if err := tx.Where("user_id = ?", wt.UserID).First(&acct).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.WalletTransaction{}).Where("id = ?", wt.ID).
				UpdateColumn("balance_after_kobo", acct.BalanceKobo).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", wt.ID).First(&settled).Error
	})
	if err != nil {
		return nil, err
	}
	return &settled, nil
}

// GetByReference looks up a ledger row by its idempotency reference.
func (r *LedgerRepository) GetByReference(reference string) (*models.WalletTransaction, error) {
	var wt models.WalletTransaction
	if err := r.db.Where("reference = ?", reference).First(&wt).Error; err != nil {
		return nil, err
	}
	return &wt, nil
}

// ListByUser returns the wallet history, newest first.
func (r *LedgerRepository) ListByUser(userID uint, limit int) ([]models.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.WalletTransaction
	err := r.db.Where("user_id = ?", userID).Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// CheckConsistency recomputes the balance from completed ledger rows and
// compares it against the stored balance. A mismatch is fatal and returned
// as ErrInconsistent, never patched over.
func (r *LedgerRepository) CheckConsistency(userID uint) error {
	acct, err := r.GetAccount(userID)
	if err != nil {
		return err
	}
	var credits, debits int64
	err = r.db.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND status = ? AND type IN ?", userID, domain.StatusCompleted,
			[]string{domain.WalletTxFund, domain.WalletTxRefund}).
		Select("COALESCE(SUM(amount_kobo), 0)").Scan(&credits).Error
	if err != nil {
		return err
	}
	err = r.db.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND status = ? AND type IN ?", userID, domain.StatusCompleted,
			[]string{domain.WalletTxPurchase, domain.WalletTxWithdrawal}).
		Select("COALESCE(SUM(amount_kobo), 0)").Scan(&debits).Error
	if err != nil {
		return err
	}
	if credits-debits != acct.BalanceKobo {
		return fmt.Errorf("%w: user %d ledger %d stored %d", ErrInconsistent, userID, credits-debits, acct.BalanceKobo)
	}
	return nil
}

func signedDelta(txType string, amount int64) int64 {
	switch txType {
	case domain.WalletTxFund, domain.WalletTxRefund:
		return amount
	default:
		return -amount
	}
}
