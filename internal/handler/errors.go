package handler

import (
	"errors"
	"net/http"
	"strconv"

	"giftpay/internal/domain"
	"giftpay/internal/repository"
	"giftpay/internal/service"
	"giftpay/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps core errors to HTTP statuses with a human-readable
// reason. Anything unmapped is a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient wallet balance"})
	case errors.Is(err, repository.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "out of stock"})
	case errors.Is(err, repository.ErrAlreadySettled):
		c.JSON(http.StatusConflict, gin.H{"error": "transaction already settled"})
	case errors.Is(err, repository.ErrAlreadySold):
		c.JSON(http.StatusConflict, gin.H{"error": "gift card unit already sold"})
	case errors.Is(err, service.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": "transaction already reviewed"})
	case errors.Is(err, repository.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, payment.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable, try again later"})
	case errors.Is(err, repository.ErrInconsistent):
		// invariant violation: surface loudly, never patch over
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger inconsistency detected"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(v), err
}
