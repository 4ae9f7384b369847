package handler

import (
	"net/http"

	"giftpay/internal/middleware"
	"giftpay/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletSvc *service.WalletService
}

func NewWalletHandler(walletSvc *service.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetBalance returns the current user's wallet balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	acct, err := h.walletSvc.Balance(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance_kobo": acct.BalanceKobo,
		"currency":     acct.Currency,
	})
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	rows, err := h.walletSvc.History(userID, 50)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": rows})
}

type fundManualReq struct {
	AmountKobo int64  `json:"amount_kobo" binding:"required"`
	ProofURL   string `json:"proof_url" binding:"required"`
}

// FundManual records a bank-transfer funding awaiting admin review.
func (h *WalletHandler) FundManual(c *gin.Context) {
	var req fundManualReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_kobo and proof_url required"})
		return
	}
	wt, err := h.walletSvc.FundManual(middleware.GetUserID(c), req.AmountKobo, req.ProofURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": wt})
}

type fundGatewayReq struct {
	AmountKobo int64 `json:"amount_kobo" binding:"required"`
}

// FundGateway starts a card charge; the wallet is credited by the webhook.
func (h *WalletHandler) FundGateway(c *gin.Context) {
	var req fundGatewayReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_kobo required"})
		return
	}
	wt, checkoutURL, err := h.walletSvc.FundGateway(c.Request.Context(), middleware.GetUserID(c), req.AmountKobo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": wt, "checkout_url": checkoutURL})
}
