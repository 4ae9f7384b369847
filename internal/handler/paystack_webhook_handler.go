package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"giftpay/config"
	"giftpay/internal/models"
	"giftpay/internal/repository"
	"giftpay/internal/service"
	"giftpay/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// paystackEvent is the webhook payload. Amount and currency are untrusted
// until matched against the stored order; the charge is re-verified with
// Paystack before anything settles.
type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

type PaystackWebhookHandler struct {
	cfg       *config.PaystackConfig
	orderSvc  *service.OrderService
	walletSvc *service.WalletService
	audits    *repository.AuditLogRepository
	log       *logrus.Logger
}

func NewPaystackWebhookHandler(cfg *config.PaystackConfig, orderSvc *service.OrderService, walletSvc *service.WalletService, audits *repository.AuditLogRepository, log *logrus.Logger) *PaystackWebhookHandler {
	return &PaystackWebhookHandler{cfg: cfg, orderSvc: orderSvc, walletSvc: walletSvc, audits: audits, log: log}
}

// Handle processes Paystack callbacks. Unknown references, mismatches and
// verification failures are acknowledged with 200 so Paystack stops
// retrying; a pending record stays pending until verification succeeds.
func (h *PaystackWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	signature := c.GetHeader("x-paystack-signature")
	if !payment.ValidSignature(h.cfg.SecretKey, body, signature) {
		h.log.Warn("paystack webhook: bad signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	var event paystackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if event.Event != "charge.success" || event.Data.Reference == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	ref := event.Data.Reference
	log := h.log.WithFields(logrus.Fields{"reference": ref, "amount": event.Data.Amount})

	order, err := h.orderSvc.ConfirmGatewayPayment(c.Request.Context(), ref, event.Data.Amount, event.Data.Currency)
	if err == nil {
		h.audit(order.UserID, "gateway_buy_settled", ref)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		// A 502 on transient verify failures makes Paystack redeliver;
		// permanent outcomes are acked so the retries stop.
		if errors.Is(err, payment.ErrUpstreamUnavailable) {
			log.WithError(err).Warn("paystack webhook: verify unavailable, requesting redelivery")
			c.JSON(http.StatusBadGateway, gin.H{"error": "verification unavailable"})
			return
		}
		log.WithError(err).Warn("paystack webhook: buy settlement not applied")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	// Not a buy order: try wallet funding under the same reference.
	wt, err := h.walletSvc.ConfirmGatewayFunding(c.Request.Context(), ref, event.Data.Amount, event.Data.Currency)
	if err != nil {
		if errors.Is(err, payment.ErrUpstreamUnavailable) {
			log.WithError(err).Warn("paystack webhook: verify unavailable, requesting redelivery")
			c.JSON(http.StatusBadGateway, gin.H{"error": "verification unavailable"})
			return
		}
		log.WithError(err).Warn("paystack webhook: funding settlement not applied")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	h.audit(wt.UserID, "gateway_funding_settled", ref)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaystackWebhookHandler) audit(userID uint, action, ref string) {
	if err := h.audits.Create(&models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "payment",
		ResourceID: ref,
	}); err != nil {
		h.log.WithField("action", action).WithError(err).Warn("failed to write audit log")
	}
}
