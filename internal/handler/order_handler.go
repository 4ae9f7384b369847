package handler

import (
	"net/http"

	"giftpay/internal/middleware"
	"giftpay/internal/repository"
	"giftpay/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderSvc *service.OrderService
	orders   *repository.OrderRepository
}

func NewOrderHandler(orderSvc *service.OrderService, orders *repository.OrderRepository) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc, orders: orders}
}

type sellReq struct {
	VariantID uint   `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	CardCode  string `json:"card_code"`
	ProofURL  string `json:"proof_url"`
}

// Sell submits a card for cash. The order stays pending until an admin
// verifies the card.
func (h *OrderHandler) Sell(c *gin.Context) {
	var req sellReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "variant_id and quantity required"})
		return
	}
	order, err := h.orderSvc.Sell(service.SellInput{
		UserID:    middleware.GetUserID(c),
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		CardCode:  req.CardCode,
		ProofURL:  req.ProofURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

type buyReq struct {
	VariantID uint   `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Method    string `json:"method" binding:"required"` // WALLET | MANUAL_TRANSFER | GATEWAY
	ProofURL  string `json:"proof_url"`
}

func (h *OrderHandler) Buy(c *gin.Context) {
	var req buyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "variant_id, quantity and method required"})
		return
	}
	result, err := h.orderSvc.Buy(c.Request.Context(), service.BuyInput{
		UserID:    middleware.GetUserID(c),
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		Method:    req.Method,
		ProofURL:  req.ProofURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"order": result.Order}
	if len(result.Codes) > 0 {
		resp["codes"] = result.Codes
	}
	if result.CheckoutURL != "" {
		resp["checkout_url"] = result.CheckoutURL
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	rows, err := h.orders.ListByUser(middleware.GetUserID(c), 50)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": rows})
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.GetByReference(c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	if order.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Codes returns the secrets of a completed buy order.
func (h *OrderHandler) Codes(c *gin.Context) {
	codes, err := h.orderSvc.CodesForOrder(middleware.GetUserID(c), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}
