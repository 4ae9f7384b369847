package handler

import (
	"net/http"

	"giftpay/internal/middleware"
	"giftpay/internal/models"
	"giftpay/internal/repository"
	"giftpay/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	reviewSvc *service.ReviewService
	walletSvc *service.WalletService
	orders    *repository.OrderRepository
	inventory *repository.InventoryRepository
	brands    *repository.BrandRepository
	audits    *repository.AuditLogRepository
}

func NewAdminHandler(
	reviewSvc *service.ReviewService,
	walletSvc *service.WalletService,
	orders *repository.OrderRepository,
	inventory *repository.InventoryRepository,
	brands *repository.BrandRepository,
	audits *repository.AuditLogRepository,
) *AdminHandler {
	return &AdminHandler{
		reviewSvc: reviewSvc,
		walletSvc: walletSvc,
		orders:    orders,
		inventory: inventory,
		brands:    brands,
		audits:    audits,
	}
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	rows, err := h.orders.ListByStatus(c.Query("status"), 100)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": rows})
}

func (h *AdminHandler) ApproveOrder(c *gin.Context) {
	order, err := h.reviewSvc.Approve(middleware.GetUserID(c), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type rejectReq struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) RejectOrder(c *gin.Context) {
	var req rejectReq
	_ = c.ShouldBindJSON(&req)
	order, err := h.reviewSvc.Reject(middleware.GetUserID(c), c.Param("ref"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type settleFundingReq struct {
	Approve bool `json:"approve"`
}

// SettleFunding reviews a pending manual wallet funding.
func (h *AdminHandler) SettleFunding(c *gin.Context) {
	var req settleFundingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "approve required"})
		return
	}
	wt, err := h.reviewSvc.SettleFunding(middleware.GetUserID(c), c.Param("reference"), req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": wt})
}

type createBrandReq struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url"`
}

func (h *AdminHandler) CreateBrand(c *gin.Context) {
	var req createBrandReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	brand := &models.GiftcardBrand{Name: req.Name, ImageURL: req.ImageURL, Active: true}
	if err := h.brands.Create(brand); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"brand": brand})
}

type createVariantReq struct {
	BrandID       uint   `json:"brand_id" binding:"required"`
	Name          string `json:"name" binding:"required"`
	FaceValueKobo int64  `json:"face_value_kobo" binding:"required"`
	BuyRateBps    int64  `json:"buy_rate_bps"`
	SellRateBps   int64  `json:"sell_rate_bps"`
}

func (h *AdminHandler) CreateVariant(c *gin.Context) {
	var req createVariantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brand_id, name and face_value_kobo required"})
		return
	}
	variant := &models.GiftcardVariant{
		BrandID:       req.BrandID,
		Name:          req.Name,
		FaceValueKobo: req.FaceValueKobo,
		BuyRateBps:    req.BuyRateBps,
		SellRateBps:   req.SellRateBps,
		Active:        true,
	}
	if err := h.brands.CreateVariant(variant); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"variant": variant})
}

type stockReq struct {
	VariantID uint     `json:"variant_id" binding:"required"`
	Codes     []string `json:"codes" binding:"required"`
}

// StockInventory loads a batch of codes for a variant.
func (h *AdminHandler) StockInventory(c *gin.Context) {
	var req stockReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Codes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "variant_id and codes required"})
		return
	}
	variant, err := h.brands.GetVariant(req.VariantID)
	if err != nil {
		respondError(c, err)
		return
	}
	units := make([]models.InventoryUnit, 0, len(req.Codes))
	for _, code := range req.Codes {
		units = append(units, models.InventoryUnit{
			BrandID:       variant.BrandID,
			VariantID:     variant.ID,
			FaceValueKobo: variant.FaceValueKobo,
			RateBps:       variant.BuyRateBps,
			Code:          code,
		})
	}
	if err := h.inventory.AddUnits(units); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stocked": len(units)})
}

func (h *AdminHandler) ListAudit(c *gin.Context) {
	rows, err := h.audits.List(100)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": rows})
}

// CheckWallet runs the ledger consistency probe for a user.
func (h *AdminHandler) CheckWallet(c *gin.Context) {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	if err := h.walletSvc.CheckConsistency(userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consistent": true})
}
