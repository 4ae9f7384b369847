package handler

import (
	"net/http"
	"strconv"

	"giftpay/internal/repository"

	"github.com/gin-gonic/gin"
)

type GiftcardHandler struct {
	brands    *repository.BrandRepository
	inventory *repository.InventoryRepository
}

func NewGiftcardHandler(brands *repository.BrandRepository, inventory *repository.InventoryRepository) *GiftcardHandler {
	return &GiftcardHandler{brands: brands, inventory: inventory}
}

func (h *GiftcardHandler) ListBrands(c *gin.Context) {
	brands, err := h.brands.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// Availability returns the advisory stock count for a variant. The count
// may be stale by the time an order runs; reservation is the authority.
func (h *GiftcardHandler) Availability(c *gin.Context) {
	brandID, err1 := strconv.ParseUint(c.Query("brand_id"), 10, 32)
	variantID, err2 := strconv.ParseUint(c.Query("variant_id"), 10, 32)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brand_id and variant_id required"})
		return
	}
	count, err := h.inventory.CountAvailable(uint(brandID), uint(variantID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": count})
}
