package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"giftpay/internal/middleware"
	"giftpay/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	cloud cloudinary.Client
}

func NewUploadHandler(cloud cloudinary.Client) *UploadHandler {
	return &UploadHandler{cloud: cloud}
}

// UploadProof stores a proof-of-payment receipt or card image and returns
// the durable URL. Only the URL is ever persisted by the core.
func (h *UploadHandler) UploadProof(c *gin.Context) {
	userID := middleware.GetUserID(c)
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	folder := "giftpay/proofs/" + strconv.FormatUint(uint64(userID), 10)
	publicID := "proof_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	url, err := h.cloud.UploadProof(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
