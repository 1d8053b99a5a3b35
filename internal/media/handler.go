package media

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homestash/internal/auth"
	"homestash/internal/common"
)

// Handler handles HTTP requests for item photos
type Handler struct {
	service *Service
}

// NewHandler creates a new media handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UploadItemPhoto stores a photo for an item, admin only
// PUT /api/items/:id/photo
func (h *Handler) UploadItemPhoto(c *gin.Context) {
	if !auth.FromContext(c).IsAdmin() {
		common.AbortWithError(c, common.NewAuthorizationError("admin required"))
		return
	}

	itemID, err := parseItemID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	contentType := c.ContentType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := h.service.UploadItemPhoto(c.Request.Context(), itemID, contentType, c.Request.Body)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key})
}

// GetItemPhoto streams an item photo
// GET /api/items/:id/photo
func (h *Handler) GetItemPhoto(c *gin.Context) {
	itemID, err := parseItemID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	body, contentType, length, err := h.service.GetItemPhoto(c.Request.Context(), itemID, auth.FromContext(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, length, contentType, body, nil)
}

func parseItemID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
