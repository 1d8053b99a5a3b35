package inventory

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homestash/internal/auth"
	"homestash/internal/common"
)

// Handler handles HTTP requests for item mutations
type Handler struct {
	service *Service
}

// NewHandler creates a new inventory handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UpsertItem creates or updates an item
// POST /api/items
func (h *Handler) UpsertItem(c *gin.Context) {
	var req UpsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id, created, err := h.service.UpsertItem(req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"id": id})
}

// DeleteItem removes an item, admin only
// DELETE /api/items?id=<id>
func (h *Handler) DeleteItem(c *gin.Context) {
	if !auth.FromContext(c).IsAdmin() {
		// 400, not 403: long-standing contract with the browser client
		common.AbortWithError(c, common.NewAuthorizationError("admin required"))
		return
	}

	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a number"})
		return
	}

	if err := h.service.DeleteItem(uint(id)); err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
