package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homestash/internal/auth"
	"homestash/internal/common"
)

// Handler handles HTTP requests for catalog entities
type Handler struct {
	service *Service
}

// NewHandler creates a new catalog handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateTag finds or creates a tag by name
// POST /api/tags
func (h *Handler) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	tag, created, err := h.service.CreateTag(req.Name)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"id": tag.ID, "name": tag.Name})
}

// CreateLocation finds or creates a location by (name, parent)
// POST /api/locations
func (h *Handler) CreateLocation(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	location, created, err := h.service.FindOrCreateLocation(req.Name, req.Parent)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"id": location.ID, "name": location.Name})
}

// CreateBattery finds or creates a battery by structural identity
// POST /api/batteries
func (h *Handler) CreateBattery(c *gin.Context) {
	var spec BatterySpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	battery, err := h.service.CreateBattery(spec)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": battery.ID})
}

// UpsertGroup creates or updates an item group
// POST /api/item-group
func (h *Handler) UpsertGroup(c *gin.Context) {
	var req UpsertGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id, created, err := h.service.UpsertGroup(req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"id": id, "created": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "updated": true})
}

// SearchTags returns tag name matches for autocomplete
// GET /api/tags/search?q=
func (h *Handler) SearchTags(c *gin.Context) {
	results, err := h.service.SearchTags(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}

// SearchGroups returns item group name matches for autocomplete
// GET /api/item-group/search?q=
func (h *Handler) SearchGroups(c *gin.Context) {
	results, err := h.service.SearchGroups(c.Query("q"), auth.FromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}

// SearchLocations returns location breadcrumb matches for autocomplete
// GET /api/locations/search?q=
func (h *Handler) SearchLocations(c *gin.Context) {
	results, err := h.service.SearchLocations(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}

// Meta returns the client bootstrap payload
// GET /api/meta
func (h *Handler) Meta(c *gin.Context) {
	resp, err := h.service.Meta(auth.FromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
