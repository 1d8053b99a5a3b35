package search

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"homestash/internal/auth"
	"homestash/internal/common"
)

// Handler handles HTTP requests for item search
type Handler struct {
	engine *Engine
}

// NewHandler creates a new search handler
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes wires the advanced endpoint and one route per attribute
// under the items group.
func (h *Handler) RegisterRoutes(items *gin.RouterGroup) {
	items.GET("", h.Advanced)
	for _, name := range AttributeNames() {
		items.GET("/"+name, h.attributeHandler(name))
	}
}

// attributeHandler serves GET /api/items/<attr>?q=[&autocomplete=1] in both
// response modes.
func (h *Handler) attributeHandler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := auth.FromContext(c)
		query := c.Query("q")

		if isAutocomplete(c) {
			values, err := h.engine.AttributeValues(name, query, principal)
			if err != nil {
				common.AbortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, values)
			return
		}

		records, err := h.engine.SearchAttribute(name, query, principal)
		if err != nil {
			common.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// Advanced serves GET /api/items with the combinable range predicates
func (h *Handler) Advanced(c *gin.Context) {
	query, err := parseAdvancedQuery(c)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	records, err := h.engine.Advanced(*query, auth.FromContext(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// parseAdvancedQuery reads each parameter with its own dedicated parser;
// nothing is reflected or cast generically.
func parseAdvancedQuery(c *gin.Context) (*AdvancedQuery, error) {
	query := &AdvancedQuery{TagPartial: c.Query("tag_partial")}

	var err error
	if query.PriceMin, err = parseFloatParam(c, "price_min"); err != nil {
		return nil, err
	}
	if query.PriceMax, err = parseFloatParam(c, "price_max"); err != nil {
		return nil, err
	}
	if query.After, err = parseDateParam(c, "after"); err != nil {
		return nil, err
	}
	if query.Before, err = parseDateParam(c, "before"); err != nil {
		return nil, err
	}
	return query, nil
}

func parseFloatParam(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, common.NewValidationError("%s must be a number", name)
	}
	return &value, nil
}

func parseDateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	parsed, err := common.ParseDate(&raw)
	if err != nil {
		return nil, common.NewValidationError("%s must be a %s date", name, common.DateLayout)
	}
	return parsed, nil
}

func isAutocomplete(c *gin.Context) bool {
	flag := c.Query("autocomplete")
	return flag == "1" || flag == "true"
}
