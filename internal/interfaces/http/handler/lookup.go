package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stockwatch/backend/internal/domain/remote"
	"github.com/stockwatch/backend/internal/interfaces/http/dto"
)

// LookupHandler serves the remote filter lookups (locations, categories) so
// operators can resolve the IDs used when registering jobs.
type LookupHandler struct {
	BaseHandler
	lookup remote.Lookup
}

// NewLookupHandler creates a lookup handler over the remote client
func NewLookupHandler(lookup remote.Lookup) *LookupHandler {
	return &LookupHandler{lookup: lookup}
}

// RegisterRoutes registers the lookup routes
func (h *LookupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/locations", h.ListLocations)
	rg.GET("/categories", h.ListCategories)
}

// ListLocations returns the company's stocking locations
// GET /api/v1/locations
func (h *LookupHandler) ListLocations(c *gin.Context) {
	locations, err := h.lookup.ListLocations(c.Request.Context())
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeUpstream, err.Error())
		return
	}
	h.Success(c, locations)
}

// ListCategories returns the company's product categories
// GET /api/v1/categories
func (h *LookupHandler) ListCategories(c *gin.Context) {
	categories, err := h.lookup.ListCategories(c.Request.Context())
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeUpstream, err.Error())
		return
	}
	h.Success(c, categories)
}
