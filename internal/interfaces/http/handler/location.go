package handler

import (
	"github.com/gin-gonic/gin"
	rentalapp "github.com/webdevsha/permitak/internal/application/rental"
)

// LocationHandler serves the location (tapak) screens
type LocationHandler struct {
	BaseHandler
	locations   *rentalapp.LocationService
	assignments *rentalapp.AssignmentService
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locations *rentalapp.LocationService, assignments *rentalapp.AssignmentService) *LocationHandler {
	return &LocationHandler{
		locations:   locations,
		assignments: assignments,
	}
}

// List returns the caller's visible locations with their tenant counts
// GET /locations
func (h *LocationHandler) List(c *gin.Context) {
	var filter rentalapp.LocationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	scope, err := scopeFor(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	list, err := h.locations.List(c.Request.Context(), filter, scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Get returns a single location
// GET /locations/:id
func (h *LocationHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	scope, err := scopeFor(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	loc, err := h.locations.Get(c.Request.Context(), id, scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loc)
}

// Create adds a location
// POST /locations
func (h *LocationHandler) Create(c *gin.Context) {
	var req rentalapp.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	loc, err := h.locations.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, loc)
}

// Update replaces a location's details and rate table
// PUT /locations/:id
func (h *LocationHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	loc, err := h.locations.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loc)
}

// Delete removes a location
// DELETE /locations/:id
func (h *LocationHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.locations.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Tenants lists the stalls of a location with their tenants
// GET /locations/:id/tenants
func (h *LocationHandler) Tenants(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	scope, err := scopeFor(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	list, err := h.assignments.ListByLocation(c.Request.Context(), id, scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}
