package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	rentalapp "github.com/webdevsha/permitak/internal/application/rental"
	"github.com/webdevsha/permitak/internal/interfaces/http/dto"
)

// Clock returns the current instant in the operator's time zone
type Clock func() time.Time

// LocalClock returns a Clock in loc
func LocalClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// TenantHandler serves tenant records, their arrears and stall assignments
type TenantHandler struct {
	BaseHandler
	tenants     *rentalapp.TenantService
	assignments *rentalapp.AssignmentService
	arrears     *rentalapp.ArrearsService
	now         Clock
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(
	tenants *rentalapp.TenantService,
	assignments *rentalapp.AssignmentService,
	arrears *rentalapp.ArrearsService,
	now Clock,
) *TenantHandler {
	return &TenantHandler{
		tenants:     tenants,
		assignments: assignments,
		arrears:     arrears,
		now:         now,
	}
}

// List returns a page of tenants
// GET /tenants
func (h *TenantHandler) List(c *gin.Context) {
	var filter rentalapp.TenantListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.tenants.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// TenantDetail is a tenant with its stall assignments
type TenantDetail struct {
	rentalapp.TenantResponse
	Assignments []rentalapp.AssignmentResponse `json:"assignments"`
}

// Get returns a tenant and its assignments
// GET /tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	tenant, err := h.tenants.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	assignments, err := h.assignments.ListByTenant(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TenantDetail{TenantResponse: *tenant, Assignments: assignments})
}

// Create registers a tenant
// POST /tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var req rentalapp.TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tenant, err := h.tenants.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tenant)
}

// Update replaces a tenant's profile
// PUT /tenants/:id
func (h *TenantHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tenant, err := h.tenants.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Statuses returns every visible tenant's arrears status as of now
// GET /tenants/status
func (h *TenantHandler) Statuses(c *gin.Context) {
	scope, err := scopeFor(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	rows, err := h.arrears.TenantStatuses(c.Request.Context(), h.now(), scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Assign places a tenant at a location with a rate class
// POST /tenants/:id/assignments
func (h *TenantHandler) Assign(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	a, err := h.assignments.Assign(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, a)
}

// AssignmentHandler serves assignment status and stall changes
type AssignmentHandler struct {
	BaseHandler
	assignments *rentalapp.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler
func NewAssignmentHandler(assignments *rentalapp.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// ToggleStatus flips an assignment between active and inactive
// PATCH /assignments/:id/status
func (h *AssignmentHandler) ToggleStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.assignments.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// UpdateStall changes an assignment's stall number
// PATCH /assignments/:id/stall
func (h *AssignmentHandler) UpdateStall(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.UpdateStallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	a, err := h.assignments.UpdateStallNumber(c.Request.Context(), id, req.StallNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}
