package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	rentalapp "github.com/webdevsha/permitak/internal/application/rental"
	"github.com/webdevsha/permitak/internal/infrastructure/report"
)

// DashboardHandler serves the operator overview and the arrears export
type DashboardHandler struct {
	BaseHandler
	arrears *rentalapp.ArrearsService
	now     Clock
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(arrears *rentalapp.ArrearsService, now Clock) *DashboardHandler {
	return &DashboardHandler{arrears: arrears, now: now}
}

// Overview returns income, tenant counts and the overdue list
// GET /dashboard/overview
func (h *DashboardHandler) Overview(c *gin.Context) {
	scope, err := scopeFor(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}
	overview, err := h.arrears.DashboardOverview(c.Request.Context(), h.now(), scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// ExportArrears downloads the overdue tenants as a workbook
// GET /reports/arrears.xlsx
func (h *DashboardHandler) ExportArrears(c *gin.Context) {
	now := h.now()
	var buf bytes.Buffer
	rows, err := h.arrears.ExportArrears(c.Request.Context(), now, &buf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("tunggakan-%s.xlsx", now.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("X-Row-Count", strconv.Itoa(rows))
	c.Data(http.StatusOK, report.ContentTypeXLSX, buf.Bytes())
}
