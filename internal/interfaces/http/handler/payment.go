package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	paymentapp "github.com/webdevsha/permitak/internal/application/payment"
	rentalapp "github.com/webdevsha/permitak/internal/application/rental"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/interfaces/http/dto"
	"github.com/webdevsha/permitak/internal/interfaces/http/middleware"
)

// Query parameters that carry the bill id on a gateway return
const (
	billplzIDParam = "billplz[id]"
	billIDParam    = "bill_id"
)

// PaymentHandler serves the tenant payment flows and the admin review queue
type PaymentHandler struct {
	BaseHandler
	tenants        *rentalapp.TenantService
	assignments    *rentalapp.AssignmentService
	reconciler     *paymentapp.Reconciler
	maxReceiptSize int64
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	tenants *rentalapp.TenantService,
	assignments *rentalapp.AssignmentService,
	reconciler *paymentapp.Reconciler,
	maxReceiptSize int64,
) *PaymentHandler {
	return &PaymentHandler{
		tenants:        tenants,
		assignments:    assignments,
		reconciler:     reconciler,
		maxReceiptSize: maxReceiptSize,
	}
}

// MyRentals is the tenant's rental overview
type MyRentals struct {
	Tenant      rentalapp.TenantResponse       `json:"tenant"`
	Assignments []rentalapp.AssignmentResponse `json:"assignments"`
	Payments    []paymentapp.PaymentResponse   `json:"payments"`
}

// GatewayPaymentRequest starts an online payment
type GatewayPaymentRequest struct {
	AssignmentID uuid.UUID       `json:"assignment_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

// ManualPaymentForm is the multipart form of a manual transfer; the
// receipt file travels in the "receipt" part.
type ManualPaymentForm struct {
	AssignmentID string `form:"assignment_id" binding:"required,uuid"`
	Amount       string `form:"amount" binding:"required"`
}

// currentTenant resolves the caller to an activated tenant record
func (h *PaymentHandler) currentTenant(c *gin.Context) (*rental.Tenant, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return nil, false
	}
	tenant, err := h.tenants.ResolveForUser(c.Request.Context(), claims.UserID, claims.Email)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return tenant, true
}

func (h *PaymentHandler) overview(c *gin.Context, tenant *rental.Tenant) (*MyRentals, error) {
	assignments, err := h.assignments.ListByTenant(c.Request.Context(), tenant.ID)
	if err != nil {
		return nil, err
	}
	history, err := h.reconciler.History(c.Request.Context(), tenant.ID)
	if err != nil {
		return nil, err
	}
	return &MyRentals{
		Tenant:      rentalapp.ToTenantResponse(tenant),
		Assignments: assignments,
		Payments:    history,
	}, nil
}

// MyRentals returns the caller's tenant profile, stalls and payment history
// GET /me/rentals
func (h *PaymentHandler) MyRentals(c *gin.Context) {
	tenant, ok := h.currentTenant(c)
	if !ok {
		return
	}
	out, err := h.overview(c, tenant)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// SubmitManual records a bank transfer with its uploaded receipt
// POST /me/payments/manual
func (h *PaymentHandler) SubmitManual(c *gin.Context) {
	tenant, ok := h.currentTenant(c)
	if !ok {
		return
	}

	var form ManualPaymentForm
	if err := c.ShouldBind(&form); err != nil {
		h.BindError(c, err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(form.Amount))
	if err != nil || !amount.IsPositive() {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "Amount must be a positive number")
		return
	}
	receipt, msg := h.readReceipt(c)
	if receipt == nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, msg)
		return
	}

	pair, err := h.reconciler.SubmitManualPayment(c.Request.Context(), paymentapp.SubmitManualPaymentInput{
		TenantID:     tenant.ID,
		AssignmentID: uuid.MustParse(form.AssignmentID),
		Amount:       amount,
		Receipt:      receipt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pair)
}

// readReceipt returns the uploaded receipt, or nil and the message to show
func (h *PaymentHandler) readReceipt(c *gin.Context) (*paymentapp.Receipt, string) {
	fh, err := c.FormFile("receipt")
	if err != nil {
		return nil, "Receipt file is required"
	}
	if h.maxReceiptSize > 0 && fh.Size > h.maxReceiptSize {
		return nil, fmt.Sprintf("Receipt exceeds %d bytes", h.maxReceiptSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "Receipt could not be read"
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "Receipt could not be read"
	}
	if len(data) == 0 {
		return nil, "Receipt file is empty"
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &paymentapp.Receipt{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, ""
}

// InitiateGateway creates a gateway bill and returns its checkout URL
// POST /me/payments/gateway
func (h *PaymentHandler) InitiateGateway(c *gin.Context) {
	tenant, ok := h.currentTenant(c)
	if !ok {
		return
	}
	var req GatewayPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	checkout, err := h.reconciler.InitiateGatewayPayment(c.Request.Context(), paymentapp.InitiateGatewayPaymentInput{
		TenantID:     tenant.ID,
		AssignmentID: req.AssignmentID,
		Amount:       req.Amount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, checkout)
}

// Return handles the browser coming back from the gateway. With a bill id
// in the query the bill is verified; without one it is a normal overview load.
// GET /payments/return
func (h *PaymentHandler) Return(c *gin.Context) {
	tenant, ok := h.currentTenant(c)
	if !ok {
		return
	}

	billID := strings.TrimSpace(c.Query(billplzIDParam))
	if billID == "" {
		billID = strings.TrimSpace(c.Query(billIDParam))
	}
	if billID == "" {
		out, err := h.overview(c, tenant)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, out)
		return
	}

	result, err := h.reconciler.VerifyGatewayReturn(c.Request.Context(), billID, &tenant.ID)
	if err != nil {
		if result != nil && errors.Is(err, payment.ErrNotSettled) {
			resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeNotSettled, payment.ErrNotSettled.Message, middleware.GetRequestID(c))
			resp.Data = result
			c.JSON(http.StatusPaymentRequired, resp)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Pending lists manual payments waiting for review
// GET /payments/pending
func (h *PaymentHandler) Pending(c *gin.Context) {
	list, err := h.reconciler.ListPending(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Review approves or rejects a pending manual payment
// POST /payments/:id/review
func (h *PaymentHandler) Review(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req paymentapp.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	reviewer, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	p, err := h.reconciler.ReviewPayment(c.Request.Context(), id, payment.Decision(req.Decision), reviewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}
