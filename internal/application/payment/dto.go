package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// Outcome is the result of verifying a gateway bill
type Outcome string

const (
	OutcomeApproved        Outcome = "approved"
	OutcomeAlreadyRecorded Outcome = "already_recorded"
	// OutcomeReconciledWithoutRecord means the gateway reports the bill paid
	// but no local payment carries its id. It is a soft success.
	OutcomeReconciledWithoutRecord Outcome = "reconciled_without_record"
	OutcomeUnpaid                  Outcome = "unpaid"
)

// Receipt is an uploaded proof of transfer
type Receipt struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmitManualPaymentInput is the input of SubmitManualPayment
type SubmitManualPaymentInput struct {
	TenantID     uuid.UUID
	AssignmentID uuid.UUID
	Amount       decimal.Decimal
	Receipt      *Receipt
}

// InitiateGatewayPaymentInput is the input of InitiateGatewayPayment
type InitiateGatewayPaymentInput struct {
	TenantID     uuid.UUID
	AssignmentID uuid.UUID
	Amount       decimal.Decimal
}

// PaymentResponse represents a tenant payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	AssignmentID  *uuid.UUID      `json:"assignment_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	ReceiptURL    string          `json:"receipt_url,omitempty"`
	Method        string          `json:"payment_method"`
	State         string          `json:"state"`
	Status        string          `json:"status"`
	Remarks       string          `json:"remarks"`
	BillID        string          `json:"bill_id,omitempty"`
	ReviewedBy    *uuid.UUID      `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToPaymentResponse converts a domain TenantPayment to a response
func ToPaymentResponse(p *payment.TenantPayment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		TransactionID: p.TransactionID,
		AssignmentID:  p.AssignmentID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		ReceiptURL:    p.ReceiptURL,
		Method:        string(p.Method),
		State:         string(p.State),
		Status:        string(p.Status()),
		Remarks:       p.Remarks,
		BillID:        p.CorrelationID,
		ReviewedBy:    p.ReviewedBy,
		ReviewedAt:    p.ReviewedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(ps []payment.TenantPayment) []PaymentResponse {
	out := make([]PaymentResponse, len(ps))
	for i := range ps {
		out[i] = ToPaymentResponse(&ps[i])
	}
	return out
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    *uuid.UUID      `json:"tenant_id,omitempty"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Date        time.Time       `json:"date"`
	ReceiptURL  string          `json:"receipt_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a domain Transaction to a response
func ToTransactionResponse(t *payment.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		TenantID:    t.TenantID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Status:      string(t.Status),
		Date:        t.Date,
		ReceiptURL:  t.ReceiptURL,
		CreatedAt:   t.CreatedAt,
	}
}

// PaymentPair is a ledger Transaction with its TenantPayment
type PaymentPair struct {
	Transaction TransactionResponse `json:"transaction"`
	Payment     PaymentResponse     `json:"payment"`
}

// GatewayCheckout is returned after a bill was created and recorded
type GatewayCheckout struct {
	BillID  string          `json:"bill_id"`
	URL     string          `json:"url"`
	Payment PaymentResponse `json:"payment"`
}

// VerificationResult is the result of VerifyGatewayReturn
type VerificationResult struct {
	BillID  string           `json:"bill_id"`
	Outcome Outcome          `json:"outcome"`
	Payment *PaymentResponse `json:"payment,omitempty"`
}

// ReviewRequest is an admin decision on a pending manual payment
type ReviewRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
}

// SweepFailure is a bill the sweep could not verify
type SweepFailure struct {
	BillID string `json:"bill_id"`
	Error  string `json:"error"`
}

// SweepResult summarises a SweepAwaitingGateway run
type SweepResult struct {
	Checked         int            `json:"checked"`
	Approved        int            `json:"approved"`
	AlreadyRecorded int            `json:"already_recorded"`
	Unpaid          int            `json:"unpaid"`
	Failures        []SweepFailure `json:"failures,omitempty"`
}

// RecordTransactionRequest is a manual ledger entry by staff
type RecordTransactionRequest struct {
	TenantID    *uuid.UUID      `json:"tenant_id"`
	Type        string          `json:"type" binding:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Category    string          `json:"category" binding:"required,max=100"`
	Description string          `json:"description" binding:"max=2000"`
	Status      string          `json:"status" binding:"omitempty,oneof=pending approved rejected"`
	Date        *time.Time      `json:"date"`
	ReceiptURL  string          `json:"receipt_url" binding:"omitempty,url"`
}

// TransactionListFilter defines filtering options for ledger list queries
type TransactionListFilter struct {
	TenantID *uuid.UUID `form:"tenant_id"`
	Type     string     `form:"type" binding:"omitempty,oneof=income expense"`
	Status   string     `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f TransactionListFilter) toDomain() payment.TransactionFilter {
	base := shared.DefaultFilter()
	base.OrderBy = "date"
	if f.Page > 0 {
		base.Page = f.Page
	}
	if f.PageSize > 0 {
		base.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		base.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		base.OrderDir = f.OrderDir
	}

	out := payment.TransactionFilter{
		Filter:   base,
		TenantID: f.TenantID,
		FromDate: f.FromDate,
		ToDate:   f.ToDate,
	}
	if f.Type != "" {
		t := payment.TransactionType(f.Type)
		out.Type = &t
	}
	if f.Status != "" {
		s := payment.Status(f.Status)
		out.Status = &s
	}
	return out
}
