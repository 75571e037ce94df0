package payment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// Event type names
const (
	EventTypePaymentSubmitted = "payment.submitted"
	EventTypePaymentApproved  = "payment.approved"
	EventTypePaymentRejected  = "payment.rejected"

	aggregateTypePayment = "TenantPayment"
)

// PaymentEvent is the payload shared by all payment events
type PaymentEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        Method          `json:"method"`
	State         State           `json:"state"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

func newPaymentEvent(eventType string, p *TenantPayment) *PaymentEvent {
	return &PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		TransactionID:   p.TransactionID,
		TenantID:        p.TenantID,
		Amount:          p.Amount,
		Method:          p.Method,
		State:           p.State,
		CorrelationID:   p.CorrelationID,
	}
}

// NewPaymentSubmittedEvent is raised when a payment attempt is recorded
func NewPaymentSubmittedEvent(p *TenantPayment) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentSubmitted, p)
}

// NewPaymentApprovedEvent is raised when a payment and its transaction are approved
func NewPaymentApprovedEvent(p *TenantPayment) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentApproved, p)
}

// NewPaymentRejectedEvent is raised when an admin rejects a manual payment
func NewPaymentRejectedEvent(p *TenantPayment) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentRejected, p)
}
