package payment

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

var _ shared.AggregateRoot = (*TenantPayment)(nil)

// TenantPayment is the tenant-facing history record of a payment attempt.
// It references exactly one ledger Transaction and mirrors its status.
type TenantPayment struct {
	shared.BaseAggregateRoot
	TenantID      uuid.UUID       `json:"tenant_id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	AssignmentID  *uuid.UUID      `json:"assignment_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	ReceiptURL    string          `json:"receipt_url,omitempty"`
	Method        Method          `json:"method"`
	State         State           `json:"state"`
	Remarks       string          `json:"remarks"`

	// CorrelationID is the gateway bill id; unique across payments
	CorrelationID string          `json:"correlation_id,omitempty"`
	GatewayResult json.RawMessage `json:"gateway_result,omitempty"`

	ReviewedBy *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// NewTenantPayment creates a payment attempt in the initiated state, linked to tx
func NewTenantPayment(tx *Transaction, assignmentID *uuid.UUID, method Method) (*TenantPayment, error) {
	if tx == nil || tx.TenantID == nil {
		return nil, shared.NewValidationError("Payment must reference a tenant transaction")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("Payment method must be manual or gateway")
	}
	return &TenantPayment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          *tx.TenantID,
		TransactionID:     tx.ID,
		AssignmentID:      assignmentID,
		Amount:            tx.Amount,
		PaymentDate:       tx.Date,
		ReceiptURL:        tx.ReceiptURL,
		Method:            method,
		State:             StateInitiated,
		Remarks:           tx.Description,
	}, nil
}

// Status is the ledger status mirrored by this record
func (p *TenantPayment) Status() Status {
	return p.State.LedgerStatus()
}

func (p *TenantPayment) transition(to State) error {
	if !p.State.CanTransitionTo(to) {
		return invalidTransition(p.State, to)
	}
	p.State = to
	p.Touch()
	return nil
}

// SubmitReceipt moves a manual payment to pending review
func (p *TenantPayment) SubmitReceipt(receiptURL string) error {
	if p.Method != MethodManual {
		return newInvalidStateError("Only manual payments carry a receipt")
	}
	if strings.TrimSpace(receiptURL) == "" {
		return shared.NewValidationError("Receipt is required for manual payments")
	}
	if err := p.transition(StatePending); err != nil {
		return err
	}
	p.ReceiptURL = receiptURL
	return nil
}

// AwaitGateway records the gateway bill id and moves to awaiting_gateway
func (p *TenantPayment) AwaitGateway(billID string) error {
	if p.Method != MethodGateway {
		return newInvalidStateError("Only gateway payments carry a bill id")
	}
	if strings.TrimSpace(billID) == "" {
		return shared.NewValidationError("Gateway bill id is required")
	}
	if err := p.transition(StateAwaitingGateway); err != nil {
		return err
	}
	p.CorrelationID = billID
	return nil
}

// ConfirmSettled approves a gateway payment the gateway reported as paid
func (p *TenantPayment) ConfirmSettled(result json.RawMessage) error {
	if p.Method != MethodGateway {
		return newInvalidStateError("Only gateway payments are settled by the gateway")
	}
	if err := p.transition(StateApproved); err != nil {
		return err
	}
	p.GatewayResult = result
	p.AddDomainEvent(NewPaymentApprovedEvent(p))
	return nil
}

// MarkUnsettled records a gateway unpaid/cancelled answer. Repeating it on a failed payment is a no-op.
func (p *TenantPayment) MarkUnsettled(result json.RawMessage) error {
	if p.Method != MethodGateway {
		return newInvalidStateError("Only gateway payments are settled by the gateway")
	}
	p.GatewayResult = result
	if p.State == StateFailed {
		return nil
	}
	return p.transition(StateFailed)
}

// Review applies an admin/staff decision to a pending manual payment
func (p *TenantPayment) Review(decision Decision, reviewer uuid.UUID) error {
	if !decision.IsValid() {
		return shared.NewValidationError("Decision must be approve or reject")
	}
	if p.State != StatePending {
		return newInvalidStateError("Only payments pending review can be reviewed")
	}
	to := StateApproved
	if decision == DecisionReject {
		to = StateRejected
	}
	if err := p.transition(to); err != nil {
		return err
	}
	now := time.Now()
	p.ReviewedBy = &reviewer
	p.ReviewedAt = &now
	if to == StateApproved {
		p.AddDomainEvent(NewPaymentApprovedEvent(p))
	} else {
		p.AddDomainEvent(NewPaymentRejectedEvent(p))
	}
	return nil
}
