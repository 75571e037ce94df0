// Package payment holds the payment reconciliation and ledger use cases.
package payment

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/domain/shared"
	"github.com/webdevsha/permitak/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Observer receives reconciliation counters. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveReconciliation(outcome string)
	ObserveSubmission(method string)
	ObserveLockContention()
}

type nopObserver struct{}

func (nopObserver) ObserveReconciliation(string) {}
func (nopObserver) ObserveSubmission(string)     {}
func (nopObserver) ObserveLockContention()       {}

// ReconcilerConfig wires the reconciler's collaborators
type ReconcilerConfig struct {
	Payments    payment.PaymentRepository
	Tenants     rental.TenantRepository
	Assignments rental.AssignmentRepository
	Gateway     payment.Gateway
	Storage     payment.ReceiptStorage
	Locker      payment.Locker
	Publisher   shared.EventPublisher
	Observer    Observer
	Logger      *zap.Logger

	// PublicURL is the dashboard base URL the gateway redirects back to
	PublicURL string
	// Location is the calendar used for payment dates
	Location *time.Location
}

// Reconciler records tenant payments and reconciles gateway bills with the
// ledger. Every write touches a TenantPayment and its Transaction together.
type Reconciler struct {
	payments    payment.PaymentRepository
	tenants     rental.TenantRepository
	assignments rental.AssignmentRepository
	gateway     payment.Gateway
	storage     payment.ReceiptStorage
	locker      payment.Locker
	publisher   shared.EventPublisher
	observer    Observer
	logger      *zap.Logger
	publicURL   string
	location    *time.Location
	now         func() time.Time
}

// NewReconciler creates a new Reconciler
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Reconciler{
		payments:    cfg.Payments,
		tenants:     cfg.Tenants,
		assignments: cfg.Assignments,
		gateway:     cfg.Gateway,
		storage:     cfg.Storage,
		locker:      cfg.Locker,
		publisher:   cfg.Publisher,
		observer:    observer,
		logger:      logger.Named("reconciler"),
		publicURL:   strings.TrimRight(cfg.PublicURL, "/"),
		location:    loc,
		now:         time.Now,
	}
}

func (r *Reconciler) today() time.Time {
	return r.now().In(r.location)
}

// ReturnURL is where the gateway sends the tenant after checkout. The
// gateway appends billplz[id] to it.
func (r *Reconciler) ReturnURL() string {
	return r.publicURL + "/dashboard?module=rentals"
}

// SubmitManualPayment uploads the receipt and records a pending manual
// payment for review. Input is validated before anything is uploaded.
func (r *Reconciler) SubmitManualPayment(ctx context.Context, in SubmitManualPaymentInput) (*PaymentPair, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "submit_manual_payment",
		attribute.String(telemetry.AttrTenantID, in.TenantID.String()))
	defer span.End()

	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("Amount must be greater than zero")
	}
	if in.Receipt == nil || len(in.Receipt.Data) == 0 {
		return nil, shared.NewValidationError("Receipt is required for manual payments")
	}
	assignment, err := r.tenantAssignment(ctx, in.TenantID, in.AssignmentID)
	if err != nil {
		return nil, err
	}

	key := receiptKey(in.TenantID, in.Receipt)
	if err := r.storage.Upload(ctx, key, in.Receipt.Data, in.Receipt.ContentType); err != nil {
		telemetry.RecordError(span, err)
		r.logger.Error("Receipt upload failed",
			zap.String("tenant_id", in.TenantID.String()),
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", payment.ErrUpload, err)
	}
	receiptURL := r.storage.PublicURL(key)

	tx, err := payment.NewTransaction(payment.TransactionInput{
		TenantID:    &in.TenantID,
		Type:        payment.TransactionIncome,
		Amount:      in.Amount,
		Category:    payment.CategoryRent,
		Description: assignment.RentDescription(),
		Status:      payment.StatusPending,
		Date:        r.today(),
		ReceiptURL:  receiptURL,
	})
	if err != nil {
		return nil, err
	}
	p, err := payment.NewTenantPayment(tx, &assignment.ID, payment.MethodManual)
	if err != nil {
		return nil, err
	}
	if err := p.SubmitReceipt(receiptURL); err != nil {
		return nil, err
	}
	p.AddDomainEvent(payment.NewPaymentSubmittedEvent(p))

	if err := r.payments.RecordPair(ctx, tx, p); err != nil {
		telemetry.RecordError(span, err)
		r.logger.Error("Failed to record manual payment",
			zap.String("tenant_id", in.TenantID.String()),
			zap.Error(err))
		return nil, err
	}

	r.observer.ObserveSubmission(string(payment.MethodManual))
	r.publish(ctx, p)
	r.logger.Info("Manual payment submitted",
		zap.String("payment_id", p.ID.String()),
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("amount", p.Amount.String()))

	return &PaymentPair{
		Transaction: ToTransactionResponse(tx),
		Payment:     ToPaymentResponse(p),
	}, nil
}

// InitiateGatewayPayment creates a gateway bill and records the payment as
// awaiting_gateway, keyed by the bill id, before the checkout URL is
// handed back.
func (r *Reconciler) InitiateGatewayPayment(ctx context.Context, in InitiateGatewayPaymentInput) (*GatewayCheckout, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "initiate_gateway_payment",
		attribute.String(telemetry.AttrTenantID, in.TenantID.String()))
	defer span.End()

	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("Amount must be greater than zero")
	}
	assignment, err := r.tenantAssignment(ctx, in.TenantID, in.AssignmentID)
	if err != nil {
		return nil, err
	}
	tenant, err := r.tenants.FindByID(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, rental.ErrTenantNotFound
	}

	description := assignment.RentDescription()
	bill, err := r.gateway.CreateBill(ctx, payment.CreateBillRequest{
		Name:        tenant.FullName,
		Email:       tenant.Email,
		Phone:       tenant.PhoneNumber,
		Amount:      in.Amount,
		Description: description,
		RedirectURL: r.ReturnURL(),
		Reference:   assignment.ID.String(),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, asGatewayError(err)
	}

	tx, err := payment.NewTransaction(payment.TransactionInput{
		TenantID:    &in.TenantID,
		Type:        payment.TransactionIncome,
		Amount:      in.Amount,
		Category:    payment.CategoryRent,
		Description: description,
		Status:      payment.StatusPending,
		Date:        r.today(),
	})
	if err != nil {
		return nil, err
	}
	p, err := payment.NewTenantPayment(tx, &assignment.ID, payment.MethodGateway)
	if err != nil {
		return nil, err
	}
	if err := p.AwaitGateway(bill.ID); err != nil {
		return nil, err
	}
	p.AddDomainEvent(payment.NewPaymentSubmittedEvent(p))

	if err := r.payments.RecordPair(ctx, tx, p); err != nil {
		telemetry.RecordError(span, err)
		r.logger.Error("Failed to record gateway payment",
			zap.String("bill_id", bill.ID),
			zap.Error(err))
		return nil, err
	}

	r.observer.ObserveSubmission(string(payment.MethodGateway))
	r.publish(ctx, p)
	r.logger.Info("Gateway bill created",
		zap.String("bill_id", bill.ID),
		zap.String("payment_id", p.ID.String()))

	return &GatewayCheckout{
		BillID:  bill.ID,
		URL:     bill.URL,
		Payment: ToPaymentResponse(p),
	}, nil
}

// VerifyGatewayReturn asks the gateway whether billID was paid and brings
// the local record in line. Verifications of one bill are serialized with
// a distributed lock, and approval only happens through a conditional
// update, so a bill is approved at most once.
//
// tenantID restricts the lookup to the caller's own payment; nil is used
// by operator sweeps. For an unpaid bill both the result and an error
// matching payment.ErrNotSettled are returned.
func (r *Reconciler) VerifyGatewayReturn(ctx context.Context, billID string, tenantID *uuid.UUID) (*VerificationResult, error) {
	billID = strings.TrimSpace(billID)
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "verify_gateway_return",
		attribute.String(telemetry.AttrBillID, billID))
	defer span.End()

	if billID == "" {
		return nil, shared.NewValidationError("Bill id is required")
	}

	release, err := r.locker.Acquire(ctx, "bill:"+billID)
	if err != nil {
		if errors.Is(err, payment.ErrVerificationInProgress) {
			r.observer.ObserveLockContention()
		}
		return nil, err
	}
	defer release()

	p, err := r.payments.FindByCorrelationID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if p != nil && tenantID != nil && p.TenantID != *tenantID {
		return nil, shared.ErrForbidden
	}
	if p != nil && p.State == payment.StateApproved {
		return r.result(span, billID, OutcomeAlreadyRecorded, p), nil
	}

	status, err := r.gateway.VerifyBill(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		r.logger.Warn("Bill verification failed",
			zap.String("bill_id", billID),
			zap.Error(err))
		return nil, asGatewayError(err)
	}

	if status.Paid {
		return r.settle(ctx, span, billID, p, status)
	}
	return r.unsettle(ctx, span, billID, p, status)
}

func (r *Reconciler) settle(ctx context.Context, span trace.Span, billID string, p *payment.TenantPayment, status *payment.BillStatus) (*VerificationResult, error) {
	if p == nil {
		r.logger.Warn("Gateway reports bill paid but no local payment exists",
			zap.String("bill_id", billID))
		return r.result(span, billID, OutcomeReconciledWithoutRecord, nil), nil
	}

	if err := p.ConfirmSettled(status.Raw); err != nil {
		return nil, err
	}
	ok, err := r.payments.TransitionPair(ctx, p, payment.StateAwaitingGateway, payment.StateFailed)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !ok {
		// another verification approved it between our read and write
		r.logger.Info("Bill already approved by another writer", zap.String("bill_id", billID))
		return r.reloaded(ctx, span, billID)
	}

	r.publish(ctx, p)
	r.logger.Info("Gateway payment approved",
		zap.String("bill_id", billID),
		zap.String("payment_id", p.ID.String()))
	return r.result(span, billID, OutcomeApproved, p), nil
}

func (r *Reconciler) unsettle(ctx context.Context, span trace.Span, billID string, p *payment.TenantPayment, status *payment.BillStatus) (*VerificationResult, error) {
	if p != nil && p.State != payment.StateFailed {
		from := p.State
		if err := p.MarkUnsettled(status.Raw); err != nil {
			return nil, err
		}
		ok, err := r.payments.TransitionPair(ctx, p, from)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if !ok {
			return r.reloaded(ctx, span, billID)
		}
	}

	r.logger.Info("Gateway bill not paid", zap.String("bill_id", billID))
	return r.result(span, billID, OutcomeUnpaid, p), payment.ErrNotSettled
}

func (r *Reconciler) reloaded(ctx context.Context, span trace.Span, billID string) (*VerificationResult, error) {
	current, err := r.payments.FindByCorrelationID(ctx, billID)
	if err != nil {
		return nil, err
	}
	return r.result(span, billID, OutcomeAlreadyRecorded, current), nil
}

func (r *Reconciler) result(span trace.Span, billID string, outcome Outcome, p *payment.TenantPayment) *VerificationResult {
	r.observer.ObserveReconciliation(string(outcome))
	span.SetAttributes(attribute.String(telemetry.AttrOutcome, string(outcome)))
	res := &VerificationResult{BillID: billID, Outcome: outcome}
	if p != nil {
		resp := ToPaymentResponse(p)
		res.Payment = &resp
	}
	return res
}

// ReviewPayment applies an admin or staff decision to a pending manual
// payment. The linked Transaction follows the decision.
func (r *Reconciler) ReviewPayment(ctx context.Context, paymentID uuid.UUID, decision payment.Decision, reviewer uuid.UUID) (*PaymentResponse, error) {
	p, err := r.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, payment.ErrPaymentNotFound
	}
	if err := p.Review(decision, reviewer); err != nil {
		return nil, err
	}

	ok, err := r.payments.TransitionPair(ctx, p, payment.StatePending)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "Payment was already reviewed")
	}

	r.publish(ctx, p)
	r.logger.Info("Payment reviewed",
		zap.String("payment_id", p.ID.String()),
		zap.String("decision", string(decision)),
		zap.String("reviewer", reviewer.String()))

	resp := ToPaymentResponse(p)
	return &resp, nil
}

// History lists a tenant's payments, newest first
func (r *Reconciler) History(ctx context.Context, tenantID uuid.UUID) ([]PaymentResponse, error) {
	ps, err := r.payments.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(ps), nil
}

// ListPending lists manual payments waiting for review
func (r *Reconciler) ListPending(ctx context.Context) ([]PaymentResponse, error) {
	ps, err := r.payments.FindByState(ctx, []payment.State{payment.StatePending}, nil)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(ps), nil
}

// SweepAwaitingGateway re-verifies bills that have been awaiting the
// gateway for longer than olderThan. One failing bill does not stop the
// sweep.
func (r *Reconciler) SweepAwaitingGateway(ctx context.Context, olderThan time.Duration) (*SweepResult, error) {
	cutoff := r.now().Add(-olderThan)
	stuck, err := r.payments.FindByState(ctx, []payment.State{payment.StateAwaitingGateway}, &cutoff)
	if err != nil {
		return nil, err
	}

	res := &SweepResult{}
	for _, p := range stuck {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++
		v, err := r.VerifyGatewayReturn(ctx, p.CorrelationID, nil)
		switch {
		case errors.Is(err, payment.ErrNotSettled):
			res.Unpaid++
		case err != nil:
			res.Failures = append(res.Failures, SweepFailure{BillID: p.CorrelationID, Error: err.Error()})
		case v.Outcome == OutcomeApproved:
			res.Approved++
		default:
			res.AlreadyRecorded++
		}
	}

	r.logger.Info("Awaiting-gateway sweep finished",
		zap.Int("checked", res.Checked),
		zap.Int("approved", res.Approved),
		zap.Int("unpaid", res.Unpaid),
		zap.Int("failed", len(res.Failures)))
	return res, nil
}

// tenantAssignment loads an assignment and checks it belongs to tenantID
func (r *Reconciler) tenantAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) (*rental.Assignment, error) {
	if assignmentID == uuid.Nil {
		return nil, shared.NewValidationError("Assignment is required")
	}
	a, err := r.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.TenantID != tenantID {
		return nil, shared.NewValidationError("Assignment does not belong to this tenant")
	}
	return a, nil
}

// publish hands the payment's pending events to the publisher. Failures
// are logged since the ledger write has already committed.
func (r *Reconciler) publish(ctx context.Context, p *payment.TenantPayment) {
	events := p.GetDomainEvents()
	p.ClearDomainEvents()
	if r.publisher == nil || len(events) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, events...); err != nil {
		r.logger.Warn("Failed to publish payment events",
			zap.String("payment_id", p.ID.String()),
			zap.Error(err))
	}
}

// asGatewayError keeps domain errors from the gateway client and maps
// anything else to GATEWAY_ERROR
func asGatewayError(err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%w: %v", payment.ErrGateway, err)
}

// receiptKey names an upload <tenant_id>-<random>.<ext>
func receiptKey(tenantID uuid.UUID, rc *Receipt) string {
	ext := strings.ToLower(filepath.Ext(rc.Filename))
	if ext == "" && rc.ContentType != "" {
		if exts, _ := mime.ExtensionsByType(rc.ContentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	if ext == "" {
		ext = ".bin"
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return url.PathEscape(fmt.Sprintf("%s-%s%s", tenantID, random, ext))
}
