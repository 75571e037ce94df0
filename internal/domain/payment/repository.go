package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// TransactionFilter defines filtering options for ledger queries
type TransactionFilter struct {
	shared.Filter
	TenantID *uuid.UUID
	Type     *TransactionType
	Status   *Status
	FromDate *time.Time
	ToDate   *time.Time

	// TenantIDs restricts to these tenants when non-nil; an empty slice matches nothing
	TenantIDs []uuid.UUID
}

// TransactionRepository defines the interface for ledger persistence
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]Transaction, int64, error)
	Save(ctx context.Context, tx *Transaction) error

	// Summary totals approved income and expense within the filter's date range
	Summary(ctx context.Context, filter TransactionFilter) (*LedgerSummary, error)
}

// PaymentRepository defines the interface for payment history persistence.
// Writes that touch both a TenantPayment and its Transaction run in one database transaction.
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TenantPayment, error)

	// FindByCorrelationID finds the payment tagged with a gateway bill id
	FindByCorrelationID(ctx context.Context, billID string) (*TenantPayment, error)

	// FindByTenant lists a tenant's payments, newest payment date first
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]TenantPayment, error)

	// FindByState lists payments in any of states, optionally only those last updated before olderThan
	FindByState(ctx context.Context, states []State, olderThan *time.Time) ([]TenantPayment, error)

	// LatestApprovedDates maps each tenant to the payment date of its newest approved payment
	LatestApprovedDates(ctx context.Context) (map[uuid.UUID]time.Time, error)

	// RecordPair inserts tx and then p. A failed insert rolls back both and
	// returns ErrLedgerWrite or ErrHistoryWrite.
	RecordPair(ctx context.Context, tx *Transaction, p *TenantPayment) error

	// TransitionPair persists p's current state onto the payment row and its
	// Transaction, but only while the stored state is one of from. It returns
	// false when no row matched, meaning another writer got there first.
	TransitionPair(ctx context.Context, p *TenantPayment, from ...State) (bool, error)
}
