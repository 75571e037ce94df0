package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// =============================================================================
// Payment repositories
// =============================================================================

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.TenantPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.TenantPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByCorrelationID(ctx context.Context, billID string) (*payment.TenantPayment, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.TenantPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]payment.TenantPayment, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]payment.TenantPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByState(ctx context.Context, states []payment.State, olderThan *time.Time) ([]payment.TenantPayment, error) {
	args := m.Called(ctx, states, olderThan)
	return args.Get(0).([]payment.TenantPayment), args.Error(1)
}

func (m *MockPaymentRepository) LatestApprovedDates(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[uuid.UUID]time.Time), args.Error(1)
}

func (m *MockPaymentRepository) RecordPair(ctx context.Context, tx *payment.Transaction, p *payment.TenantPayment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) TransitionPair(ctx context.Context, p *payment.TenantPayment, from ...payment.State) (bool, error) {
	args := m.Called(ctx, p, from)
	return args.Bool(0), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter payment.TransactionFilter) ([]payment.Transaction, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]payment.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *payment.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Summary(ctx context.Context, filter payment.TransactionFilter) (*payment.LedgerSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.LedgerSummary), args.Error(1)
}

// =============================================================================
// Rental repositories
// =============================================================================

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByProfileID(ctx context.Context, profileID string) (*rental.Tenant, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByEmail(ctx context.Context, email string) (*rental.Tenant, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context, filter rental.TenantFilter) ([]rental.Tenant, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]rental.Tenant), args.Get(1).(int64), args.Error(2)
}

func (m *MockTenantRepository) CountByStatus(ctx context.Context, status rental.TenantStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *rental.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]rental.Assignment, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]rental.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindByLocation(ctx context.Context, locationID uuid.UUID) ([]rental.Assignment, error) {
	args := m.Called(ctx, locationID)
	return args.Get(0).([]rental.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindAll(ctx context.Context) ([]rental.Assignment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]rental.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) Save(ctx context.Context, a *rental.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// =============================================================================
// Gateway, storage and events
// =============================================================================

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateBill(ctx context.Context, req payment.CreateBillRequest) (*payment.Bill, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Bill), args.Error(1)
}

func (m *MockGateway) VerifyBill(ctx context.Context, billID string) (*payment.BillStatus, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.BillStatus), args.Error(1)
}

type MockReceiptStorage struct {
	mock.Mock
}

func (m *MockReceiptStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockReceiptStorage) PublicURL(key string) string {
	return "https://files.example.test/receipts/" + key
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type recordingObserver struct {
	mu          sync.Mutex
	outcomes    []string
	submissions []string
	contention  int
}

func (o *recordingObserver) ObserveReconciliation(outcome string) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

func (o *recordingObserver) ObserveSubmission(method string) {
	o.mu.Lock()
	o.submissions = append(o.submissions, method)
	o.mu.Unlock()
}

func (o *recordingObserver) ObserveLockContention() {
	o.mu.Lock()
	o.contention++
	o.mu.Unlock()
}
