package rental

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/rental"
)

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Location), args.Error(1)
}

func (m *MockLocationRepository) FindAll(ctx context.Context, filter rental.LocationFilter) ([]rental.LocationSummary, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]rental.LocationSummary), args.Error(1)
}

func (m *MockLocationRepository) Save(ctx context.Context, loc *rental.Location) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *MockLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

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

// MockPaymentRepository only answers the arrears query; the write paths
// are exercised in the payment package.
type MockPaymentRepository struct {
	mock.Mock
	payment.PaymentRepository
}

func (m *MockPaymentRepository) LatestApprovedDates(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[uuid.UUID]time.Time), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
	payment.TransactionRepository
}

func (m *MockTransactionRepository) Summary(ctx context.Context, filter payment.TransactionFilter) (*payment.LedgerSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.LedgerSummary), args.Error(1)
}
