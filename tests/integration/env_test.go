package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	paymentapp "github.com/webdevsha/permitak/internal/application/payment"
	rentalapp "github.com/webdevsha/permitak/internal/application/rental"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/infrastructure/cache"
	"github.com/webdevsha/permitak/internal/infrastructure/persistence"
	"github.com/webdevsha/permitak/internal/infrastructure/storage"
	"go.uber.org/zap/zaptest"
)

type stubGateway struct {
	mu   sync.Mutex
	next int
	paid map[string]bool
}

func (g *stubGateway) CreateBill(_ context.Context, _ payment.CreateBillRequest) (*payment.Bill, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	id := fmt.Sprintf("bill_%d", g.next)
	return &payment.Bill{ID: id, URL: "https://billplz.test/bills/" + id}, nil
}

func (g *stubGateway) VerifyBill(_ context.Context, billID string) (*payment.BillStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &payment.BillStatus{BillID: billID, Paid: g.paid[billID]}, nil
}

func (g *stubGateway) markPaid(billID string) {
	g.mu.Lock()
	g.paid[billID] = true
	g.mu.Unlock()
}

// noLock lets concurrent verifications reach the database so the
// conditional state update is the only guard.
type noLock struct{}

func (noLock) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

type env struct {
	t  *testing.T
	db *TestDB

	gateway     *stubGateway
	locations   *persistence.GormLocationRepository
	tenants     *persistence.GormTenantRepository
	assignments *persistence.GormAssignmentRepository
	payments    *persistence.GormPaymentRepository
	reconciler  *paymentapp.Reconciler
	arrears     *rentalapp.ArrearsService
	ledger      *paymentapp.LedgerService
}

func newEnv(t *testing.T, locker payment.Locker) *env {
	t.Helper()
	tdb := NewTestDB(t)
	log := zaptest.NewLogger(t)
	e := &env{
		t:           t,
		db:          tdb,
		gateway:     &stubGateway{paid: make(map[string]bool)},
		locations:   persistence.NewGormLocationRepository(tdb.DB),
		tenants:     persistence.NewGormTenantRepository(tdb.DB),
		assignments: persistence.NewGormAssignmentRepository(tdb.DB),
		payments:    persistence.NewGormPaymentRepository(tdb.DB),
	}
	if locker == nil {
		locker = cache.NewMemoryLocker()
	}
	txRepo := persistence.NewGormTransactionRepository(tdb.DB)
	e.reconciler = paymentapp.NewReconciler(paymentapp.ReconcilerConfig{
		Payments:    e.payments,
		Tenants:     e.tenants,
		Assignments: e.assignments,
		Gateway:     e.gateway,
		Storage:     storage.NewMemoryReceiptStorage("https://files.test/receipts"),
		Locker:      locker,
		Logger:      log,
		PublicURL:   "https://app.test",
	})
	e.arrears = rentalapp.NewArrearsService(rentalapp.ArrearsServiceConfig{
		Tenants:      e.tenants,
		Assignments:  e.assignments,
		Payments:     e.payments,
		Transactions: txRepo,
		Policy:       rental.DefaultArrearsPolicy(),
		Logger:       log,
	})
	e.ledger = paymentapp.NewLedgerService(txRepo, nil, log)
	return e
}

func (e *env) seed(name string, rt rental.RateType) (*rental.Tenant, *rental.Assignment) {
	e.t.Helper()
	ctx := context.Background()
	loc, err := rental.NewLocation(rental.LocationDetails{
		Name:  "Pasar Malam " + name,
		Type:  rental.LocationTypeWeekly,
		Rates: rental.Rates{Khemah: decimal.NewFromInt(50), CBS: decimal.NewFromInt(80), Monthly: decimal.NewFromInt(200)},
	})
	require.NoError(e.t, err)
	require.NoError(e.t, e.locations.Save(ctx, loc))

	tenant, err := rental.NewTenant(rental.TenantProfile{FullName: name})
	require.NoError(e.t, err)
	require.NoError(e.t, e.tenants.Save(ctx, tenant))

	a, err := rental.NewAssignment(tenant.ID, loc.ID, rt, "A-1")
	require.NoError(e.t, err)
	require.NoError(e.t, e.assignments.Save(ctx, a))
	return tenant, a
}
