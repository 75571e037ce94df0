package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	paymentapp "github.com/webdevsha/permitak/internal/application/payment"
	rentalapp "github.com/webdevsha/permitak/internal/application/rental"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/infrastructure/auth"
	"github.com/webdevsha/permitak/internal/infrastructure/cache"
	"github.com/webdevsha/permitak/internal/infrastructure/persistence"
	"github.com/webdevsha/permitak/internal/infrastructure/persistence/models"
	"github.com/webdevsha/permitak/internal/infrastructure/storage"
	"github.com/webdevsha/permitak/internal/interfaces/http/dto"
	"github.com/webdevsha/permitak/internal/interfaces/http/middleware"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var testToday = time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC)

// fakeGateway hands out sequential bill ids and reports the bills in paid as settled
type fakeGateway struct {
	mu     sync.Mutex
	next   int
	paid   map[string]bool
	failOn string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{paid: make(map[string]bool)}
}

func (g *fakeGateway) CreateBill(_ context.Context, _ payment.CreateBillRequest) (*payment.Bill, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failOn == "create" {
		return nil, payment.ErrGateway
	}
	g.next++
	id := fmt.Sprintf("bill_%d", g.next)
	return &payment.Bill{ID: id, URL: "https://billplz.test/bills/" + id}, nil
}

func (g *fakeGateway) VerifyBill(_ context.Context, billID string) (*payment.BillStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &payment.BillStatus{BillID: billID, Paid: g.paid[billID]}, nil
}

func (g *fakeGateway) markPaid(billID string) {
	g.mu.Lock()
	g.paid[billID] = true
	g.mu.Unlock()
}

// testEnv is a fully wired handler stack over an in-memory SQLite database
type testEnv struct {
	t       *testing.T
	db      *gorm.DB
	engine  *gin.Engine
	gateway *fakeGateway
	storage *storage.MemoryReceiptStorage
	claims  *auth.Claims

	tenants      *rentalapp.TenantService
	locations    *rentalapp.LocationService
	assignments  *rentalapp.AssignmentService
	arrears      *rentalapp.ArrearsService
	reconciler   *paymentapp.Reconciler
	ledger       *paymentapp.LedgerService
	locationRepo *persistence.GormLocationRepository
	tenantRepo   *persistence.GormTenantRepository
	assignRepo   *persistence.GormAssignmentRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&models.LocationModel{},
		&models.TenantModel{},
		&models.AssignmentModel{},
		&models.TransactionModel{},
		&models.TenantPaymentModel{},
	))

	log := zaptest.NewLogger(t)
	env := &testEnv{
		t:            t,
		db:           db,
		engine:       gin.New(),
		gateway:      newFakeGateway(),
		storage:      storage.NewMemoryReceiptStorage("https://files.test/receipts"),
		locationRepo: persistence.NewGormLocationRepository(db),
		tenantRepo:   persistence.NewGormTenantRepository(db),
		assignRepo:   persistence.NewGormAssignmentRepository(db),
	}
	paymentRepo := persistence.NewGormPaymentRepository(db)
	txRepo := persistence.NewGormTransactionRepository(db)

	env.tenants = rentalapp.NewTenantService(env.tenantRepo, log)
	env.locations = rentalapp.NewLocationService(env.locationRepo, log)
	env.assignments = rentalapp.NewAssignmentService(env.assignRepo, env.tenantRepo, env.locationRepo, log)
	env.arrears = rentalapp.NewArrearsService(rentalapp.ArrearsServiceConfig{
		Tenants:      env.tenantRepo,
		Assignments:  env.assignRepo,
		Payments:     paymentRepo,
		Transactions: txRepo,
		Policy:       rental.DefaultArrearsPolicy(),
		Logger:       log,
	})
	env.reconciler = paymentapp.NewReconciler(paymentapp.ReconcilerConfig{
		Payments:    paymentRepo,
		Tenants:     env.tenantRepo,
		Assignments: env.assignRepo,
		Gateway:     env.gateway,
		Storage:     env.storage,
		Locker:      cache.NewMemoryLocker(),
		Logger:      log,
		PublicURL:   "https://app.test",
	})
	env.ledger = paymentapp.NewLedgerService(txRepo, time.UTC, log)

	env.engine.Use(middleware.RequestID(), func(c *gin.Context) {
		if env.claims != nil {
			c.Set(middleware.JWTClaimsKey, env.claims)
			c.Set(middleware.JWTUserIDKey, env.claims.UserID)
			c.Set(middleware.JWTRoleKey, env.claims.Role)
		}
		c.Next()
	})
	return env
}

func (e *testEnv) clock() Clock {
	return func() time.Time { return testToday }
}

func (e *testEnv) as(role auth.Role, userID uuid.UUID, email string) {
	e.claims = &auth.Claims{UserID: userID.String(), Email: email, Role: role}
}

func (e *testEnv) seedLocation(name string, organizer *uuid.UUID) *rental.Location {
	e.t.Helper()
	loc, err := rental.NewLocation(rental.LocationDetails{
		Name:        name,
		Type:        rental.LocationTypeWeekly,
		Rates:       rental.Rates{Khemah: decimal.NewFromInt(50), CBS: decimal.NewFromInt(80), Monthly: decimal.NewFromInt(200)},
		OrganizerID: organizer,
	})
	require.NoError(e.t, err)
	require.NoError(e.t, e.locationRepo.Save(context.Background(), loc))
	return loc
}

func (e *testEnv) seedTenant(name, email, profileID string) *rental.Tenant {
	e.t.Helper()
	tenant, err := rental.NewTenant(rental.TenantProfile{FullName: name, Email: email, ProfileID: profileID})
	require.NoError(e.t, err)
	require.NoError(e.t, e.tenantRepo.Save(context.Background(), tenant))
	return tenant
}

func (e *testEnv) seedAssignment(tenant *rental.Tenant, loc *rental.Location, rt rental.RateType, stall string) *rental.Assignment {
	e.t.Helper()
	a, err := rental.NewAssignment(tenant.ID, loc.ID, rt, stall)
	require.NoError(e.t, err)
	require.NoError(e.t, e.assignRepo.Save(context.Background(), a))
	return a
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// apiResponse decodes the envelope with data left raw
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}
