// Package app wires configuration into the repositories, services and
// infrastructure clients shared by the server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	paymentapp "github.com/webdevsha/permitak/internal/application/payment"
	rentalapp "github.com/webdevsha/permitak/internal/application/rental"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/domain/shared"
	"github.com/webdevsha/permitak/internal/infrastructure/auth"
	"github.com/webdevsha/permitak/internal/infrastructure/cache"
	"github.com/webdevsha/permitak/internal/infrastructure/config"
	"github.com/webdevsha/permitak/internal/infrastructure/event"
	"github.com/webdevsha/permitak/internal/infrastructure/gateway"
	"github.com/webdevsha/permitak/internal/infrastructure/logger"
	"github.com/webdevsha/permitak/internal/infrastructure/metrics"
	"github.com/webdevsha/permitak/internal/infrastructure/persistence"
	"github.com/webdevsha/permitak/internal/infrastructure/storage"
	"github.com/webdevsha/permitak/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Container holds everything built from one Config
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *persistence.Database
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Tracer  *telemetry.TracerProvider

	JWT       *auth.JWTService
	Blacklist auth.TokenBlacklist
	// Locker guards bill verification and the scheduled sweep
	Locker payment.Locker

	Locations   *rentalapp.LocationService
	Tenants     *rentalapp.TenantService
	Assignments *rentalapp.AssignmentService
	Arrears     *rentalapp.ArrearsService
	Reconciler  *paymentapp.Reconciler
	Ledger      *paymentapp.LedgerService

	closers []func() error
}

// Options tune what Build connects to
type Options struct {
	Version string
	// SkipStorage leaves receipt storage in memory; commands that never
	// upload use it to avoid touching S3.
	SkipStorage bool
}

// Build connects to the database and the optional services named in cfg and
// assembles the application services. Close releases everything it opened.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*Container, error) {
	c := &Container{Config: cfg, Logger: log, Metrics: metrics.New()}
	ok := false
	defer func() {
		if !ok {
			_ = c.Close()
		}
	}()

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, opts.Version, log)
	if err != nil {
		return nil, err
	}
	c.Tracer = tracer
	c.closers = append(c.closers, func() error { return tracer.Shutdown(context.Background()) })

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c.DB = db
	c.closers = append(c.closers, db.Close)
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterGormTracing(db.DB, cfg.Database.DBName, log); err != nil {
			return nil, err
		}
	}
	c.Metrics.RegisterDBPool(func() metrics.PoolStats {
		s, err := db.Stats()
		if err != nil {
			return metrics.PoolStats{}
		}
		return metrics.PoolStats{OpenConnections: s.OpenConnections, InUse: s.InUse, Idle: s.Idle, WaitCount: s.WaitCount}
	})

	c.Locker = cache.NewMemoryLocker()
	c.Blacklist = auth.NewInMemoryTokenBlacklist()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		c.Redis = client
		c.closers = append(c.closers, client.Close)
		c.Locker = cache.NewRedisLocker(client, cfg.Redis.LockTTL, log)
		c.Blacklist = auth.NewRedisTokenBlacklist(client)
	} else {
		log.Warn("Redis disabled, bill verification locks and token revocation are process-local")
	}

	receipts, err := c.receiptStorage(ctx, opts)
	if err != nil {
		return nil, err
	}

	var gw payment.Gateway
	billplz, err := gateway.NewBillplzClient(cfg.Gateway, log, gateway.WithCallObserver(c.Metrics.ObserveGatewayCall))
	switch {
	case err == nil:
		gw = billplz
	case errors.Is(err, payment.ErrGatewayNotConfigured):
		log.Warn("Payment gateway not configured, online payments are unavailable")
		gw = unconfiguredGateway{}
	default:
		return nil, err
	}

	publisher, err := c.eventBus()
	if err != nil {
		return nil, err
	}

	c.JWT = auth.NewJWTService(cfg.JWT)

	locationRepo := persistence.NewGormLocationRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	assignmentRepo := persistence.NewGormAssignmentRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	loc := cfg.App.Location()

	c.Locations = rentalapp.NewLocationService(locationRepo, log)
	c.Tenants = rentalapp.NewTenantService(tenantRepo, log)
	c.Assignments = rentalapp.NewAssignmentService(assignmentRepo, tenantRepo, locationRepo, log)
	c.Arrears = rentalapp.NewArrearsService(rentalapp.ArrearsServiceConfig{
		Tenants:      tenantRepo,
		Assignments:  assignmentRepo,
		Payments:     paymentRepo,
		Transactions: transactionRepo,
		Policy: rental.ArrearsPolicy{
			MonthlyPeriodDays: cfg.Arrears.MonthlyPeriodDays,
			MonthlyGraceDays:  cfg.Arrears.MonthlyGraceDays,
			WeeklyPeriodDays:  cfg.Arrears.WeeklyPeriodDays,
			WeeklyGraceDays:   cfg.Arrears.WeeklyGraceDays,
		},
		Logger: log,
	})
	c.Reconciler = paymentapp.NewReconciler(paymentapp.ReconcilerConfig{
		Payments:    paymentRepo,
		Tenants:     tenantRepo,
		Assignments: assignmentRepo,
		Gateway:     gw,
		Storage:     receipts,
		Locker:      c.Locker,
		Publisher:   publisher,
		Observer:    c.Metrics,
		Logger:      log,
		PublicURL:   cfg.App.PublicURL,
		Location:    loc,
	})
	c.Ledger = paymentapp.NewLedgerService(transactionRepo, loc, log)

	ok = true
	return c, nil
}

func (c *Container) receiptStorage(ctx context.Context, opts Options) (payment.ReceiptStorage, error) {
	cfg := c.Config.Storage
	if opts.SkipStorage || cfg.Endpoint == "" {
		if !opts.SkipStorage {
			c.Logger.Warn("Object storage not configured, receipts are kept in memory")
		}
		return storage.NewMemoryReceiptStorage(c.Config.App.PublicURL + "/receipts"), nil
	}
	s3, err := storage.NewS3ReceiptStorage(&cfg, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("init receipt storage: %w", err)
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3, nil
}

// eventBus logs every payment event and forwards them to Kafka when enabled
func (c *Container) eventBus() (*event.Bus, error) {
	var forward shared.EventPublisher
	if c.Config.Kafka.Enabled {
		kp, err := event.NewKafkaPublisher(c.Config.Kafka, c.Logger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, kp.Close)
		forward = kp
	}
	bus := event.NewBus(forward, c.Logger)
	bus.Subscribe(event.LogHandler(c.Logger), "*")
	return bus, nil
}

// Close releases resources in reverse order of acquisition
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// unconfiguredGateway rejects every call so the rest of the service can run
// without gateway credentials
type unconfiguredGateway struct{}

func (unconfiguredGateway) CreateBill(context.Context, payment.CreateBillRequest) (*payment.Bill, error) {
	return nil, payment.ErrGatewayNotConfigured
}

func (unconfiguredGateway) VerifyBill(context.Context, string) (*payment.BillStatus, error) {
	return nil, payment.ErrGatewayNotConfigured
}
