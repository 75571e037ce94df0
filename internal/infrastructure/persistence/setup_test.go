package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
// A single connection keeps the memory database alive across queries.
func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

// newMockDB creates a postgres-dialect gorm DB backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func seedLocation(t *testing.T, db *gorm.DB, name string, organizer *uuid.UUID) *rental.Location {
	t.Helper()
	loc, err := rental.NewLocation(rental.LocationDetails{
		Name: name,
		Type: rental.LocationTypeWeekly,
		Rates: rental.Rates{
			Khemah:  decimal.NewFromInt(50),
			CBS:     decimal.NewFromInt(40),
			Monthly: decimal.NewFromInt(200),
		},
		OrganizerID: organizer,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormLocationRepository(db).Save(context.Background(), loc))
	return loc
}

func seedTenant(t *testing.T, db *gorm.DB, name, email string) *rental.Tenant {
	t.Helper()
	tenant, err := rental.NewTenant(rental.TenantProfile{FullName: name, Email: email})
	require.NoError(t, err)
	require.NoError(t, NewGormTenantRepository(db).Save(context.Background(), tenant))
	return tenant
}

func seedAssignment(t *testing.T, db *gorm.DB, tenant *rental.Tenant, loc *rental.Location, rt rental.RateType, stall string) *rental.Assignment {
	t.Helper()
	a, err := rental.NewAssignment(tenant.ID, loc.ID, rt, stall)
	require.NoError(t, err)
	require.NoError(t, NewGormAssignmentRepository(db).Save(context.Background(), a))
	return a
}

// newPair builds an unsaved rent transaction and its payment record
func newPair(t *testing.T, tenantID uuid.UUID, amount int64, date time.Time, method payment.Method) (*payment.Transaction, *payment.TenantPayment) {
	t.Helper()
	tx, err := payment.NewTransaction(payment.TransactionInput{
		TenantID:    &tenantID,
		Type:        payment.TransactionIncome,
		Amount:      decimal.NewFromInt(amount),
		Category:    payment.CategoryRent,
		Description: "Bayaran Sewa - Pasar Malam (A1)",
		Date:        date,
	})
	require.NoError(t, err)
	p, err := payment.NewTenantPayment(tx, nil, method)
	require.NoError(t, err)
	return tx, p
}
