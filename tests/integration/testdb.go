// Package integration runs the repositories and services against a real
// PostgreSQL started with testcontainers and migrated with the files in
// migrations/.
package integration

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB is a migrated database in its own container
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB starts PostgreSQL, applies every migration and registers cleanup.
// Tests are skipped under -short.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs docker")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("permitak_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, sqlDB := connectToDatabase(t, dsn)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, Container: container, DSN: dsn, t: t}
	t.Cleanup(tdb.Close)

	tdb.Migrator().Up()
	return tdb
}

// Close closes the connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// Migrator drives golang-migrate against the test database
type Migrator struct {
	t *testing.T
	m *migrate.Migrate
}

// Migrator returns a migrate instance bound to the test database
func (tdb *TestDB) Migrator() *Migrator {
	tdb.t.Helper()
	path := findMigrationsPath()
	require.NotEmpty(tdb.t, path, "Could not find migrations directory")

	driver, err := mpg.WithInstance(tdb.SqlDB, &mpg.Config{})
	require.NoError(tdb.t, err, "Failed to create migration driver")
	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	require.NoError(tdb.t, err, "Failed to create migrate instance")
	return &Migrator{t: tdb.t, m: m}
}

// Up applies all pending migrations
func (mg *Migrator) Up() {
	mg.t.Helper()
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(mg.t, err, "Failed to run migrations")
	}
}

// Down rolls back every migration
func (mg *Migrator) Down() {
	mg.t.Helper()
	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(mg.t, err, "Failed to roll back migrations")
	}
}

// Version reports the applied version
func (mg *Migrator) Version() (uint, bool) {
	mg.t.Helper()
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false
	}
	require.NoError(mg.t, err)
	return v, dirty
}

// TableExists reports whether a table is present in the public schema
func (tdb *TestDB) TableExists(name string) bool {
	tdb.t.Helper()
	var n int64
	err := tdb.DB.Raw(`SELECT COUNT(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = ?`, name).
		Scan(&n).Error
	require.NoError(tdb.t, err)
	return n > 0
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, sqlDB
}

// findMigrationsPath walks up from this file to the repository's migrations/
func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		p := filepath.Join(dir, "migrations")
		if _, err := os.Stat(p); err == nil {
			return p
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
