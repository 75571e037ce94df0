package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add tenants table", "add_tenants_table"},
		{"Add-Tenant-Payments", "add_tenant_payments"},
		{"ADD__CORRELATION__ID", "add_correlation_id"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "init schema")
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_init_schema.up.sql"), first.UpPath)
	assert.FileExists(t, first.DownPath)

	second, err := CreateMigration(dir, "Add correlation id")
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Version)

	list, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "000001_init_schema", list[0].String())
	assert.Equal(t, "add_correlation_id", list[1].Name)
}

func TestCreateMigration_InvalidName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000010_later.up.sql", "000010_later.down.sql",
		"000002_earlier.up.sql", "README.md", "junk.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	list, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.EqualValues(t, 2, list[0].Version)
	assert.EqualValues(t, 10, list[1].Version)
}

func TestListMigrations_MissingDir(t *testing.T) {
	list, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRepositoryMigrationsAreWellFormed(t *testing.T) {
	list, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, list)
	for i, e := range list {
		assert.EqualValues(t, i+1, e.Version, "migration versions must be contiguous")
		assert.FileExists(t, filepath.Join("..", "..", "..", "migrations", e.String()+".down.sql"))
	}
}
