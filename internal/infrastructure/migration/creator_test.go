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
		{"add lease terms", "add_lease_terms"},
		{"Add-Lease-Terms", "add_lease_terms"},
		{"ADD_LEASE_TERMS", "add_lease_terms"},
		{"add__lease__terms", "add_lease_terms"},
		{"Index Payments 2", "index_payments_2"},
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

	first, err := CreateMigration(dir, "add lease terms", "")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_add_lease_terms", first.BaseName())
	assert.Equal(t, filepath.Join(dir, "000001_add_lease_terms.up.sql"), first.UpPath)

	second, err := CreateMigration(dir, "Index Payments", "Speed up cash flow queries")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	up, err := os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Speed up cash flow queries")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback: add lease terms")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_tenancy.up.sql",
		"000002_tenancy.down.sql",
		"000001_properties.up.sql",
		"000010_outbox.up.sql",
		"README.md",
		"embed.go",
		"000003_orphan.down.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}

	files, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, uint(1), files[0].Version)
	assert.False(t, files[0].HasDown)
	assert.Equal(t, uint(2), files[1].Version)
	assert.True(t, files[1].HasDown)
	assert.Equal(t, "outbox", files[2].Name)

	next, err := CreateMigration(dir, "notifications", "")
	require.NoError(t, err)
	assert.Equal(t, uint(11), next.Version)
}

func TestListMigrations_MissingDir(t *testing.T) {
	files, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	files, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for i, f := range files {
		assert.Equal(t, uint(i+1), f.Version, "versions are contiguous")
		assert.True(t, f.HasDown, "%s has a down migration", f.BaseName())
	}
}
