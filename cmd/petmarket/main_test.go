package main

import (
	"os"
	"path/filepath"
	"testing"

	"pet-market/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithArgs(t *testing.T, args ...string) int {
	t.Helper()
	saved := os.Args
	t.Cleanup(func() { os.Args = saved })
	os.Args = append([]string{"petmarket"}, args...)
	return run()
}

func TestRun_ReturnsExitCodes(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("APP_ENV", "production")
	dir := t.TempDir()

	assert.Equal(t, 2, runWithArgs(t, "--data-dir", dir))
	assert.Equal(t, 2, runWithArgs(t, "--data-dir", dir, "no-such-command"))
	assert.Equal(t, 2, runWithArgs(t, "--data-dir", dir, "buy"))

	assert.Equal(t, 0, runWithArgs(t, "--data-dir", dir, "catalog"))
	assert.FileExists(t, filepath.Join(dir, repository.UsersFile))

	assert.Equal(t, 1, runWithArgs(t, "--data-dir", dir, "-u", "admin", "-p", "wrong", "inventory"))
	assert.Equal(t, 1, runWithArgs(t, "--data-dir", dir, "-u", "admin", "-p", "admin123", "buy", "1"),
		"empty catalog is an invalid selection")

	require.Equal(t, 0, runWithArgs(t, "--data-dir", dir, "-u", "admin", "-p", "admin123", "announce", "Welcome"))
	assert.Equal(t, 0, runWithArgs(t, "--data-dir", dir, "-u", "admin", "-p", "admin123", "activity"))
}
