package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLockLivesInTempDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "export.json")

	l, err := NewFileLock(target)
	require.NoError(t, err)
	assert.Equal(t, os.TempDir(), filepath.Dir(l.Path()))
	assert.Equal(t, LockPath(target), l.Path())

	require.NoError(t, l.Lock())
	require.NoError(t, l.Unlock())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileLockPathIsPerTarget(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileLock(filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	b, err := NewFileLock(filepath.Join(dir, "b.json"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Path(), b.Path())

	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := NewFileLock("export.json")
	require.NoError(t, err)
	assert.Equal(t, LockPath(filepath.Join(wd, "export.json")), rel.Path())
}

func TestFileLockWaitsForHolder(t *testing.T) {
	target := filepath.Join(t.TempDir(), "export.json")

	first, err := NewFileLock(target)
	require.NoError(t, err)
	second, err := NewFileLock(target)
	require.NoError(t, err)

	require.NoError(t, first.Lock())

	acquired := make(chan error, 1)
	go func() { acquired <- second.Lock() }()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, first.Unlock())
	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("second lock never acquired")
	}
	require.NoError(t, second.Unlock())
}
