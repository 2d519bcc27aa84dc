//go:build unix

package flock_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/flock"
)

func TestAcquire_CreatesLockFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".slicer", "run.lock")
	lock, err := flock.Acquire(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lock.Release() })

	assert.FileExists(t, path)
	assert.Equal(t, path, lock.Path())
}

func TestAcquire_SecondHolderFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.lock")
	first, err := flock.Acquire(path)
	require.NoError(t, err)

	second, err := flock.Acquire(path)
	require.ErrorIs(t, err, errors.ErrRunLocked)
	assert.Nil(t, second)

	require.NoError(t, first.Release())

	third, err := flock.Acquire(path)
	require.NoError(t, err)
	require.NoError(t, third.Release())
}

func TestRelease_Idempotent(t *testing.T) {
	t.Parallel()

	lock, err := flock.Acquire(filepath.Join(t.TempDir(), "run.lock"))
	require.NoError(t, err)

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())

	var nilLock *flock.File
	assert.NoError(t, nilLock.Release())
}

func TestAcquire_UnwritableDirectory(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := flock.Acquire(filepath.Join(blocker, "run.lock"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errors.ErrRunLocked)
}

func TestExclusive_RawDescriptors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "raw.lock")
	f1, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- test temp dir
	require.NoError(t, err)
	defer func() { _ = f1.Close() }()
	f2, err := os.OpenFile(path, os.O_RDWR, 0o600) // #nosec G304 -- test temp dir
	require.NoError(t, err)
	defer func() { _ = f2.Close() }()

	require.NoError(t, flock.Exclusive(f1.Fd()))
	require.Error(t, flock.Exclusive(f2.Fd()))
	require.NoError(t, flock.Unlock(f1.Fd()))
	require.NoError(t, flock.Exclusive(f2.Fd()))
	require.NoError(t, flock.Unlock(f2.Fd()))
}
