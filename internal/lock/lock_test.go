package lock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireIsExclusive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first, err := Acquire(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), first.Path())

	_, err = Acquire(dir)
	assert.ErrorIs(t, err, ErrHeld)

	require.NoError(t, first.Release())
	require.NoError(t, first.Release())

	again, err := Acquire(dir)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquireCreatesDir(t *testing.T) {
	t.Parallel()

	l, err := Acquire(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)
	assert.NoError(t, l.Release())

	var nilLock *Lock
	assert.NoError(t, nilLock.Release())
}
