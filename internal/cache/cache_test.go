package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
	require.NoError(t, m.Set(ctx, "forever", []byte("w"), 0))
	_, err := m.Get(ctx, "short")
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)
	_, err = m.Get(ctx, "short")
	require.ErrorIs(t, err, ErrMiss)
	got, err := m.Get(ctx, "forever")
	require.NoError(t, err)
	require.Equal(t, []byte("w"), got)
}

func TestMemoryCopiesValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
}

func TestMemoryEvictsOldestBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	m := newMemory(2)

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, m.Set(ctx, "c", []byte("3"), time.Minute))

	_, err := m.Get(ctx, "a")
	require.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "c")
	require.NoError(t, err)
}
