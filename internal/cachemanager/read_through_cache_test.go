package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

// countingResolver resolves a fixed table and counts calls.
type countingResolver struct {
	masses map[identityKey]float64
	calls  int
}

func (r *countingResolver) resolve(ctx context.Context, key identityKey) (molarMass, error) {
	r.calls++
	mass, ok := r.masses[key]
	if !ok {
		return molarMass{}, errNotFound
	}
	return molarMass{Identity: string(key), Mass: mass}, nil
}

func newResolver() *countingResolver {
	return &countingResolver{masses: map[identityKey]float64{"element:fe": 55.845, "chemical:h2o": 18.015}}
}

func TestReadThroughCache_Get(t *testing.T) {
	ctx := context.Background()
	resolver := newResolver()
	rtc := NewReadThroughCache[identityKey, molarMass, identityKey](newMassCache(), resolver.resolve, false)

	for i := 0; i < 3; i++ {
		got, err := rtc.Get(ctx, "element:fe", "element:fe", time.Minute)
		require.NoError(t, err)
		require.Equal(t, 55.845, got.Mass)
	}
	require.Equal(t, 1, resolver.calls)
}

func TestReadThroughCache_GetErrorNotCached(t *testing.T) {
	ctx := context.Background()
	resolver := newResolver()
	rtc := NewReadThroughCache[identityKey, molarMass, identityKey](newMassCache(), resolver.resolve, false)

	for i := 0; i < 2; i++ {
		_, err := rtc.Get(ctx, "element:xx", "element:xx", time.Minute)
		require.ErrorIs(t, err, errNotFound)
	}
	require.Equal(t, 2, resolver.calls)
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	ctx := context.Background()
	resolver := newResolver()
	cache := newMassCache()
	rtc := NewReadThroughCache[identityKey, molarMass, identityKey](cache, resolver.resolve, true)

	for i := 0; i < 3; i++ {
		_, err := rtc.Get(ctx, "element:fe", "element:fe", time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 3, resolver.calls)
	require.Equal(t, 0, cache.Stats().Items)
	require.NoError(t, rtc.Invalidate(ctx, "element:fe"))
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	resolver := newResolver()
	rtc := NewReadThroughCache[identityKey, molarMass, identityKey](newMassCache(), resolver.resolve, false)

	_, err := rtc.Get(ctx, "element:fe", "element:fe", time.Minute)
	require.NoError(t, err)
	require.NoError(t, rtc.Invalidate(ctx, "element:fe"))
	_, err = rtc.Get(ctx, "element:fe", "element:fe", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, resolver.calls)
}
