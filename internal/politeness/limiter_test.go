package politeness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterFirstRequestIsImmediate(t *testing.T) {
	l := New(Config{RequestsPerSecond: 1})
	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), "https://example.wiki/wiki/A"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiterThrottlesSameDomain(t *testing.T) {
	l := New(Config{RequestsPerSecond: 20})
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "https://example.wiki/wiki/A"))

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://example.wiki/wiki/B"))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestLimiterDomainsAreIndependent(t *testing.T) {
	l := New(Config{RequestsPerSecond: 1})
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "https://one.example/a"))

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://two.example/b"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiterUnlimitedWhenRateIsZero(t *testing.T) {
	l := New(Config{})
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 50; i++ {
		require.NoError(t, l.Wait(ctx, "https://example.wiki/wiki/A"))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiterHonorsContext(t *testing.T) {
	l := New(Config{RequestsPerSecond: 0.001})
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "https://example.wiki/wiki/A"))

	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := l.Wait(cancelCtx, "https://example.wiki/wiki/B")
	assert.Error(t, err)
}
