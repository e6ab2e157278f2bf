package upstream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter_NeverExceedsCapacityInWindow(t *testing.T) {
	limiter := NewSlidingWindowLimiter(5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
	require.Equal(t, 5, limiter.InWindow())
}

func TestSlidingWindowLimiter_BlocksPastCapacity(t *testing.T) {
	limiter := NewSlidingWindowLimiter(2)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, limiter.Wait(context.Background()))
	require.NoError(t, limiter.Wait(context.Background()))

	err := limiter.Wait(ctx)
	require.Error(t, err, "third call within the 60s window must block until ctx deadline")
}
