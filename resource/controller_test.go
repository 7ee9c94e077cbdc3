package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 60))
	assert.Equal(t, int64(60), c.MemoryUsage())

	assert.False(t, c.TryAcquireMemory(50))
	assert.True(t, c.TryAcquireMemory(40))
	assert.Equal(t, int64(100), c.MemoryUsage())

	c.ReleaseMemory(100)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestControllerMemoryUnlimited(t *testing.T) {
	c := NewController(Config{})

	assert.True(t, c.TryAcquireMemory(1<<40))
	assert.Equal(t, int64(1<<40), c.MemoryUsage())
	c.ReleaseMemory(1 << 40)
}

func TestControllerBackgroundWorkers(t *testing.T) {
	c := NewController(Config{MaxBackgroundWorkers: 2})

	require.NoError(t, c.AcquireBackground(context.Background()))
	require.NoError(t, c.AcquireBackground(context.Background()))
	assert.False(t, c.TryAcquireBackground())

	c.ReleaseBackground()
	assert.True(t, c.TryAcquireBackground())
}

func TestControllerBackgroundBlocksUntilCanceled(t *testing.T) {
	c := NewController(Config{MaxBackgroundWorkers: 1})
	require.NoError(t, c.AcquireBackground(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.AcquireBackground(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestControllerIOLimit(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1024})

	// Within one second's budget the acquire is immediate.
	require.NoError(t, c.AcquireIO(context.Background(), 512))

	// A single request larger than the budget can never be satisfied.
	err := c.AcquireIO(context.Background(), 4096)
	require.Error(t, err)
}

func TestControllerIOUnlimited(t *testing.T) {
	c := NewController(Config{})

	assert.NoError(t, c.AcquireIO(context.Background(), 1<<30))
}

func TestNilControllerIsUnbounded(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(context.Background(), 100))
	assert.True(t, c.TryAcquireMemory(100))
	c.ReleaseMemory(100)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.NoError(t, c.AcquireBackground(context.Background()))
	assert.True(t, c.TryAcquireBackground())
	c.ReleaseBackground()
	assert.NoError(t, c.AcquireIO(context.Background(), 100))
}
