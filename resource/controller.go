// Package resource implements admission control for index builds and queries.
//
// The Controller manages three resources:
//
//   - Memory: a budget for index builds (non-blocking, fail-fast)
//   - Build slots: how many builds may run at once (blocking)
//   - Query rate: a token bucket for queries (blocking or try)
//
// All methods handle a nil Controller gracefully: they become no-ops.
// All methods are safe for concurrent use.
package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for memory held by indexes and
	// in-flight builds. If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentBuilds is the maximum number of builds running at once.
	// If 0, defaults to 1.
	MaxConcurrentBuilds int64

	// QueriesPerSec caps the query admission rate. If 0, unlimited.
	QueriesPerSec float64

	// QueryBurst is the token bucket size for queries.
	// If 0, defaults to max(1, QueriesPerSec).
	QueryBurst int
}

// Controller manages global resources (memory, builds, query rate).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Builds
	buildSem *semaphore.Weighted

	// Queries
	queryLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentBuilds <= 0 {
		cfg.MaxConcurrentBuilds = 1
	}

	c := &Controller{
		cfg:      cfg,
		buildSem: semaphore.NewWeighted(cfg.MaxConcurrentBuilds),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.QueriesPerSec > 0 {
		burst := cfg.QueryBurst
		if burst <= 0 {
			burst = max(1, int(cfg.QueriesPerSec))
		}
		c.queryLimiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSec), burst)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireBuild reserves a build slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireBuild(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.buildSem.Acquire(ctx, 1)
}

// TryAcquireBuild attempts to reserve a build slot without blocking.
func (c *Controller) TryAcquireBuild() bool {
	if c == nil {
		return true
	}
	return c.buildSem.TryAcquire(1)
}

// ReleaseBuild releases a build slot.
func (c *Controller) ReleaseBuild() {
	if c == nil {
		return
	}
	c.buildSem.Release(1)
}

// AcquireQuery waits until the query rate allows one more query.
func (c *Controller) AcquireQuery(ctx context.Context) error {
	if c == nil || c.queryLimiter == nil {
		return nil
	}
	return c.queryLimiter.Wait(ctx)
}

// TryAcquireQuery reports whether a query may run now without waiting.
func (c *Controller) TryAcquireQuery() bool {
	if c == nil || c.queryLimiter == nil {
		return true
	}
	return c.queryLimiter.AllowN(time.Now(), 1)
}
