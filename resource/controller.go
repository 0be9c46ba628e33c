package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a page allocation would exceed the
// memory budget.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits. Zero values mean "unlimited" except for
// MaxBackgroundWorkers, which defaults to 1.
type Config struct {
	// MemoryLimitBytes is the hard limit for page memory.
	MemoryLimitBytes int64 `env:"MEMORY_LIMIT_BYTES"`

	// MaxBackgroundWorkers bounds concurrent page encoders.
	MaxBackgroundWorkers int64 `env:"MAX_BACKGROUND_WORKERS"`

	// IOLimitBytesPerSec is the maximum snapshot throughput.
	IOLimitBytesPerSec int64 `env:"IO_LIMIT_BYTES_PER_SEC"`
}

// EnvPrefix prefixes the environment variables read by ConfigFromEnv.
const EnvPrefix = "CHUNKVEC_"

// ConfigFromEnv reads a Config from CHUNKVEC_MEMORY_LIMIT_BYTES,
// CHUNKVEC_MAX_BACKGROUND_WORKERS and CHUNKVEC_IO_LIMIT_BYTES_PER_SEC.
// Unset variables keep their zero value.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return Config{}, fmt.Errorf("resource: %w", err)
	}
	return cfg, nil
}

// Controller manages shared resources.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	bgSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxBackgroundWorkers <= 0 {
		cfg.MaxBackgroundWorkers = 1
	}

	c := &Controller{
		cfg:   cfg,
		bgSem: semaphore.NewWeighted(cfg.MaxBackgroundWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory reserves bytes of page memory without blocking.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns bytes previously reserved with AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured limit (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// MaxWorkers returns the number of background worker slots.
func (c *Controller) MaxWorkers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxBackgroundWorkers)
}

// AcquireBackground reserves a worker slot, blocking until one is free.
func (c *Controller) AcquireBackground(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.bgSem.Acquire(ctx, 1)
}

// TryAcquireBackground reserves a worker slot without blocking.
func (c *Controller) TryAcquireBackground() bool {
	if c == nil {
		return true
	}
	return c.bgSem.TryAcquire(1)
}

// ReleaseBackground releases a worker slot.
func (c *Controller) ReleaseBackground() {
	if c == nil {
		return
	}
	c.bgSem.Release(1)
}

// AcquireIO waits until the IO limit admits bytes.
// Requests larger than the burst are admitted in burst-sized steps.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireIO takes IO tokens without blocking.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}
