package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/samudrayan/backend/internal/cache"
	"github.com/samudrayan/backend/internal/services"
	"github.com/samudrayan/backend/pkg/logger"
)

const (
	defaultBookingMaxAge = 30 * time.Minute
	defaultBookingSpec   = "@every 15m"
	defaultCacheSpec     = "@hourly"
)

// Cleaner coordinates background maintenance tasks: expiring bookings whose
// payment window has lapsed and purging expired cache entries. Verification
// audit logs are append-only and are never touched here.
type Cleaner struct {
	bookings *services.BookingService
	cache    *cache.DatabaseStore
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	enabled  bool

	bookingMaxAge   time.Duration
	bookingSchedule string
	cacheSchedule   string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithBookingMaxAge adjusts how long a booking may sit in pending_payment
// before it is expired.
func WithBookingMaxAge(age time.Duration) Option {
	return func(cleaner *Cleaner) {
		if age > 0 {
			cleaner.bookingMaxAge = age
		}
	}
}

// WithBookingSchedule overrides the cron specification for booking expiry.
func WithBookingSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.bookingSchedule = spec
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache purging.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding cleanup job being skipped.
func NewCleaner(bookings *services.BookingService, cacheStore *cache.DatabaseStore, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		bookings:        bookings,
		cache:           cacheStore,
		now:             time.Now,
		bookingMaxAge:   defaultBookingMaxAge,
		bookingSchedule: defaultBookingSpec,
		cacheSchedule:   defaultCacheSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.bookings != nil || cleaner.cache != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at
// least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.bookings != nil {
		if _, err := c.cron.AddFunc(c.bookingSchedule, func() {
			ctx := context.Background()
			expired, err := c.bookings.ExpireStale(ctx, c.bookingMaxAge)
			if err != nil {
				c.log.Warn("booking expiry failed", zap.Error(err))
				return
			}
			if expired > 0 {
				c.log.Info("expired unpaid bookings", zap.Int64("count", expired))
			}
		}); err != nil {
			return err
		}
	}

	if c.cache != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			ctx := context.Background()
			if _, err := c.cache.PurgeExpired(ctx, c.now()); err != nil {
				c.log.Warn("cache purge failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used
// in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.bookings != nil {
		if _, err := c.bookings.ExpireStale(ctx, c.bookingMaxAge); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.cache != nil {
		if _, err := c.cache.PurgeExpired(ctx, c.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
