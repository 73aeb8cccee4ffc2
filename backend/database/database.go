// Package database obtains the hosted backend handles (Postgres through GORM,
// optionally Redis) with a bounded retry loop and caches them process-wide.
package database

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rdcshop/backend/config"
	"rdcshop/backend/kv"
)

// Handles are the live connections to the hosted backend. Redis is nil when
// no REDIS_URL is configured.
type Handles struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func (h *Handles) Close() error {
	var firstErr error
	if h.Redis != nil {
		firstErr = h.Redis.Close()
	}
	if h.DB != nil {
		if sqlDB, err := h.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

type Status struct {
	Initialized bool   `json:"initialized"`
	Error       string `json:"error,omitempty"`
}

// Connector hands out the cached Handles, connecting on first use.
// Concurrent callers block on the same mutex; a failed attempt leaves the
// cache empty so the next call starts over.
type Connector struct {
	Retries int
	Delay   time.Duration

	open   func(ctx context.Context) (*Handles, error)
	sleep  func(ctx context.Context, d time.Duration) error
	logger *log.Logger

	mu      sync.Mutex
	handles *Handles
	lastErr error
}

func NewConnector(cfg *config.Config, logger *log.Logger) *Connector {
	c := &Connector{
		Retries: cfg.DBConnectRetries,
		Delay:   cfg.DBRetryDelay,
		sleep:   sleepCtx,
		logger:  logger,
	}
	c.open = func(ctx context.Context) (*Handles, error) { return Open(ctx, cfg) }
	return c
}

// Get returns the cached handles or connects, retrying with a delay of
// attempt × Delay between failures.
func (c *Connector) Get(ctx context.Context) (*Handles, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handles != nil {
		return c.handles, nil
	}

	retries := c.Retries
	if retries < 1 {
		retries = 1
	}

	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		var h *Handles
		h, err = c.open(ctx)
		if err == nil {
			c.handles, c.lastErr = h, nil
			c.logger.Printf("backend ready after %d attempt(s)", attempt)
			return h, nil
		}
		c.logger.Printf("backend connect attempt %d/%d failed: %v", attempt, retries, err)

		if attempt < retries {
			if werr := c.sleep(ctx, time.Duration(attempt)*c.Delay); werr != nil {
				err = werr
				break
			}
		}
	}

	c.lastErr = err
	return nil, errors.Wrap(err, "backend not ready")
}

func (c *Connector) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{Initialized: c.handles != nil}
	if c.lastErr != nil {
		st.Error = c.lastErr.Error()
	}
	return st
}

// Reset closes and forgets the cached handles.
func (c *Connector) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.handles != nil {
		err = c.handles.Close()
	}
	c.handles, c.lastErr = nil, nil
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Open connects to Postgres and, when configured, Redis.
func Open(ctx context.Context, cfg *config.Config) (*Handles, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		PrepareStmt:    true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "postgres pool")
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	h := &Handles{DB: db}
	if cfg.RedisURL != "" {
		rdb, err := kv.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		h.Redis = rdb
	}
	return h, nil
}
