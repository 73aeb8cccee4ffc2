// Package jobs runs the scheduled maintenance work of the API.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CouponExpirer is the part of the order service the coupon job needs.
type CouponExpirer interface {
	DeactivateExpiredCoupons(ctx context.Context) (int64, error)
}

// Schedule of the coupon job, with seconds.
const ExpireCouponsSpec = "0 0 * * * *"

// Manager owns the cron scheduler.
type Manager struct {
	cron    *cron.Cron
	coupons CouponExpirer
	logger  *log.Logger
	timeout time.Duration
}

func NewManager(coupons CouponExpirer, logger *log.Logger) *Manager {
	return &Manager{
		cron:    cron.New(cron.WithSeconds()),
		coupons: coupons,
		logger:  logger,
		timeout: time.Minute,
	}
}

// Start registers the jobs and starts the scheduler.
func (m *Manager) Start() error {
	if _, err := m.cron.AddFunc(ExpireCouponsSpec, m.ExpireCoupons); err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Printf("cron: %d jobs scheduled", len(m.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish.
func (m *Manager) Stop() {
	<-m.cron.Stop().Done()
	m.logger.Println("cron: stopped")
}

// ExpireCoupons switches off coupons past their validity window.
func (m *Manager) ExpireCoupons() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	start := time.Now()
	n, err := m.coupons.DeactivateExpiredCoupons(ctx)
	if err != nil {
		m.logger.Printf("[CRON] expire_coupons failed: %v", err)
		return
	}
	m.logger.Printf("[CRON] expire_coupons: %d deactivated in %s", n, time.Since(start))
}
