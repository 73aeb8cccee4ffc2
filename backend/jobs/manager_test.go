package jobs

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls int
	n     int64
	err   error
}

func (f *fakeExpirer) DeactivateExpiredCoupons(ctx context.Context) (int64, error) {
	f.calls++
	return f.n, f.err
}

func TestExpireCoupons(t *testing.T) {
	var buf bytes.Buffer
	fake := &fakeExpirer{n: 3}
	m := NewManager(fake, log.New(&buf, "", 0))

	m.ExpireCoupons()
	assert.Equal(t, 1, fake.calls)
	assert.Contains(t, buf.String(), "3 deactivated")

	fake.err = errors.New("redis down")
	m.ExpireCoupons()
	assert.Contains(t, buf.String(), "expire_coupons failed: redis down")
}

func TestStartStop(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(&fakeExpirer{}, log.New(&buf, "", 0))
	require.NoError(t, m.Start())
	assert.Len(t, m.cron.Entries(), 1)
	m.Stop()
	assert.Contains(t, buf.String(), "cron: stopped")
}

func TestScheduleIsHourly(t *testing.T) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(ExpireCouponsSpec)
	require.NoError(t, err)
	next := sched.Next(mustTime(t, "2025-01-01T10:15:00Z"))
	assert.Equal(t, mustTime(t, "2025-01-01T11:00:00Z"), next)
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}
