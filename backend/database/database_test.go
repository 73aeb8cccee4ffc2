package database

import (
	"bytes"
	"context"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	failures int32
	calls    int32
	delays   []time.Duration
	mu       sync.Mutex
}

func (f *fakeBackend) connector(retries int) *Connector {
	return &Connector{
		Retries: retries,
		Delay:   2 * time.Second,
		logger:  log.New(&bytes.Buffer{}, "", 0),
		open: func(ctx context.Context) (*Handles, error) {
			n := atomic.AddInt32(&f.calls, 1)
			if n <= atomic.LoadInt32(&f.failures) {
				return nil, errors.New("connection refused")
			}
			return &Handles{}, nil
		},
		sleep: func(ctx context.Context, d time.Duration) error {
			f.mu.Lock()
			f.delays = append(f.delays, d)
			f.mu.Unlock()
			return ctx.Err()
		},
	}
}

func TestGetRetriesWithGrowingDelay(t *testing.T) {
	f := &fakeBackend{failures: 2}
	c := f.connector(3)

	h, err := c.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.EqualValues(t, 3, f.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, f.delays)
	assert.True(t, c.Status().Initialized)
}

func TestGetGivesUpAfterRetries(t *testing.T) {
	f := &fakeBackend{failures: 10}
	c := f.connector(3)

	_, err := c.Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.EqualValues(t, 3, f.calls)
	assert.Len(t, f.delays, 2, "no wait after the last attempt")

	st := c.Status()
	assert.False(t, st.Initialized)
	assert.Contains(t, st.Error, "connection refused")

	// A later call starts over with fresh attempts.
	atomic.StoreInt32(&f.failures, 0)
	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.Status().Error)
}

func TestHandlesAreCachedAcrossConcurrentCallers(t *testing.T) {
	f := &fakeBackend{}
	c := f.connector(3)

	var wg sync.WaitGroup
	results := make([]*Handles, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := c.Get(context.Background())
			assert.NoError(t, err)
			results[i] = h
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, f.calls)
	for _, h := range results {
		assert.Same(t, results[0], h)
	}

	require.NoError(t, c.Reset())
	assert.False(t, c.Status().Initialized)
	_, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.calls)
}

func TestGetStopsWaitingOnCancel(t *testing.T) {
	f := &fakeBackend{failures: 10}
	c := f.connector(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 1, f.calls)
}
