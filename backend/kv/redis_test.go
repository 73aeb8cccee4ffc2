package kv

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := DialRedis(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	r := NewRedis(client)
	key := "edulms_test_key"
	require.NoError(t, r.Set(ctx, key, "v", time.Minute))

	v, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, r.Delete(ctx, key))
	_, err = r.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}
