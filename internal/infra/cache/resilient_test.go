package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type flakyCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	err   error
	calls int
}

func (c *flakyCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.data[key], nil
}

func (c *flakyCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return c.err
	}
	c.data[key] = value
	return nil
}

func (c *flakyCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return c.err
	}
	delete(c.data, key)
	return nil
}

func (c *flakyCache) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *flakyCache) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestResilient_PassThrough(t *testing.T) {
	backend := &flakyCache{data: map[string][]byte{}}
	r := NewResilient("test", backend, BreakerConfig{Timeout: time.Minute}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	require.NoError(t, r.Delete(ctx, "k"))
	got, err = r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResilient_ErrorsBecomeMisses(t *testing.T) {
	backend := &flakyCache{data: map[string][]byte{}, err: errors.New("connection refused")}
	r := NewResilient("test", backend, BreakerConfig{Timeout: time.Minute, MinRequests: 100}, zap.NewNop())
	ctx := context.Background()

	got, err := r.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Error(t, r.Delete(ctx, "k"))
}

func TestResilient_OpensAndRecovers(t *testing.T) {
	backend := &flakyCache{data: map[string][]byte{}, err: errors.New("timeout")}
	r := NewResilient("test", backend, BreakerConfig{
		MaxRequests:  1,
		Timeout:      100 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  3,
	}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = r.Get(ctx, "k")
	}
	require.Equal(t, gobreaker.StateOpen, r.State())

	callsWhenOpen := backend.callCount()
	_, _ = r.Get(ctx, "k")
	assert.Equal(t, callsWhenOpen, backend.callCount(), "open breaker must not reach the backend")

	backend.setErr(nil)
	time.Sleep(150 * time.Millisecond)

	_, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, r.State())
}
