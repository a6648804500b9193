package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "booking-service", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, LockBackendScript, cfg.Lock.Backend)
	assert.Equal(t, 100*time.Millisecond, cfg.Lock.BaseDelay)
	assert.Equal(t, time.Second, cfg.Lock.MaxDelay)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ArticleTTL)
	assert.Equal(t, int64(5), cfg.RateLimit.IPLimit)
	assert.Equal(t, int64(10), cfg.RateLimit.APIKeyLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  port: 9090
lock:
  backend: redlock
  lease: 10s
  redlock_addrs:
    - "redis-a:6379"
    - "redis-b:6379"
    - "redis-c:6379"
cache:
  backend: memory
  article_ttl: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("APP_APP_PORT", "7070")
	t.Setenv("APP_RATE_LIMIT_IP_LIMIT", "50")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.App.Port, "env overrides file")
	assert.Equal(t, int64(50), cfg.RateLimit.IPLimit)
	assert.Equal(t, LockBackendRedlock, cfg.Lock.Backend)
	assert.Equal(t, 10*time.Second, cfg.Lock.Lease)
	assert.Len(t, cfg.Lock.RedlockAddrs, 3)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Cache.ArticleTTL)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsZeroRefreshDurations(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_REFRESH_INTERVAL", "0s")
	t.Setenv("APP_REFRESH_TIMEOUT", "0s")

	_, err := Load("")
	assert.ErrorContains(t, err, "refresh.interval")

	t.Setenv("APP_REFRESH_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Refresh.Enabled)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Lock:  LockConfig{Backend: LockBackendScript, Lease: time.Second},
			Cache: CacheConfig{Enabled: true, Backend: CacheBackendRedis},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown lock backend", mutate: func(c *Config) { c.Lock.Backend = "zookeeper" }, wantErr: true},
		{name: "redlock without addrs", mutate: func(c *Config) { c.Lock.Backend = LockBackendRedlock }, wantErr: true},
		{name: "zero lease", mutate: func(c *Config) { c.Lock.Lease = 0 }, wantErr: true},
		{name: "unknown cache backend", mutate: func(c *Config) { c.Cache.Backend = "memcached" }, wantErr: true},
		{name: "cache disabled ignores backend", mutate: func(c *Config) {
			c.Cache.Enabled = false
			c.Cache.Backend = "memcached"
		}},
		{name: "refresh with zero interval", mutate: func(c *Config) {
			c.Refresh = RefreshConfig{Enabled: true, Timeout: time.Second}
		}, wantErr: true},
		{name: "refresh with zero timeout", mutate: func(c *Config) {
			c.Refresh = RefreshConfig{Enabled: true, Interval: time.Minute}
		}, wantErr: true},
		{name: "refresh disabled ignores durations", mutate: func(c *Config) {
			c.Refresh = RefreshConfig{Enabled: false}
		}},
		{name: "kafka without topic", mutate: func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = []string{"k:9092"}
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCacheConfig_Shared(t *testing.T) {
	assert.True(t, (&CacheConfig{Backend: CacheBackendRedis}).Shared())
	assert.False(t, (&CacheConfig{Backend: CacheBackendMemory}).Shared())
}
