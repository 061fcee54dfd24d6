package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicyjump/storefront/pkg/config"
)

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		db       int
		password string
		tls      bool
	}{
		{"default config", "redis://localhost:6379", "localhost:6379", 0, "", false},
		{"database and password", "redis://:s3cret@cache.internal:6380/2", "cache.internal:6380", 2, "s3cret", false},
		{"tls", "rediss://default:pw@redis.spicyjump.io:6379/1", "redis.spicyjump.io:6379", 1, "pw", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := clientOptions(tt.url)
			require.NoError(t, err)

			assert.Equal(t, tt.addr, opts.Addr)
			assert.Equal(t, tt.db, opts.DB)
			assert.Equal(t, tt.password, opts.Password)
			assert.Equal(t, tt.tls, opts.TLSConfig != nil)

			assert.Equal(t, 20, opts.PoolSize)
			assert.Equal(t, 4, opts.MinIdleConns)
			assert.Equal(t, 3, opts.MaxRetries)
			assert.Equal(t, 3*time.Second, opts.ReadTimeout)
			assert.Equal(t, 4*time.Second, opts.PoolTimeout)
		})
	}
}

func TestClientOptions_Rejects(t *testing.T) {
	for _, url := range []string{"not-a-valid-url", "http://localhost:6379", "redis://localhost:6379/notadb"} {
		_, err := clientOptions(url)
		assert.Error(t, err, url)
	}
}

func TestNewRedisClient_UnreachableHost(t *testing.T) {
	_, err := NewRedisClient(&config.Config{RedisURL: "redis://localhost:19999"})
	assert.ErrorContains(t, err, "failed to ping redis")
}

func TestClose_WithoutClient(t *testing.T) {
	assert.NoError(t, (&RedisClient{}).Close())
}

// Integration tests, skipped unless REDIS_URL is set.
func TestRedisIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}

	rc, err := NewRedisClient(&config.Config{RedisURL: redisURL})
	require.NoError(t, err)
	require.NotNil(t, rc.Client())

	require.NoError(t, rc.Ping(context.Background()))
	require.NoError(t, rc.Close())
	assert.Error(t, rc.Ping(context.Background()), "ping after close")
}
