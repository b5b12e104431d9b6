package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"bridgeid/internal/platform/config"
)

var (
	redisPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridgeid_redis_pool_total_conns",
		Help: "Number of total connections in the pool",
	})
	redisPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridgeid_redis_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})
	redisPoolTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridgeid_redis_pool_timeouts_total",
		Help: "Number of times a connection was not obtained due to timeout",
	})
)

// Client wraps the go-redis client with health checking and pool metrics.
type Client struct {
	*redis.Client
	lastTimeouts uint32
}

// New creates a Redis client. Returns nil, nil when no URL is configured.
func New(ctx context.Context, cfg config.Redis) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RecordPoolStats copies pool statistics into Prometheus.
// Call periodically from a background goroutine.
func (c *Client) RecordPoolStats() {
	stats := c.PoolStats()
	redisPoolTotalConns.Set(float64(stats.TotalConns))
	redisPoolIdleConns.Set(float64(stats.IdleConns))
	if stats.Timeouts > c.lastTimeouts {
		redisPoolTimeouts.Add(float64(stats.Timeouts - c.lastTimeouts))
	}
	c.lastTimeouts = stats.Timeouts
}
