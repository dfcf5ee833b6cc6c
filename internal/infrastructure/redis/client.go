package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientOptions tunes the connection pool on top of what the URL carries.
// Zero values keep the URL or library defaults.
type ClientOptions struct {
	PoolSize    int
	PingTimeout time.Duration
}

const defaultPingTimeout = 3 * time.Second

// NewClient parses redisURL, applies opts and checks the server answers PING
// within the ping timeout.
func NewClient(ctx context.Context, redisURL string, opts ClientOptions) (*redis.Client, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.PoolSize > 0 {
		parsed.PoolSize = opts.PoolSize
	}

	client := redis.NewClient(parsed)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", parsed.Addr, err)
	}

	return client, nil
}
