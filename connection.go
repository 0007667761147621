package cacheredis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// minSetNxExVersion is the first server release accepting SET key value NX EX seconds.
const minSetNxExVersion = "2.6.12"

// redisOptions maps a Config onto go-redis options. Every new connection is
// pinged before it is handed out; reconnection is left to the go-redis pool.
func redisOptions(cfg *Config, poolSize int) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.Database,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		PoolSize:     poolSize,
		MaxRetries:   cfg.MaxRetries,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			return cn.Ping(ctx).Err()
		},
	}
}

// dial creates the command client and the pub/sub client and verifies both
// are reachable.
func dial(ctx context.Context, cfg *Config) (cmd, pubsub *redis.Client, err error) {
	cmd = redis.NewClient(redisOptions(cfg, cfg.PoolSize))
	// Publishes are short and serialized through one connection; each
	// Subscribe gets its own dedicated connection outside this pool.
	pubsub = redis.NewClient(redisOptions(cfg, 1))

	if err := cmd.Ping(ctx).Err(); err != nil {
		_ = cmd.Close()
		_ = pubsub.Close()
		return nil, nil, &ClientError{Op: "connect", Key: cfg.Addr(), Err: err}
	}
	if err := pubsub.Ping(ctx).Err(); err != nil {
		_ = cmd.Close()
		_ = pubsub.Close()
		return nil, nil, &ClientError{Op: "connect", Key: cfg.Addr(), Err: err}
	}
	return cmd, pubsub, nil
}

// probeServer logs the server version and warns about servers too old for
// the commands this client issues. Failures are logged, not returned.
func (c *Client) probeServer(ctx context.Context) {
	info, err := c.Info(ctx)
	if err != nil {
		c.logger.Warn("redis server info unavailable", "err", err)
		return
	}
	c.logger.Info("redis connected", "version", info.Version, "mode", info.Mode, "role", info.Role)
	if info.Version != "" && !info.AtLeast(minSetNxExVersion) {
		c.logger.Warn("redis server does not support SET NX EX", "version", info.Version, "required", minSetNxExVersion)
	}
}
