package cacheredis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// Builder provides a fluent API for creating a Client.
type Builder struct {
	config          *Config
	keySerializer   Serializer
	valueSerializer Serializer
	logger          *slog.Logger
	breaker         *gobreaker.Settings
	cmd             *redis.Client
	pubsub          *redis.Client
}

// NewBuilder creates a new Builder. Without WithConfig, Build uses DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfig sets the connection config.
func (b *Builder) WithConfig(config *Config) *Builder {
	b.config = config
	return b
}

// WithKeySerializer sets the key serializer.
func (b *Builder) WithKeySerializer(s Serializer) *Builder {
	b.keySerializer = s
	return b
}

// WithValueSerializer sets the default value serializer.
func (b *Builder) WithValueSerializer(s Serializer) *Builder {
	b.valueSerializer = s
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithCircuitBreaker enables a circuit breaker around store round trips.
func (b *Builder) WithCircuitBreaker(settings gobreaker.Settings) *Builder {
	b.breaker = &settings
	return b
}

// WithRedisClients makes Build wrap existing go-redis clients instead of
// dialing. pubsub may be nil.
func (b *Builder) WithRedisClients(cmd, pubsub *redis.Client) *Builder {
	b.cmd = cmd
	b.pubsub = pubsub
	return b
}

// effectiveConfig returns a copy of the config with builder overrides applied.
func (b *Builder) effectiveConfig() *Config {
	cfg := DefaultConfig()
	if b.config != nil {
		copied := *b.config
		cfg = &copied
	}
	if b.logger != nil {
		cfg.Logger = b.logger
	}
	if b.breaker != nil {
		cfg.CircuitBreaker = b.breaker
	}
	return cfg
}

// Build creates the Client.
func (b *Builder) Build(ctx context.Context) (*Client, error) {
	cfg := b.effectiveConfig()

	var (
		client *Client
		err    error
	)
	if b.cmd != nil {
		client, err = NewClientFromRedis(b.cmd, b.pubsub, cfg)
	} else {
		client, err = NewClient(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	// Setters only reject nil, which is filtered here.
	if b.keySerializer != nil {
		_ = client.SetKeySerializer(b.keySerializer)
	}
	if b.valueSerializer != nil {
		_ = client.SetValueSerializer(b.valueSerializer)
	}

	return client, nil
}
