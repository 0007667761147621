package cacheredis

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// Client is a typed facade over a Redis server. Keys and values pass through
// the configured serializers on the way in and out; failures are reported as
// either *SerializationError or *ClientError.
//
// A Client owns two long-lived go-redis clients: one for commands and one for
// publishing. Each Subscribe call opens an additional dedicated connection.
// A Client is safe for concurrent use.
type Client struct {
	cmd       *redis.Client
	pubsub    *redis.Client
	logger    *slog.Logger
	breaker   *breaker
	scanCount int64

	mu              sync.RWMutex
	keySerializer   Serializer
	valueSerializer Serializer

	subsMu sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewClient validates cfg, connects the command and pub/sub clients and
// verifies both with a PING. A nil cfg means DefaultConfig().
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ClientError{Op: "new", Err: err}
	}

	cmd, pubsub, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := newClient(cmd, pubsub, cfg)
	c.logger.Info("redis client configured",
		"addr", cfg.Addr(),
		"db", cfg.Database,
		"timeout", cfg.Timeout,
		"auth", cfg.Password != "",
	)
	c.probeServer(ctx)
	return c, nil
}

// NewClientFromRedis wraps already configured go-redis clients. pubsub may be
// nil, in which case cmd also serves publishes and subscriptions. Only the
// behavioural fields of cfg (Logger, ScanCount, CircuitBreaker) are used and
// validated; the connection fields are ignored.
func NewClientFromRedis(cmd, pubsub *redis.Client, cfg *Config) (*Client, error) {
	if cmd == nil {
		return nil, &ClientError{Op: "new", Err: errors.New("redis client is nil")}
	}
	if pubsub == nil {
		pubsub = cmd
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validateBehaviour(); err != nil {
		return nil, &ClientError{Op: "new", Err: err}
	}
	return newClient(cmd, pubsub, cfg), nil
}

func newClient(cmd, pubsub *redis.Client, cfg *Config) *Client {
	logger := cfg.logger()
	return &Client{
		cmd:             cmd,
		pubsub:          pubsub,
		logger:          logger,
		breaker:         newBreaker(cfg.CircuitBreaker, logger),
		scanCount:       cfg.scanCount(),
		keySerializer:   NewStringSerializer(),
		valueSerializer: NewJSONSerializer(),
		subs:            make(map[*Subscription]struct{}),
	}
}

// KeySerializer returns the serializer applied to every key.
func (c *Client) KeySerializer() Serializer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keySerializer
}

// ValueSerializer returns the default value serializer.
func (c *Client) ValueSerializer() Serializer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.valueSerializer
}

// SetKeySerializer replaces the key serializer. Operations already in flight
// keep the serializer they started with.
func (c *Client) SetKeySerializer(s Serializer) error {
	if s == nil {
		return ErrNilSerializer
	}
	c.mu.Lock()
	c.keySerializer = s
	c.mu.Unlock()
	return nil
}

// SetValueSerializer replaces the default value serializer. Operations already
// in flight keep the serializer they started with.
func (c *Client) SetValueSerializer(s Serializer) error {
	if s == nil {
		return ErrNilSerializer
	}
	c.mu.Lock()
	c.valueSerializer = s
	c.mu.Unlock()
	return nil
}

// BreakerState reports the circuit breaker state (StateClosed when no breaker is configured).
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Close closes open subscriptions and both connections. Further operations
// fail with *ClientError.
func (c *Client) Close() error {
	c.subsMu.Lock()
	if c.closed {
		c.subsMu.Unlock()
		return nil
	}
	c.closed = true
	subs := make([]*Subscription, 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	c.subsMu.Unlock()

	var errs []error
	for _, s := range subs {
		errs = append(errs, s.Close())
	}
	errs = append(errs, c.cmd.Close())
	if c.pubsub != c.cmd {
		errs = append(errs, c.pubsub.Close())
	}
	return errors.Join(errs...)
}

// serializers resolves the key serializer and the value serializer, using
// override when it is non-nil.
func (c *Client) serializers(override Serializer) (Serializer, Serializer) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if override != nil {
		return c.keySerializer, override
	}
	return c.keySerializer, c.valueSerializer
}

// encode runs s.Serialize and guarantees a *SerializationError on failure,
// whatever the serializer implementation returned.
func encode(s Serializer, v any) ([]byte, error) {
	data, err := s.Serialize(v)
	if err != nil {
		return nil, asSerializationError("serialize", err)
	}
	return data, nil
}

// decode runs s.Deserialize and guarantees a *SerializationError on failure.
func decode(s Serializer, data []byte, dst any) error {
	if err := s.Deserialize(data, dst); err != nil {
		return asSerializationError("deserialize", err)
	}
	return nil
}

// encodeKey serializes key into the string form go-redis sends as a bulk string.
func encodeKey(ks Serializer, key string) (string, error) {
	data, err := encode(ks, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func encodeKeys(ks Serializer, keys []string) ([]string, error) {
	out := make([]string, len(keys))
	for i, key := range keys {
		k, err := encodeKey(ks, key)
		if err != nil {
			return nil, err
		}
		out[i] = k
	}
	return out, nil
}

func asSerializationError(op string, err error) error {
	if IsSerializationError(err) {
		return err
	}
	return &SerializationError{Op: op, Err: err}
}
