package cacheredis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Get reads key and decodes the stored value into dst with the default value
// serializer. It reports false, with dst reset to its zero value, on a miss.
func (c *Client) Get(ctx context.Context, key string, dst any) (bool, error) {
	return c.GetWith(ctx, key, dst, nil)
}

// GetWith is Get with an explicit value serializer (nil = client default).
func (c *Client) GetWith(ctx context.Context, key string, dst any, s Serializer) (bool, error) {
	ks, vs := c.serializers(s)
	k, err := encodeKey(ks, key)
	if err != nil {
		return false, err
	}

	var data []byte
	err = c.breaker.do(func() error {
		var err error
		data, err = c.cmd.Get(ctx, k).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return false, decode(vs, nil, dst)
	}
	if err != nil {
		return false, translate("get", key, err)
	}

	if err := decode(vs, data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key without expiry and returns the server status.
func (c *Client) Set(ctx context.Context, key string, value any) (string, error) {
	return c.SetWith(ctx, key, value, nil)
}

// SetWith is Set with an explicit value serializer (nil = client default).
func (c *Client) SetWith(ctx context.Context, key string, value any, s Serializer) (string, error) {
	k, v, err := c.encodeEntry(key, value, s)
	if err != nil {
		return "", err
	}

	var status string
	err = c.breaker.do(func() error {
		var err error
		status, err = c.cmd.Set(ctx, k, v, 0).Result()
		return err
	})
	if err != nil {
		return "", translate("set", key, err)
	}
	return status, nil
}

// SetEx stores value under key with a TTL. The TTL is applied in whole
// seconds; any sub-second remainder is truncated and a TTL under one second
// is rejected with ErrInvalidTTL.
func (c *Client) SetEx(ctx context.Context, key string, value any, ttl time.Duration) (string, error) {
	return c.SetExWith(ctx, key, value, ttl, nil)
}

// SetExWith is SetEx with an explicit value serializer (nil = client default).
func (c *Client) SetExWith(ctx context.Context, key string, value any, ttl time.Duration, s Serializer) (string, error) {
	expiration, err := wholeSeconds("setex", key, ttl)
	if err != nil {
		return "", err
	}
	k, v, err := c.encodeEntry(key, value, s)
	if err != nil {
		return "", err
	}

	var status string
	err = c.breaker.do(func() error {
		var err error
		status, err = c.cmd.SetEx(ctx, k, v, expiration).Result()
		return err
	})
	if err != nil {
		return "", translate("setex", key, err)
	}
	return status, nil
}

// SetNxEx atomically stores value under key with a TTL only if key is absent
// (SET NX EX). It returns the server status, or "" when key already existed.
func (c *Client) SetNxEx(ctx context.Context, key string, value any, ttl time.Duration) (string, error) {
	return c.SetNxExWith(ctx, key, value, ttl, nil)
}

// SetNxExWith is SetNxEx with an explicit value serializer (nil = client default).
func (c *Client) SetNxExWith(ctx context.Context, key string, value any, ttl time.Duration, s Serializer) (string, error) {
	expiration, err := wholeSeconds("setnxex", key, ttl)
	if err != nil {
		return "", err
	}
	k, v, err := c.encodeEntry(key, value, s)
	if err != nil {
		return "", err
	}

	var status string
	err = c.breaker.do(func() error {
		var err error
		status, err = c.cmd.SetArgs(ctx, k, v, redis.SetArgs{Mode: "NX", TTL: expiration}).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", translate("setnxex", key, err)
	}
	return status, nil
}

// Delete removes keys and returns how many existed. No keys means no round trip.
func (c *Client) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	ks, _ := c.serializers(nil)
	encoded, err := encodeKeys(ks, keys)
	if err != nil {
		return 0, err
	}

	var removed int64
	err = c.breaker.do(func() error {
		var err error
		removed, err = c.cmd.Del(ctx, encoded...).Result()
		return err
	})
	if err != nil {
		return 0, translate("delete", keysLabel(keys), err)
	}
	return removed, nil
}

// DeleteSet removes every key of the set. An empty or nil set means no round trip.
func (c *Client) DeleteSet(ctx context.Context, keys map[string]struct{}) (int64, error) {
	list := make([]string, 0, len(keys))
	for key := range keys {
		list = append(list, key)
	}
	return c.Delete(ctx, list...)
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	ks, _ := c.serializers(nil)
	k, err := encodeKey(ks, key)
	if err != nil {
		return false, err
	}

	var n int64
	err = c.breaker.do(func() error {
		var err error
		n, err = c.cmd.Exists(ctx, k).Result()
		return err
	})
	if err != nil {
		return false, translate("exists", key, err)
	}
	return n > 0, nil
}

// Expire sets or replaces the TTL of key, truncated to whole seconds. It
// reports false if key does not exist.
func (c *Client) Expire(ctx context.Context, key string, timeout time.Duration) (bool, error) {
	ks, _ := c.serializers(nil)
	k, err := encodeKey(ks, key)
	if err != nil {
		return false, err
	}

	var ok bool
	err = c.breaker.do(func() error {
		var err error
		ok, err = c.cmd.Do(ctx, "EXPIRE", k, int64(timeout/time.Second)).Bool()
		return err
	})
	if err != nil {
		return false, translate("expire", key, err)
	}
	return ok, nil
}

// TTL returns the remaining time to live of key in seconds. The server
// sentinels pass through unchanged: -1 when key has no expiry, -2 when key
// does not exist.
func (c *Client) TTL(ctx context.Context, key string) (int64, error) {
	ks, _ := c.serializers(nil)
	k, err := encodeKey(ks, key)
	if err != nil {
		return 0, err
	}

	var ttl int64
	err = c.breaker.do(func() error {
		var err error
		// Raw command: go-redis converts TTL replies into time.Duration.
		ttl, err = c.cmd.Do(ctx, "TTL", k).Int64()
		return err
	})
	if err != nil {
		return 0, translate("ttl", key, err)
	}
	return ttl, nil
}

// encodeEntry serializes key with the key serializer and value with s, or
// the default value serializer when s is nil.
func (c *Client) encodeEntry(key string, value any, s Serializer) (string, []byte, error) {
	ks, vs := c.serializers(s)
	k, err := encodeKey(ks, key)
	if err != nil {
		return "", nil, err
	}
	v, err := encode(vs, value)
	if err != nil {
		return "", nil, err
	}
	return k, v, nil
}

// wholeSeconds truncates ttl to whole seconds and rejects anything below one.
func wholeSeconds(op, key string, ttl time.Duration) (time.Duration, error) {
	secs := ttl / time.Second
	if secs < 1 {
		return 0, &ClientError{Op: op, Key: key, Err: ErrInvalidTTL}
	}
	return secs * time.Second, nil
}

// keysLabel renders a key list for error messages.
func keysLabel(keys []string) string {
	if len(keys) == 1 {
		return keys[0]
	}
	return fmt.Sprintf("%s (+%d more)", keys[0], len(keys)-1)
}
