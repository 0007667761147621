package cacheredis

import (
	"context"
)

// LPush prepends values to the list at key, encoding each with s (nil =
// default value serializer), and returns the new list length. No values
// means no round trip.
func (c *Client) LPush(ctx context.Context, key string, s Serializer, values ...string) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}

	ks, vs := c.serializers(s)
	k, err := encodeKey(ks, key)
	if err != nil {
		return 0, err
	}
	encoded := make([]any, len(values))
	for i, value := range values {
		v, err := encode(vs, value)
		if err != nil {
			return 0, err
		}
		encoded[i] = v
	}

	var length int64
	err = c.breaker.do(func() error {
		var err error
		length, err = c.cmd.LPush(ctx, k, encoded...).Result()
		return err
	})
	if err != nil {
		return 0, translate("lpush", key, err)
	}
	return length, nil
}

// LLen returns the length of the list at key (0 if absent).
func (c *Client) LLen(ctx context.Context, key string) (int64, error) {
	ks, _ := c.serializers(nil)
	k, err := encodeKey(ks, key)
	if err != nil {
		return 0, err
	}

	var length int64
	err = c.breaker.do(func() error {
		var err error
		length, err = c.cmd.LLen(ctx, k).Result()
		return err
	})
	if err != nil {
		return 0, translate("llen", key, err)
	}
	return length, nil
}

// LRange returns the elements between start and end inclusive, decoding each
// with s (nil = default value serializer). Negative indices count from the
// tail, so LRange(ctx, key, 0, -1, s) returns the whole list. An absent list
// yields an empty slice.
func (c *Client) LRange(ctx context.Context, key string, start, end int64, s Serializer) ([]string, error) {
	ks, vs := c.serializers(s)
	k, err := encodeKey(ks, key)
	if err != nil {
		return nil, err
	}

	var raw []string
	err = c.breaker.do(func() error {
		var err error
		raw, err = c.cmd.LRange(ctx, k, start, end).Result()
		return err
	})
	if err != nil {
		return nil, translate("lrange", key, err)
	}

	values := make([]string, 0, len(raw))
	for _, item := range raw {
		var value string
		if err := decode(vs, []byte(item), &value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}
