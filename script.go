package cacheredis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Script is a Lua script that is invoked by SHA1 digest, falling back to a
// full EVAL the first time the server has not cached it.
type Script struct {
	script *redis.Script
}

// NewScript creates a Script from Lua source.
func NewScript(src string) *Script {
	return &Script{script: redis.NewScript(src)}
}

// Hash returns the SHA1 digest of the script source.
func (s *Script) Hash() string {
	return s.script.Hash()
}

// Eval runs a Lua script. Keys are encoded with the key serializer and args
// with the default value serializer before dispatch. A nil reply yields
// (nil, nil).
func (c *Client) Eval(ctx context.Context, script string, keys, args []string) (any, error) {
	k, a, err := c.encodeScriptInput(keys, args)
	if err != nil {
		return nil, err
	}

	var result any
	err = c.breaker.do(func() error {
		var err error
		result, err = c.cmd.Eval(ctx, script, k, a...).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("eval", keysLabelOrEmpty(keys), err)
	}
	return result, nil
}

// EvalInt64 runs a Lua script that returns an integer. A nil reply yields 0.
func (c *Client) EvalInt64(ctx context.Context, script string, keys, args []string) (int64, error) {
	k, a, err := c.encodeScriptInput(keys, args)
	if err != nil {
		return 0, err
	}

	var result int64
	err = c.breaker.do(func() error {
		var err error
		result, err = c.cmd.Eval(ctx, script, k, a...).Int64()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, translate("eval", keysLabelOrEmpty(keys), err)
	}
	return result, nil
}

// RunScript runs s with EVALSHA, loading it with EVAL when the server does
// not know the digest yet. Encoding rules match Eval.
func (c *Client) RunScript(ctx context.Context, s *Script, keys, args []string) (any, error) {
	k, a, err := c.encodeScriptInput(keys, args)
	if err != nil {
		return nil, err
	}

	var result any
	err = c.breaker.do(func() error {
		var err error
		result, err = s.script.Run(ctx, c.cmd, k, a...).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("evalsha", keysLabelOrEmpty(keys), err)
	}
	return result, nil
}

func (c *Client) encodeScriptInput(keys, args []string) ([]string, []any, error) {
	ks, vs := c.serializers(nil)
	k, err := encodeKeys(ks, keys)
	if err != nil {
		return nil, nil, err
	}
	a := make([]any, len(args))
	for i, arg := range args {
		v, err := encode(vs, arg)
		if err != nil {
			return nil, nil, err
		}
		a[i] = v
	}
	return k, a, nil
}

func keysLabelOrEmpty(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keysLabel(keys)
}
