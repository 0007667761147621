package cacheredis

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// breaker guards store round trips. A nil *breaker runs calls directly.
type breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

// newBreaker builds a breaker from settings, or returns nil when settings is nil.
// Misses (redis.Nil) and serialization errors never count as failures.
func newBreaker(settings *gobreaker.Settings, logger *slog.Logger) *breaker {
	if settings == nil {
		return nil
	}

	st := *settings
	if st.Name == "" {
		st.Name = "cacheredis"
	}
	isSuccessful := st.IsSuccessful
	st.IsSuccessful = func(err error) bool {
		if err == nil || errors.Is(err, redis.Nil) || IsSerializationError(err) {
			return true
		}
		if isSuccessful != nil {
			return isSuccessful(err)
		}
		return false
	}
	onStateChange := st.OnStateChange
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		if onStateChange != nil {
			onStateChange(name, from, to)
		}
	}

	return &breaker{cb: gobreaker.NewCircuitBreaker[any](st)}
}

// do runs fn through the breaker.
func (b *breaker) do(fn func() error) error {
	if b == nil {
		return fn()
	}
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return err
}

// State returns the current breaker state, or StateClosed when disabled.
func (b *breaker) State() gobreaker.State {
	if b == nil {
		return gobreaker.StateClosed
	}
	return b.cb.State()
}
