package cacheredis

import (
	"errors"
	"fmt"
)

var (
	// ErrNilSerializer is returned when a nil serializer is installed as a client default.
	ErrNilSerializer = fmt.Errorf("serializer is nil")

	// ErrInvalidTTL is returned when a TTL truncates to less than one second.
	ErrInvalidTTL = fmt.Errorf("ttl must be at least one second")

	// ErrNoChannels is returned when Subscribe is called without channels.
	ErrNoChannels = fmt.Errorf("no channels provided")

	// ErrNilListener is returned when Subscribe is called with a nil listener.
	ErrNilListener = fmt.Errorf("listener is nil")

	// ErrClosed is returned by operations on a closed client or subscription.
	ErrClosed = fmt.Errorf("client is closed")

	// ErrInvalidConfig is returned when the client configuration does not validate.
	ErrInvalidConfig = fmt.Errorf("invalid config")
)

// ClientError wraps every failure of a store interaction that is not a
// serialization problem: connectivity, protocol, server-side errors, timeouts,
// authentication and an open circuit breaker all surface as ClientError.
// It is the error kind callers retry on.
type ClientError struct {
	Op  string // operation that failed (e.g., "get", "setex", "scan")
	Key string // key if applicable
	Err error  // underlying error
}

func (e *ClientError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cacheredis: %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("cacheredis: %s: %v", e.Op, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// SerializationError represents a failure to encode or decode a key or value.
// It is always returned unwrapped so callers can tell bad data from bad
// infrastructure.
type SerializationError struct {
	Op  string // "serialize" or "deserialize"
	Err error  // underlying error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cacheredis: %s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// translate classifies err for operation op on key: serialization errors pass
// through untouched, everything else becomes a *ClientError.
func translate(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if IsSerializationError(err) || IsClientError(err) {
		return err
	}
	return &ClientError{Op: op, Key: key, Err: err}
}

// IsSerializationError reports whether err is, or wraps, a *SerializationError.
func IsSerializationError(err error) bool {
	var serr *SerializationError
	return errors.As(err, &serr)
}

// IsClientError reports whether err is, or wraps, a *ClientError.
func IsClientError(err error) bool {
	var cerr *ClientError
	return errors.As(err, &cerr)
}
