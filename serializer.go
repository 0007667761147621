package cacheredis

import (
	"fmt"
	"reflect"
)

// Serializer converts values to and from the byte sequences stored in Redis.
// Implementations must be stateless and safe for concurrent use.
//
// Deserialize decodes data into dst, which must be a non-nil pointer.
// A miss (nil or empty data) sets *dst to its zero value and returns nil.
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, dst any) error
}

// zeroTarget resets the value dst points to.
func zeroTarget(dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &SerializationError{
			Op:  "deserialize",
			Err: fmt.Errorf("destination must be a non-nil pointer, got %T", dst),
		}
	}
	elem := rv.Elem()
	elem.Set(reflect.Zero(elem.Type()))
	return nil
}
