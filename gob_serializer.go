package cacheredis

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// GobSerializer encodes values with encoding/gob. Unlike JSON it keeps Go
// type fidelity: integers stay integers and exported struct fields
// round-trip exactly. Only Go programs can read the stored bytes.
//
// Concrete types stored behind interface values must be registered with
// gob.Register by the caller.
type GobSerializer struct{}

// NewGobSerializer creates a new GobSerializer.
func NewGobSerializer() *GobSerializer {
	return &GobSerializer{}
}

// Serialize encodes v with gob.
func (s *GobSerializer) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, &SerializationError{
			Op:  "serialize",
			Err: fmt.Errorf("gob encode: %w", err),
		}
	}
	return buf.Bytes(), nil
}

// Deserialize decodes gob data into dst.
func (s *GobSerializer) Deserialize(data []byte, dst any) error {
	if len(data) == 0 {
		return zeroTarget(dst)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(dst); err != nil {
		return &SerializationError{
			Op:  "deserialize",
			Err: fmt.Errorf("gob decode: %w", err),
		}
	}
	return nil
}
