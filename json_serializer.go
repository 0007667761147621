package cacheredis

import (
	"encoding/json"
	"fmt"
)

// JSONSerializer serializes values to/from JSON. It is the default value serializer.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSONSerializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// Serialize encodes v as JSON.
func (s *JSONSerializer) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &SerializationError{
			Op:  "serialize",
			Err: fmt.Errorf("json marshal: %w", err),
		}
	}
	return data, nil
}

// Deserialize decodes JSON data into dst.
func (s *JSONSerializer) Deserialize(data []byte, dst any) error {
	if len(data) == 0 {
		return zeroTarget(dst)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &SerializationError{
			Op:  "deserialize",
			Err: fmt.Errorf("json unmarshal: %w", err),
		}
	}
	return nil
}
