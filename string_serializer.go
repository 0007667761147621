package cacheredis

import "fmt"

// StringSerializer is the identity codec used for keys by default.
// It accepts string, *string and []byte values and decodes into
// *string, *[]byte or *any (which receives a string).
type StringSerializer struct{}

// NewStringSerializer creates a new StringSerializer.
func NewStringSerializer() *StringSerializer {
	return &StringSerializer{}
}

// Serialize returns the bytes of a string value.
func (s *StringSerializer) Serialize(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case *string:
		if t == nil {
			return nil, &SerializationError{Op: "serialize", Err: fmt.Errorf("nil *string")}
		}
		return []byte(*t), nil
	case []byte:
		return t, nil
	default:
		return nil, &SerializationError{
			Op:  "serialize",
			Err: fmt.Errorf("unsupported type %T, want string or []byte", v),
		}
	}
}

// Deserialize stores data into dst.
func (s *StringSerializer) Deserialize(data []byte, dst any) error {
	switch t := dst.(type) {
	case *string:
		if t == nil {
			break
		}
		*t = string(data)
		return nil
	case *[]byte:
		if t == nil {
			break
		}
		if len(data) == 0 {
			*t = nil
			return nil
		}
		*t = append([]byte(nil), data...)
		return nil
	case *any:
		if t == nil {
			break
		}
		if data == nil {
			*t = nil
			return nil
		}
		*t = string(data)
		return nil
	}
	return &SerializationError{
		Op:  "deserialize",
		Err: fmt.Errorf("unsupported destination %T, want *string, *[]byte or *any", dst),
	}
}
