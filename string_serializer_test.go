package cacheredis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringSerializer_Serialize(t *testing.T) {
	s := NewStringSerializer()
	str := "pointer"

	tests := []struct {
		name  string
		value any
		want  []byte
	}{
		{name: "string", value: "hello", want: []byte("hello")},
		{name: "empty string", value: "", want: []byte{}},
		{name: "bytes", value: []byte{0x00, 0xff}, want: []byte{0x00, 0xff}},
		{name: "string pointer", value: &str, want: []byte("pointer")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Serialize(tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestStringSerializer_SerializeUnsupported(t *testing.T) {
	s := NewStringSerializer()

	for _, value := range []any{42, 3.14, struct{}{}, nil, (*string)(nil)} {
		_, err := s.Serialize(value)
		require.Error(t, err, "value %#v", value)
		require.True(t, IsSerializationError(err), "value %#v: got %T", value, err)
	}
}

func TestStringSerializer_Deserialize(t *testing.T) {
	s := NewStringSerializer()

	var str string
	require.NoError(t, s.Deserialize([]byte("abc"), &str))
	require.Equal(t, "abc", str)

	var raw []byte
	require.NoError(t, s.Deserialize([]byte("abc"), &raw))
	require.Equal(t, []byte("abc"), raw)

	var v any
	require.NoError(t, s.Deserialize([]byte("abc"), &v))
	require.Equal(t, "abc", v)
}

func TestStringSerializer_DeserializeMiss(t *testing.T) {
	s := NewStringSerializer()

	str := "stale"
	require.NoError(t, s.Deserialize(nil, &str))
	require.Equal(t, "", str)

	raw := []byte("stale")
	require.NoError(t, s.Deserialize(nil, &raw))
	require.Nil(t, raw)

	var v any = "stale"
	require.NoError(t, s.Deserialize(nil, &v))
	require.Nil(t, v)
}

func TestStringSerializer_DeserializeCopiesBytes(t *testing.T) {
	s := NewStringSerializer()
	data := []byte("abc")

	var raw []byte
	require.NoError(t, s.Deserialize(data, &raw))
	data[0] = 'x'
	require.Equal(t, []byte("abc"), raw)
}

func TestStringSerializer_DeserializeUnsupported(t *testing.T) {
	s := NewStringSerializer()

	var n int
	err := s.Deserialize([]byte("1"), &n)
	require.True(t, IsSerializationError(err))

	err = s.Deserialize([]byte("1"), (*string)(nil))
	require.True(t, IsSerializationError(err))
}
