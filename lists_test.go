package cacheredis

import (
	"context"
	"reflect"
	"testing"
)

func TestClient_LPushLRange(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()
	s := NewStringSerializer()

	length, err := client.LPush(ctx, "list", s, "x", "y")
	if err != nil {
		t.Fatalf("LPush failed: %v", err)
	}
	if length != 2 {
		t.Errorf("expected length 2, got %d", length)
	}

	length, err = client.LLen(ctx, "list")
	if err != nil || length != 2 {
		t.Errorf("expected LLen 2, got %d %v", length, err)
	}

	values, err := client.LRange(ctx, "list", 0, -1, s)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}
	expected := []string{"y", "x"}
	if !reflect.DeepEqual(values, expected) {
		t.Errorf("expected %v, got %v", expected, values)
	}
}

func TestClient_LRangeIndices(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()
	s := NewStringSerializer()

	client.LPush(ctx, "list", s, "e", "d", "c", "b", "a")

	tests := []struct {
		name       string
		start, end int64
		want       []string
	}{
		{name: "head", start: 0, end: 1, want: []string{"a", "b"}},
		{name: "tail", start: -2, end: -1, want: []string{"d", "e"}},
		{name: "single", start: 2, end: 2, want: []string{"c"}},
		{name: "past end", start: 3, end: 100, want: []string{"d", "e"}},
		{name: "empty range", start: 4, end: 1, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.LRange(ctx, "list", tt.start, tt.end, s)
			if err != nil {
				t.Fatalf("LRange failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestClient_ListAbsent(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	length, err := client.LLen(ctx, "missing")
	if err != nil || length != 0 {
		t.Errorf("expected 0, got %d %v", length, err)
	}

	values, err := client.LRange(ctx, "missing", 0, -1, nil)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}
	if values == nil || len(values) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", values)
	}
}

func TestClient_LPushEmptyDoesNotContactStore(t *testing.T) {
	client, mr := testClient(t)
	ctx := context.Background()

	mr.Close()

	length, err := client.LPush(ctx, "list", nil)
	if err != nil || length != 0 {
		t.Errorf("expected 0 without error, got %d %v", length, err)
	}
}

func TestClient_ListDefaultSerializer(t *testing.T) {
	client, mr := testClient(t)
	ctx := context.Background()

	// nil selects the default JSON serializer, so elements are stored quoted.
	client.LPush(ctx, "list", nil, "x")

	stored, err := mr.List("list")
	if err != nil {
		t.Fatalf("miniredis List failed: %v", err)
	}
	if len(stored) != 1 || stored[0] != `"x"` {
		t.Errorf("expected JSON encoded element, got %v", stored)
	}

	values, err := client.LRange(ctx, "list", 0, -1, nil)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}
	if !reflect.DeepEqual(values, []string{"x"}) {
		t.Errorf("expected [x], got %v", values)
	}
}

func TestClient_LRangeMalformedElement(t *testing.T) {
	client, mr := testClient(t)
	ctx := context.Background()

	mr.Lpush("list", "not json")

	_, err := client.LRange(ctx, "list", 0, -1, NewJSONSerializer())
	if !IsSerializationError(err) {
		t.Errorf("expected *SerializationError, got %v", err)
	}
}
