package cacheredis

import (
	"context"
	"iter"
	"sort"
)

// KeyScanner walks the keyspace with SCAN, one page per round trip.
//
// SCAN is weakly consistent: a key may appear on more than one page, and a
// key created or deleted while the scan runs may be missed. Keys present for
// the whole scan are always returned. Termination relies on the server
// eventually returning cursor 0; no iteration cap is applied, so bound long
// scans with the context.
//
// A KeyScanner is not safe for concurrent use.
type KeyScanner struct {
	client   *Client
	pattern  string
	count    int64
	cursor   uint64
	finished bool
}

// Keys returns a scanner over keys matching the glob pattern ("" matches all).
func (c *Client) Keys(pattern string) *KeyScanner {
	return &KeyScanner{
		client:  c,
		pattern: pattern,
		count:   c.scanCount,
	}
}

// WithCount overrides the COUNT hint sent with each page.
func (s *KeyScanner) WithCount(count int64) *KeyScanner {
	if count > 0 {
		s.count = count
	}
	return s
}

// Finished reports whether the server has signalled the end of the scan.
func (s *KeyScanner) Finished() bool {
	return s.finished
}

// Reset rewinds the scanner to the initial cursor.
func (s *KeyScanner) Reset() {
	s.cursor = 0
	s.finished = false
}

// Next fetches and decodes the next page. A page may be empty while the scan
// is unfinished. After the scan has finished Next returns (nil, nil).
// On error the cursor is left in place so the page can be retried.
func (s *KeyScanner) Next(ctx context.Context) ([]string, error) {
	if s.finished {
		return nil, nil
	}

	var raw []string
	var next uint64
	err := s.client.breaker.do(func() error {
		var err error
		raw, next, err = s.client.cmd.Scan(ctx, s.cursor, s.pattern, s.count).Result()
		return err
	})
	if err != nil {
		return nil, translate("scan", s.pattern, err)
	}

	ks := s.client.KeySerializer()
	keys := make([]string, 0, len(raw))
	for _, item := range raw {
		var key string
		if err := decode(ks, []byte(item), &key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	s.cursor = next
	s.finished = next == 0
	return keys, nil
}

// All streams every remaining key. Duplicates reported by the server are
// passed through. Iteration stops at the first error, which is yielded with
// an empty key.
func (s *KeyScanner) All(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for !s.finished {
			keys, err := s.Next(ctx)
			if err != nil {
				yield("", err)
				return
			}
			for _, key := range keys {
				if !yield(key, nil) {
					return
				}
			}
		}
	}
}

// Scan collects every key matching pattern. Duplicates across pages collapse
// and the result is sorted. The weak-consistency caveats of KeyScanner apply.
func (c *Client) Scan(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	scanner := c.Keys(pattern)
	for !scanner.Finished() {
		keys, err := scanner.Next(ctx)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			seen[key] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for key := range seen {
		result = append(result, key)
	}
	sort.Strings(result)
	return result, nil
}
