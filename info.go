package cacheredis

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// ServerInfo is the subset of INFO output the client reports on.
type ServerInfo struct {
	Version          string
	Mode             string
	Role             string
	ConnectedClients int64
	UsedMemory       int64
	// Keyspace maps a database index to its key count.
	Keyspace map[int]int64
}

// Info runs INFO and parses the server, clients, memory, replication and
// keyspace sections.
func (c *Client) Info(ctx context.Context) (*ServerInfo, error) {
	var raw string
	err := c.breaker.do(func() error {
		var err error
		raw, err = c.cmd.Info(ctx).Result()
		return err
	})
	if err != nil {
		return nil, translate("info", "", err)
	}
	return parseServerInfo(raw), nil
}

// PubSubChannels returns the active channels matching pattern, sorted.
// An empty pattern lists every channel.
func (c *Client) PubSubChannels(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}

	var channels []string
	err := c.breaker.do(func() error {
		var err error
		channels, err = c.pubsub.PubSubChannels(ctx, pattern).Result()
		return err
	})
	if err != nil {
		return nil, translate("pubsub channels", pattern, err)
	}

	if channels == nil {
		channels = []string{}
	}
	sort.Strings(channels)
	return channels, nil
}

// PubSubNumSub returns the subscriber count for each channel.
func (c *Client) PubSubNumSub(ctx context.Context, channels ...string) (map[string]int64, error) {
	if len(channels) == 0 {
		return map[string]int64{}, nil
	}

	var counts map[string]int64
	err := c.breaker.do(func() error {
		var err error
		counts, err = c.pubsub.PubSubNumSub(ctx, channels...).Result()
		return err
	})
	if err != nil {
		return nil, translate("pubsub numsub", keysLabel(channels), err)
	}
	return counts, nil
}

// parseServerInfo reads the fields of ServerInfo out of raw INFO output.
// Unknown and malformed lines are skipped.
func parseServerInfo(raw string) *ServerInfo {
	info := &ServerInfo{Keyspace: map[int]int64{}}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		switch name {
		case "redis_version":
			info.Version = value
		case "redis_mode":
			info.Mode = value
		case "role":
			info.Role = value
		case "connected_clients":
			info.ConnectedClients, _ = strconv.ParseInt(value, 10, 64)
		case "used_memory":
			info.UsedMemory, _ = strconv.ParseInt(value, 10, 64)
		default:
			if db, ok := strings.CutPrefix(name, "db"); ok {
				index, err := strconv.Atoi(db)
				if err != nil {
					continue
				}
				if keys, ok := keyspaceKeys(value); ok {
					info.Keyspace[index] = keys
				}
			}
		}
	}

	return info
}

// keyspaceKeys extracts keys=N from a keyspace line such as
// "keys=12,expires=0,avg_ttl=0".
func keyspaceKeys(value string) (int64, bool) {
	for _, field := range strings.Split(value, ",") {
		if n, ok := strings.CutPrefix(field, "keys="); ok {
			keys, err := strconv.ParseInt(n, 10, 64)
			return keys, err == nil
		}
	}
	return 0, false
}

// AtLeast reports whether the server version is minVersion or newer. An
// unknown version reports false.
func (i *ServerInfo) AtLeast(minVersion string) bool {
	if i.Version == "" {
		return false
	}
	return compareVersion(i.Version, minVersion) >= 0
}

// compareVersion compares dotted versions numerically, padding the shorter
// one with zeros. Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersion(a, b string) int {
	av, bv := versionParts(a), versionParts(b)
	for len(av) < len(bv) {
		av = append(av, 0)
	}
	for len(bv) < len(av) {
		bv = append(bv, 0)
	}
	return slices.Compare(av, bv)
}

// versionParts splits "7.2.4" into [7 2 4]. Non-numeric parts count as 0.
func versionParts(version string) []int {
	fields := strings.Split(version, ".")
	parts := make([]int, len(fields))
	for i, field := range fields {
		parts[i], _ = strconv.Atoi(field)
	}
	return parts
}
