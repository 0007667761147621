package cacheredis

import (
	"context"
	"testing"
)

const sampleInfo = "# Server\r\n" +
	"redis_version:7.2.4\r\n" +
	"redis_mode:standalone\r\n" +
	"\r\n" +
	"# Clients\r\n" +
	"connected_clients:3\r\n" +
	"\r\n" +
	"# Memory\r\n" +
	"used_memory:1048576\r\n" +
	"\r\n" +
	"# Replication\r\n" +
	"role:master\r\n" +
	"\r\n" +
	"# Keyspace\r\n" +
	"db0:keys=12,expires=2,avg_ttl=0\r\n" +
	"db3:keys=1,expires=0,avg_ttl=0\r\n" +
	"dbx:keys=9\r\n"

func TestParseServerInfo(t *testing.T) {
	info := parseServerInfo(sampleInfo)

	if info.Version != "7.2.4" {
		t.Errorf("Expected version 7.2.4, got %q", info.Version)
	}
	if info.Mode != "standalone" || info.Role != "master" {
		t.Errorf("Unexpected mode/role %q/%q", info.Mode, info.Role)
	}
	if info.ConnectedClients != 3 {
		t.Errorf("Expected 3 clients, got %d", info.ConnectedClients)
	}
	if info.UsedMemory != 1048576 {
		t.Errorf("Expected 1048576 bytes, got %d", info.UsedMemory)
	}
	if len(info.Keyspace) != 2 || info.Keyspace[0] != 12 || info.Keyspace[3] != 1 {
		t.Errorf("Unexpected keyspace %v", info.Keyspace)
	}
}

func TestParseServerInfo_Empty(t *testing.T) {
	info := parseServerInfo("")

	if info.Version != "" {
		t.Errorf("Expected empty version, got %q", info.Version)
	}
	if info.Keyspace == nil {
		t.Error("Expected non-nil keyspace")
	}
}

func TestCompareVersion(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2.6.12", "2.6.12", 0},
		{"2.6.11", "2.6.12", -1},
		{"2.8", "2.6.12", 1},
		{"7.2.4", "2.6.12", 1},
		{"2.6", "2.6.0", 0},
	}

	for _, tt := range tests {
		if got := compareVersion(tt.a, tt.b); got != tt.want {
			t.Errorf("compareVersion(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestServerInfo_AtLeast(t *testing.T) {
	info := parseServerInfo(sampleInfo)

	if !info.AtLeast(minSetNxExVersion) {
		t.Errorf("expected %s to support SET NX EX", info.Version)
	}
	if info.AtLeast("8.0") {
		t.Errorf("expected %s to be older than 8.0", info.Version)
	}

	old := parseServerInfo("redis_version:2.6.11\r\n")
	if old.AtLeast(minSetNxExVersion) {
		t.Error("expected 2.6.11 to predate SET NX EX")
	}

	unknown := parseServerInfo("")
	if unknown.AtLeast("0.0.1") {
		t.Error("expected unknown version to report false")
	}
}

func TestClient_Info(t *testing.T) {
	client, _ := testClient(t)

	info, err := client.Info(context.Background())
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info == nil {
		t.Fatal("Expected server info")
	}
}

func TestClient_PubSubChannels(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	channels, err := client.PubSubChannels(ctx, "")
	if err != nil {
		t.Fatalf("PubSubChannels failed: %v", err)
	}
	if len(channels) != 0 {
		t.Errorf("Expected no channels, got %v", channels)
	}

	sub, err := client.Subscribe(ctx, ListenerFunc(func(string, string) {}), "news", "alerts", "other")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	channels, err = client.PubSubChannels(ctx, "")
	if err != nil {
		t.Fatalf("PubSubChannels failed: %v", err)
	}
	want := []string{"alerts", "news", "other"}
	if len(channels) != len(want) {
		t.Fatalf("Expected %v, got %v", want, channels)
	}
	for i := range want {
		if channels[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, channels)
			break
		}
	}

	channels, err = client.PubSubChannels(ctx, "n*")
	if err != nil {
		t.Fatalf("PubSubChannels failed: %v", err)
	}
	if len(channels) != 1 || channels[0] != "news" {
		t.Errorf("Expected [news], got %v", channels)
	}
}

func TestClient_PubSubNumSub(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	counts, err := client.PubSubNumSub(ctx)
	if err != nil || len(counts) != 0 {
		t.Fatalf("Expected empty result, got %v, %v", counts, err)
	}

	for i := 0; i < 2; i++ {
		sub, err := client.Subscribe(ctx, ListenerFunc(func(string, string) {}), "news")
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
		defer sub.Close()
	}

	counts, err = client.PubSubNumSub(ctx, "news", "empty")
	if err != nil {
		t.Fatalf("PubSubNumSub failed: %v", err)
	}
	if counts["news"] != 2 {
		t.Errorf("Expected 2 subscribers on news, got %d", counts["news"])
	}
	if counts["empty"] != 0 {
		t.Errorf("Expected 0 subscribers on empty, got %d", counts["empty"])
	}
}

func TestClient_InfoUnreachable(t *testing.T) {
	client, mr := testClient(t)
	mr.Close()

	_, err := client.Info(context.Background())
	if !IsClientError(err) {
		t.Fatalf("Expected ClientError, got %T: %v", err, err)
	}
}
