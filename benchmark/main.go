// benchmark is a standalone program that measures cacheredis throughput.
//
// It runs the following scenarios:
//
//  1. Set             – 50 000 individual JSON writes
//  2. Get             – 50 000 individual JSON reads of existing keys
//  3. SetEx           – 50 000 writes with a TTL
//  4. Scan            – full SCAN of 100 000 keys, for several COUNT hints
//  5. LPush/LRange    – 10 000 list pushes followed by full range reads
//  6. Publish         – 50 000 publishes to one subscribed listener
//  7. ParallelGetSet  – GOMAXPROCS goroutines sharing one client
//
// Usage:
//
//	go run ./benchmark                        # localhost:6379
//	REDIS_HOST=redis REDIS_PORT=6379 go run ./benchmark
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"

	"github.com/alschastny/cacheredis-go"
)

// ── tunables ─────────────────────────────────────────────────────────────────

const (
	opLimit      = 50_000
	scanKeys     = 100_000
	listPushes   = 10_000
	listReads    = 1_000
	parallelOps  = 20_000 // per goroutine
	benchDB      = 15
	scanPrefix   = "bench:scan:"
	valuePrefix  = "bench:value:"
	benchChannel = "bench:channel"
)

var scanCounts = []int64{10, 1000, 10000}

type payload struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// ── entry point ───────────────────────────────────────────────────────────────

func main() {
	procs := flag.Int("procs", 0, "GOMAXPROCS value (default: use current runtime value)")
	flag.Parse()

	if *procs > 0 {
		runtime.GOMAXPROCS(*procs)
	}
	parallelism := runtime.GOMAXPROCS(0)

	client := newClient()
	defer func() { _ = client.Close() }()

	color.New(color.Bold).Println("cacheredis Go Benchmark")
	fmt.Println("=======================")
	fmt.Printf("CPUs: %d  GOMAXPROCS: %d  REDIS_HOST: %s\n\n",
		runtime.NumCPU(), runtime.GOMAXPROCS(0), os.Getenv("REDIS_HOST"))

	ctx := context.Background()

	// ── 1. Set ────────────────────────────────────────────────────────────────
	flush(client)
	ops, elapsed, errs := benchSet(ctx, client)
	printResult("Set (JSON)", ops, elapsed, errs)

	// ── 2. Get ────────────────────────────────────────────────────────────────
	ops, elapsed, errs = benchGet(ctx, client)
	printResult("Get (JSON)", ops, elapsed, errs)

	// ── 3. SetEx ──────────────────────────────────────────────────────────────
	flush(client)
	ops, elapsed, errs = benchSetEx(ctx, client)
	printResult("SetEx (60s)", ops, elapsed, errs)

	fmt.Println()

	// ── 4. Scan ───────────────────────────────────────────────────────────────
	flush(client)
	fill(ctx, client, scanPrefix, scanKeys)
	for _, count := range scanCounts {
		ops, elapsed, errs = benchScan(ctx, client, count)
		printResult(fmt.Sprintf("Scan %d keys  COUNT=%5d", scanKeys, count), ops, elapsed, errs)
	}

	fmt.Println()

	// ── 5. Lists ──────────────────────────────────────────────────────────────
	flush(client)
	ops, elapsed, errs = benchLPush(ctx, client)
	printResult("LPush", ops, elapsed, errs)
	ops, elapsed, errs = benchLRange(ctx, client)
	printResult(fmt.Sprintf("LRange 0..-1 (%d elements)", listPushes), ops, elapsed, errs)

	fmt.Println()

	// ── 6. Publish ────────────────────────────────────────────────────────────
	ops, elapsed, errs = benchPublish(ctx, client)
	printResult("Publish → 1 listener", ops, elapsed, errs)

	fmt.Println()

	// ── 7. ParallelGetSet ─────────────────────────────────────────────────────
	flush(client)
	ops, elapsed, errs = benchParallel(ctx, client, parallelism)
	printResult(fmt.Sprintf("ParallelGetSet (%d goroutines)", parallelism), ops, elapsed, errs)
}

// ── benchmark helpers ─────────────────────────────────────────────────────────

func benchSet(ctx context.Context, client *cacheredis.Client) (int, time.Duration, int) {
	errs := 0
	start := time.Now()
	for i := 0; i < opLimit; i++ {
		if _, err := client.Set(ctx, valuePrefix+strconv.Itoa(i), newPayload(i)); err != nil {
			errs++
		}
	}
	return opLimit, time.Since(start), errs
}

// benchGet assumes benchSet ran first.
func benchGet(ctx context.Context, client *cacheredis.Client) (int, time.Duration, int) {
	errs := 0
	start := time.Now()
	for i := 0; i < opLimit; i++ {
		var p payload
		if found, err := client.Get(ctx, valuePrefix+strconv.Itoa(i), &p); err != nil || !found {
			errs++
		}
	}
	return opLimit, time.Since(start), errs
}

func benchSetEx(ctx context.Context, client *cacheredis.Client) (int, time.Duration, int) {
	errs := 0
	start := time.Now()
	for i := 0; i < opLimit; i++ {
		if _, err := client.SetEx(ctx, valuePrefix+strconv.Itoa(i), newPayload(i), time.Minute); err != nil {
			errs++
		}
	}
	return opLimit, time.Since(start), errs
}

// benchScan reports keys per second rather than round trips.
func benchScan(ctx context.Context, client *cacheredis.Client, count int64) (int, time.Duration, int) {
	seen := make(map[string]struct{}, scanKeys)
	errs := 0

	start := time.Now()
	for key, err := range client.Keys(scanPrefix + "*").WithCount(count).All(ctx) {
		if err != nil {
			errs++
			break
		}
		seen[key] = struct{}{}
	}
	elapsed := time.Since(start)

	if len(seen) != scanKeys {
		errs += scanKeys - len(seen)
	}
	return len(seen), elapsed, errs
}

func benchLPush(ctx context.Context, client *cacheredis.Client) (int, time.Duration, int) {
	s := cacheredis.NewStringSerializer()
	errs := 0
	start := time.Now()
	for i := 0; i < listPushes; i++ {
		if _, err := client.LPush(ctx, "bench:list", s, strconv.Itoa(i)); err != nil {
			errs++
		}
	}
	return listPushes, time.Since(start), errs
}

func benchLRange(ctx context.Context, client *cacheredis.Client) (int, time.Duration, int) {
	s := cacheredis.NewStringSerializer()
	errs := 0
	start := time.Now()
	for i := 0; i < listReads; i++ {
		values, err := client.LRange(ctx, "bench:list", 0, -1, s)
		if err != nil || len(values) != listPushes {
			errs++
		}
	}
	return listReads, time.Since(start), errs
}

// benchPublish measures the time until the listener has seen every message.
func benchPublish(ctx context.Context, client *cacheredis.Client) (int, time.Duration, int) {
	var received atomic.Int64
	done := make(chan struct{})

	sub, err := client.Subscribe(ctx, cacheredis.ListenerFunc(func(_, _ string) {
		if received.Add(1) == opLimit {
			close(done)
		}
	}), benchChannel)
	must(err)
	defer func() { _ = sub.Close() }()

	errs := 0
	start := time.Now()
	for i := 0; i < opLimit; i++ {
		if _, err := client.Publish(ctx, benchChannel, "message"); err != nil {
			errs++
		}
	}

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		errs += opLimit - int(received.Load())
	}
	return opLimit, time.Since(start), errs
}

// benchParallel runs n goroutines, each alternating Set and Get on its own keys.
func benchParallel(ctx context.Context, client *cacheredis.Client, n int) (int, time.Duration, int) {
	var errs atomic.Int64
	var wg sync.WaitGroup

	start := time.Now()
	for g := 0; g < n; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < parallelOps/2; i++ {
				key := valuePrefix + strconv.Itoa(g) + ":" + strconv.Itoa(i)
				if _, err := client.Set(ctx, key, newPayload(i)); err != nil {
					errs.Add(1)
				}
				var p payload
				if _, err := client.Get(ctx, key, &p); err != nil {
					errs.Add(1)
				}
			}
		}(g)
	}

	wg.Wait()
	return n * parallelOps, time.Since(start), int(errs.Load())
}

// ── setup helpers ─────────────────────────────────────────────────────────────

// fill writes n small values under prefix.
func fill(ctx context.Context, client *cacheredis.Client, prefix string, n int) {
	for i := 0; i < n; i++ {
		if _, err := client.Set(ctx, prefix+strconv.Itoa(i), i); err != nil {
			log.Fatalf("fill %s: %v", prefix, err)
		}
	}
}

func newPayload(i int) payload {
	return payload{ID: i, Name: "item-" + strconv.Itoa(i), Score: int64(i) * 31}
}

func newClient() *cacheredis.Client {
	cfg, err := cacheredis.ConfigFromEnv()
	must(err)
	cfg.Database = benchDB
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	client, err := cacheredis.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Redis not reachable at %s: %v", cfg.Addr(), err)
	}
	return client
}

// flush clears the benchmark database with a script so the client API is the
// only path to the server.
func flush(client *cacheredis.Client) {
	if _, err := client.Eval(context.Background(), `return redis.call("FLUSHDB")`, nil, nil); err != nil {
		log.Fatalf("FLUSHDB: %v", err)
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// ── output ────────────────────────────────────────────────────────────────────

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
)

func printResult(name string, ops int, elapsed time.Duration, errs int) {
	rate := math.Round(float64(ops) / elapsed.Seconds())
	line := fmt.Sprintf("%-44s  %9d ops  %8.3f s  %10.0f op/s", name, ops, elapsed.Seconds(), rate)
	if errs > 0 {
		failColor.Printf("%s  %d errors\n", line, errs)
		return
	}
	okColor.Println(line)
}
