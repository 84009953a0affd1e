package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/lad94220/ML-Lab1/pkg/client"
	"github.com/lad94220/ML-Lab1/pkg/grade"
)

func main() {
	addr := flag.String("addr", "http://localhost:8000", "API base URL")
	nReq := flag.Int("n", 5000, "Number of predict requests")
	workers := flag.Int("c", 8, "Concurrent workers")
	flag.Parse()

	cli, err := client.Dial(*addr)
	if err != nil {
		log.Fatalf("invalid address: %v", err)
	}
	defer cli.Close()

	fmt.Printf("Predict Benchmark (N=%d, C=%d) against %s\n", *nReq, *workers, *addr)
	fmt.Println("---------------------------------------------------")

	latencies, failures, elapsed := run(cli, *nReq, *workers)
	if len(latencies) == 0 {
		log.Fatalf("all %d requests failed", failures)
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Printf("  Time: %v | QPS: %.0f | failures: %d\n", elapsed, float64(*nReq)/elapsed.Seconds(), failures)
	fmt.Printf("  p50: %v  p95: %v  p99: %v  max: %v\n",
		pct(latencies, 0.50), pct(latencies, 0.95), pct(latencies, 0.99), latencies[len(latencies)-1])
}

func run(cli *client.Client, n, workers int) ([]time.Duration, int, time.Duration) {
	jobs := make(chan int)
	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, n)
		failures  int
		wg        sync.WaitGroup
	)

	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for range jobs {
				carat, cut, color, clarity := randomDiamond(rng)
				t0 := time.Now()
				_, err := cli.Predict(context.Background(), carat, cut, color, clarity)
				d := time.Since(t0)

				mu.Lock()
				if err != nil {
					failures++
					var apiErr *client.APIError
					if failures == 1 && errors.As(err, &apiErr) {
						log.Printf("first failure: %v", apiErr)
					}
				} else {
					latencies = append(latencies, d)
				}
				mu.Unlock()
			}
		}(int64(w) + 1)
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return latencies, failures, time.Since(start)
}

func randomDiamond(rng *rand.Rand) (float64, string, string, string) {
	pick := func(sc *grade.Scale) string {
		labels := sc.Labels()
		return labels[rng.Intn(len(labels))]
	}
	carat := 0.2 + rng.Float64()*2.8
	return carat, pick(grade.Cut), pick(grade.Color), pick(grade.Clarity)
}

func pct(sorted []time.Duration, p float64) time.Duration {
	i := int(float64(len(sorted)-1) * p)
	return sorted[i]
}
