package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/utkarsh5026/amdahl/pipeline"
)

var (
	bold = color.New(color.Bold)
	red  = color.New(color.FgRed)
)

func parseWorkerCounts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	counts := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid worker count %q (want positive integers)", part)
		}
		counts = append(counts, n)
	}
	return counts, nil
}

func printConfiguration(orders int, counts []int, serial, parallel time.Duration, fraction float64, iterations int) {
	_, _ = bold.Println("⚙️  Configuration:")
	fmt.Printf("  Orders:           %d\n", orders)
	fmt.Printf("  Worker Counts:    %v (using %d CPU cores)\n", counts, runtime.NumCPU())
	fmt.Printf("  Serial Delay:     %v per order (stage 1, mutually exclusive)\n", serial)
	fmt.Printf("  Parallel Delay:   %v per order (stage 2, pool-bounded)\n", parallel)
	fmt.Printf("  Parallel Fraction: P = %.2f → speedup limit %.2fx\n", fraction, 1/(1-fraction))
	fmt.Printf("  Iterations:       %d per worker count (median reported)\n", iterations)
	fmt.Println()
}

// runMeasured repeats the measurement for one worker count and returns
// the run with the median elapsed time.
func runMeasured(ctx context.Context, p *pipeline.Pipeline, workload []pipeline.Order, workers, iterations int, bar *progressbar.ProgressBar) (pipeline.RunResult, error) {
	results := make([]pipeline.RunResult, 0, iterations)
	for iter := 0; iter < iterations; iter++ {
		res, err := p.Run(ctx, workload, workers)
		if err != nil {
			return pipeline.RunResult{}, err
		}
		results = append(results, res)
		_ = bar.Add(1)

		if iter < iterations-1 {
			runtime.GC()
			time.Sleep(50 * time.Millisecond)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Elapsed < results[j].Elapsed
	})
	return results[len(results)/2], nil
}

func printResults(records []pipeline.Record) {
	fmt.Println()
	_, _ = bold.Println("📊 MEASURED vs THEORETICAL SPEEDUP")
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Workers", "Time", "Speedup", "Amdahl S(N)", "Efficiency")

	for _, r := range records {
		efficiency := r.Speedup / r.Theoretical * 100
		_ = table.Append(
			fmt.Sprintf("%d", r.Workers),
			r.Measured.Round(time.Millisecond).String(),
			fmt.Sprintf("%.2fx", r.Speedup),
			fmt.Sprintf("%.2fx", r.Theoretical),
			fmt.Sprintf("%.1f%%", efficiency),
		)
	}

	_ = table.Render()
}

func makeProgressBar(runs int) *progressbar.ProgressBar {
	return progressbar.NewOptions(runs,
		progressbar.OptionSetDescription("Running sweep"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func main() {
	ordersFlag := flag.Int("orders", 100, "Number of orders in the workload")
	workersFlag := flag.String("workers", "1,2,4,8", "Comma-separated worker counts to evaluate")
	serialFlag := flag.Duration("serial", 2*time.Millisecond, "Per-order serial stage latency")
	parallelFlag := flag.Duration("parallel", 8*time.Millisecond, "Per-order parallel stage latency")
	fractionFlag := flag.Float64("p", 0.8, "Parallel fraction for the Amdahl prediction, in (0,1)")
	iterationsFlag := flag.Int("iterations", 1, "Number of measured runs per worker count (median is reported)")
	cpuProfileFlag := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	if *cpuProfileFlag != "" {
		f, err := os.Create(*cpuProfileFlag)
		if err != nil {
			_, _ = red.Printf("Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if err := f.Close(); err != nil {
				_, _ = red.Printf("Error closing profile file: %v\n", err)
			}
		}()

		if err := pprof.StartCPUProfile(f); err != nil {
			_, _ = red.Printf("Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	counts, err := parseWorkerCounts(*workersFlag)
	if err != nil {
		_, _ = red.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if _, err := pipeline.TheoreticalSpeedup(1, *fractionFlag); err != nil {
		_, _ = red.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if *iterationsFlag < 1 {
		_, _ = red.Printf("Error: iterations must be at least 1, got %d\n", *iterationsFlag)
		os.Exit(1)
	}

	workload := pipeline.BuildWorkload(*ordersFlag)
	p := pipeline.New(
		pipeline.WithSerialDelay(*serialFlag),
		pipeline.WithParallelDelay(*parallelFlag),
	)

	printConfiguration(*ordersFlag, counts, *serialFlag, *parallelFlag, *fractionFlag, *iterationsFlag)

	_, _ = bold.Println("Running Benchmarks...")
	fmt.Println()

	ctx := context.Background()
	bar := makeProgressBar(*iterationsFlag * (len(counts) + 1))

	bar.Describe("Baseline: 1 worker")
	baseline, err := runMeasured(ctx, p, workload, 1, *iterationsFlag, bar)
	if err != nil {
		_, _ = red.Printf("\nBaseline run aborted, no measurement recorded: %v\n", err)
		os.Exit(1)
	}

	records := make([]pipeline.Record, 0, len(counts))
	for _, n := range counts {
		bar.Describe(fmt.Sprintf("Sweep: %d workers", n))

		result, err := runMeasured(ctx, p, workload, n, *iterationsFlag, bar)
		if err != nil {
			// An aborted run is a distinct failure of that
			// measurement; never record a fabricated timing for it.
			_, _ = red.Printf("\nRun with %d workers aborted, no measurement recorded: %v\n", n, err)
			os.Exit(1)
		}

		rec, err := pipeline.BuildRecord(baseline, result, *fractionFlag)
		if err != nil {
			_, _ = red.Printf("Error deriving speedup for %d workers: %v\n", n, err)
			os.Exit(1)
		}
		records = append(records, rec)
	}

	printResults(records)
}
