// Command benchmark runs the avrsim benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv       Output results in CSV format (default: human-readable)
//	-json      Output results as a JSON report
//	-core      Run only the core benchmarks
//	-variant   Target device (default attiny85)
//	-no-cache  Disable the predecoded-instruction cache
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Compare throughput with and without the decode cache
//	go run ./cmd/benchmark -csv > cached.csv
//	go run ./cmd/benchmark -csv -no-cache > uncached.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/avrsim/benchmarks"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as a JSON report")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	variantName := flag.String("variant", "attiny85", "Target device")
	noCache := flag.Bool("no-cache", false, "Disable the predecoded-instruction cache")
	flag.Parse()

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.Variant = *variantName
	config.EnableDecodeCache = !*noCache
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	humanReadable := !*csvOutput && !*jsonOutput
	if humanReadable {
		fmt.Println("avrsim Benchmark Harness")
		fmt.Println("========================")
		fmt.Printf("Variant:      %s\n", config.Variant)
		fmt.Printf("Decode cache: %v\n", config.EnableDecodeCache)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	for _, r := range results {
		if !r.Passed {
			os.Exit(1)
		}
	}
}
