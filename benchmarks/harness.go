// Package benchmarks runs canned AVR programs through the emulator and
// reports instruction throughput.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/sarchlab/avrsim/cache"
	"github.com/sarchlab/avrsim/emu"
)

// DefaultMaxSteps bounds benchmarks that do not set MaxSteps.
const DefaultMaxSteps = 1_000_000

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark exercises
	Description string `json:"description"`

	// Instructions is the number of instructions executed
	Instructions uint64 `json:"instructions"`

	// Halted reports whether the program reached its halt loop
	Halted bool `json:"halted"`

	// Result is the value the benchmark reads back after running
	Result   uint8 `json:"result"`
	Expected uint8 `json:"expected"`
	Passed   bool  `json:"passed"`

	// DecodeCacheHits/Misses (if the decode cache is enabled)
	DecodeCacheHits   uint64 `json:"decode_cache_hits,omitempty"`
	DecodeCacheMisses uint64 `json:"decode_cache_misses,omitempty"`

	// InstructionsPerSecond is the simulation throughput
	InstructionsPerSecond float64 `json:"instructions_per_second"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`

	// Error is set if the benchmark stopped on a failing instruction
	Error string `json:"error,omitempty"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark exercises
	Description string

	// Setup prepares the Mcu after the program is loaded (optional)
	Setup func(m *emu.Mcu)

	// Program is the flash image, little-endian words from address 0
	Program []byte

	// MaxSteps bounds the run. Programs without a halt loop run exactly
	// this many instructions.
	MaxSteps uint64

	// Result reads the value checked against Expected
	Result   func(m *emu.Mcu) uint8
	Expected uint8
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Variant names the device to simulate
	Variant string

	// Strict stops a benchmark on instructions the emulator cannot execute
	Strict bool

	// EnableDecodeCache enables the predecoded-instruction cache
	EnableDecodeCache bool

	// DecodeCache configures the cache when enabled
	DecodeCache cache.Config

	// Logger receives emulator diagnostics
	Logger logr.Logger

	// Output is where results are written
	Output io.Writer

	// Verbose enables per-benchmark progress output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Variant:           "attiny85",
		Strict:            true,
		EnableDecodeCache: true,
		DecodeCache:       cache.DefaultConfig(),
		Logger:            logr.Discard(),
		Output:            os.Stdout,
	}
}

// Harness runs benchmarks and collects results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	return &Harness{
		config: config,
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll runs all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "Running %s...\n", bench.Name)
		}
		results = append(results, h.runBenchmark(bench))
	}

	return results
}

func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
		Expected:    bench.Expected,
	}

	opts := []emu.Option{
		emu.WithLogger(h.config.Logger),
		emu.WithStrict(h.config.Strict),
	}
	if h.config.EnableDecodeCache {
		opts = append(opts, emu.WithDecodeCache(h.config.DecodeCache))
	}

	m, err := emu.NewMcuByName(h.config.Variant, opts...)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	m.LoadProgram(bench.Program)
	if bench.Setup != nil {
		bench.Setup(m)
	}

	maxSteps := bench.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	start := time.Now()
	halted, err := RunToHalt(m, maxSteps)
	result.WallTime = time.Since(start)

	result.Instructions = m.InstructionCount()
	result.Halted = halted
	if err != nil {
		result.Error = err.Error()
	}
	if bench.Result != nil {
		result.Result = bench.Result(m)
	}
	result.Passed = err == nil && result.Result == bench.Expected

	if seconds := result.WallTime.Seconds(); seconds > 0 {
		result.InstructionsPerSecond = float64(result.Instructions) / seconds
	}

	if c := m.DecodeCache(); c != nil {
		stats := c.Stats()
		result.DecodeCacheHits = stats.Hits
		result.DecodeCacheMisses = stats.Misses
	}

	return result
}

// RunToHalt steps the Mcu until it reaches a HaltWord, fails, or has
// executed maxSteps instructions. The halt instruction itself is not
// executed.
func RunToHalt(m *emu.Mcu, maxSteps uint64) (bool, error) {
	for m.InstructionCount() < maxSteps {
		if m.CurrentWord() == HaltWord {
			return true, nil
		}

		if r := m.Step(); r.Err != nil {
			return false, r.Err
		}
	}

	return m.CurrentWord() == HaltWord, nil
}

// PrintResults writes benchmark results in human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== AVR Simulator Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}

		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s [%s]\n", r.Name, status)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Result: %d (expected %d)\n", r.Result, r.Expected)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions: %d\n", r.Instructions)
		_, _ = fmt.Fprintf(h.config.Output, "  Halted:       %v\n", r.Halted)
		_, _ = fmt.Fprintf(h.config.Output, "  Throughput:   %.0f inst/s\n", r.InstructionsPerSecond)

		if r.DecodeCacheHits > 0 || r.DecodeCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Decode Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DecodeCacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DecodeCacheMisses)
		}

		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Error)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV writes benchmark results in CSV format.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,instructions,halted,result,expected,passed,decode_cache_hits,decode_cache_misses,inst_per_sec,wall_time_ns")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%v,%d,%d,%v,%d,%d,%.0f,%d\n",
			r.Name,
			r.Instructions,
			r.Halted,
			r.Result,
			r.Expected,
			r.Passed,
			r.DecodeCacheHits,
			r.DecodeCacheMisses,
			r.InstructionsPerSecond,
			r.WallTime.Nanoseconds(),
		)
	}
}

// BenchmarkReport is the JSON document written by PrintJSON.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata describes the run.
type ReportMetadata struct {
	Timestamp   string `json:"timestamp"`
	Variant     string `json:"variant"`
	DecodeCache bool   `json:"decode_cache"`
}

// ReportSummary contains aggregate statistics.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	Passed            int           `json:"passed"`
	TotalInstructions uint64        `json:"total_instructions"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`

	// InstructionsPerSecond is computed over all benchmarks
	InstructionsPerSecond float64 `json:"instructions_per_second"`
}

// PrintJSON writes benchmark results as an indented JSON report.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalInstructions += r.Instructions
		summary.TotalWallTime += r.WallTime
		if r.Passed {
			summary.Passed++
		}
	}
	if seconds := summary.TotalWallTime.Seconds(); seconds > 0 {
		summary.InstructionsPerSecond = float64(summary.TotalInstructions) / seconds
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Variant:     h.config.Variant,
			DecodeCache: h.config.EnableDecodeCache,
		},
		Results: results,
		Summary: summary,
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
