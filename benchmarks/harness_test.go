package benchmarks_test

import (
	"bytes"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/avrsim/benchmarks"
	"github.com/sarchlab/avrsim/emu"
)

var _ = Describe("Harness", func() {
	var (
		output *bytes.Buffer
		config benchmarks.HarnessConfig
	)

	BeforeEach(func() {
		output = &bytes.Buffer{}
		config = benchmarks.DefaultConfig()
		config.Output = output
		config.Logger = GinkgoLogr
	})

	It("should run every microbenchmark to its expected result", func() {
		harness := benchmarks.NewHarness(config)
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())

		results := harness.RunAll()

		Expect(results).To(HaveLen(len(benchmarks.GetMicrobenchmarks())))
		for _, r := range results {
			Expect(r.Error).To(BeEmpty(), r.Name)
			Expect(r.Passed).To(BeTrue(), "%s: got %d, want %d", r.Name, r.Result, r.Expected)
			Expect(r.Instructions).To(BeNumerically(">", 0), r.Name)
		}
	})

	It("should give the same results without the decode cache", func() {
		config.EnableDecodeCache = false
		harness := benchmarks.NewHarness(config)
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())

		for _, r := range harness.RunAll() {
			Expect(r.Passed).To(BeTrue(), r.Name)
			Expect(r.DecodeCacheHits).To(BeZero())
			Expect(r.DecodeCacheMisses).To(BeZero())
		}
	})

	It("should count instructions up to the halt loop", func() {
		harness := benchmarks.NewHarness(config)
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())

		results := harness.RunAll()

		Expect(results[0].Name).To(Equal("countdown_loop"))
		Expect(results[0].Instructions).To(Equal(uint64(3 + 1000*3)))
		Expect(results[0].Halted).To(BeTrue())
		Expect(results[0].DecodeCacheHits).To(BeNumerically(">", 0))

		Expect(results[1].Name).To(Equal("function_calls"))
		Expect(results[1].Instructions).To(Equal(uint64(15)))

		Expect(results[2].Name).To(Equal("blink"))
		Expect(results[2].Instructions).To(Equal(uint64(100016)))
		Expect(results[2].Halted).To(BeFalse())
	})

	It("should report failing instructions", func() {
		harness := benchmarks.NewHarness(config)
		harness.AddBenchmark(benchmarks.Benchmark{
			Name:     "broken",
			Program:  benchmarks.BuildProgram(0xFFFF),
			MaxSteps: 10,
		})

		results := harness.RunAll()

		Expect(results[0].Passed).To(BeFalse())
		Expect(results[0].Error).To(ContainSubstring("0xFFFF"))
		Expect(results[0].Instructions).To(BeZero())
	})

	It("should report unknown variants", func() {
		config.Variant = "atmega2560"
		harness := benchmarks.NewHarness(config)
		harness.AddBenchmark(benchmarks.Blink())

		results := harness.RunAll()

		Expect(results[0].Passed).To(BeFalse())
		Expect(results[0].Error).To(ContainSubstring("atmega2560"))
	})

	It("should print human-readable results", func() {
		config.Verbose = true
		harness := benchmarks.NewHarness(config)
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())

		harness.PrintResults(harness.RunAll())

		Expect(output.String()).To(ContainSubstring("Running countdown_loop..."))
		Expect(output.String()).To(ContainSubstring("Benchmark: blink [PASS]"))
		Expect(output.String()).To(ContainSubstring("--- Decode Cache ---"))
	})

	It("should print CSV", func() {
		harness := benchmarks.NewHarness(config)
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())

		harness.PrintCSV(harness.RunAll())

		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		Expect(lines).To(HaveLen(4))
		Expect(lines[0]).To(HavePrefix("name,instructions,"))
		Expect(lines[1]).To(HavePrefix("countdown_loop,3003,true,232,232,true,"))
	})

	It("should print a JSON report", func() {
		harness := benchmarks.NewHarness(config)
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())

		Expect(harness.PrintJSON(harness.RunAll())).To(Succeed())

		var report benchmarks.BenchmarkReport
		Expect(json.Unmarshal(output.Bytes(), &report)).To(Succeed())
		Expect(report.Metadata.Variant).To(Equal("attiny85"))
		Expect(report.Summary.TotalBenchmarks).To(Equal(3))
		Expect(report.Summary.Passed).To(Equal(3))
		Expect(report.Summary.TotalInstructions).To(Equal(uint64(3003 + 15 + 100016)))
	})
})

var _ = Describe("Blink", func() {
	var m *emu.Mcu

	BeforeEach(func() {
		var err error
		m, err = emu.NewMcuByName("attiny85", emu.WithLogger(GinkgoLogr))
		Expect(err).NotTo(HaveOccurred())
		m.LoadProgram(benchmarks.BlinkProgram())
	})

	run := func(total uint64) {
		halted, err := benchmarks.RunToHalt(m, total)
		Expect(err).NotTo(HaveOccurred())
		Expect(halted).To(BeFalse())
		Expect(m.InstructionCount()).To(Equal(total))
	}

	It("should toggle PORTB bit 0 every 50006 instructions", func() {
		run(3)
		Expect(m.DataByte(benchmarks.PortB)).To(Equal(uint8(0)))

		run(4)
		Expect(m.DataByte(benchmarks.PortB)).To(Equal(uint8(1)))

		run(50009)
		Expect(m.DataByte(benchmarks.PortB)).To(Equal(uint8(1)))

		run(50010)
		Expect(m.DataByte(benchmarks.PortB)).To(Equal(uint8(0)))

		run(100015)
		Expect(m.DataByte(benchmarks.PortB)).To(Equal(uint8(0)))

		run(100016)
		Expect(m.DataByte(benchmarks.PortB)).To(Equal(uint8(1)))
	})

	It("should be in the delay loop between toggles", func() {
		run(1000)

		Expect(m.CurrentMnemonic()).To(SatisfyAny(
			Equal("sbiw\tr30, 0x01"),
			Equal("brne\t.-4"),
		))
	})
})
