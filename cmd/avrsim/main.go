// Package main provides the entry point for avrsim, a functional AVR
// instruction-set simulator.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/k0kubun/pp/v3"
	"github.com/pkg/errors"

	"github.com/sarchlab/avrsim/cache"
	"github.com/sarchlab/avrsim/emu"
	"github.com/sarchlab/avrsim/loader"
	"github.com/sarchlab/avrsim/variant"
)

// options holds the parsed command line.
type options struct {
	variant    string
	configPath string
	format     string
	steps      uint64
	sp         uint
	strict     bool
	useCache   bool
	verbosity  int
	trace      bool
	dump       bool
	cpuProfile string
	program    string
}

func parseArgs(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("avrsim", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.variant, "variant", "attiny85", "Target device")
	fs.StringVar(&opts.configPath, "config", "", "Path to a JSON file of custom variants")
	fs.StringVar(&opts.format, "format", "auto", "Image format: auto, bin, hex or elf")
	fs.Uint64Var(&opts.steps, "steps", 1_000_000, "Number of instructions to execute")
	fs.UintVar(&opts.sp, "sp", 0, "Initial stack pointer")
	fs.BoolVar(&opts.strict, "strict", false, "Stop on instructions without an effect on the core")
	fs.BoolVar(&opts.useCache, "cache", true, "Enable the predecoded-instruction cache")
	fs.IntVar(&opts.verbosity, "v", 0, "Log verbosity (1: setup, 2: every instruction)")
	fs.BoolVar(&opts.trace, "trace", false, "Log every executed instruction (same as -v 2)")
	fs.BoolVar(&opts.dump, "dump", false, "Pretty-print the final state")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "Write a CPU profile to file")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if fs.NArg() != 1 {
		return opts, errors.New("expected exactly one program image")
	}
	opts.program = fs.Arg(0)

	if opts.trace && opts.verbosity < 2 {
		opts.verbosity = 2
	}

	return opts, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: avrsim [options] <program.{bin,hex,elf}>\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	fmt.Fprintf(os.Stderr, "  -variant     Target device (default attiny85)\n")
	fmt.Fprintf(os.Stderr, "  -config      Path to a JSON file of custom variants\n")
	fmt.Fprintf(os.Stderr, "  -format      Image format: auto, bin, hex or elf\n")
	fmt.Fprintf(os.Stderr, "  -steps       Number of instructions to execute (default 1000000)\n")
	fmt.Fprintf(os.Stderr, "  -sp          Initial stack pointer\n")
	fmt.Fprintf(os.Stderr, "  -strict      Stop on instructions without an effect on the core\n")
	fmt.Fprintf(os.Stderr, "  -cache       Enable the predecoded-instruction cache (default true)\n")
	fmt.Fprintf(os.Stderr, "  -v           Log verbosity\n")
	fmt.Fprintf(os.Stderr, "  -trace       Log every executed instruction\n")
	fmt.Fprintf(os.Stderr, "  -dump        Pretty-print the final state\n")
	fmt.Fprintf(os.Stderr, "  -cpuprofile  Write a CPU profile to file\n")
}

func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

func lookupVariant(name, configPath string) (variant.Variant, error) {
	if configPath == "" {
		return variant.Lookup(name)
	}

	registry, err := variant.LoadConfig(configPath)
	if err != nil {
		return variant.Variant{}, err
	}
	return registry.Lookup(name)
}

// run loads the image, executes it and reports the final state to out.
func run(opts options, out io.Writer, logger logr.Logger) error {
	v, err := lookupVariant(opts.variant, opts.configPath)
	if err != nil {
		return err
	}

	format, err := loader.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	img, err := loader.Load(opts.program, format)
	if err != nil {
		return errors.Wrap(err, "loading program")
	}

	mcuOpts := []emu.Option{
		emu.WithLogger(logger),
		emu.WithStrict(opts.strict),
		emu.WithStackPointer(uint16(opts.sp)),
		emu.WithMaxInstructions(opts.steps),
	}
	if opts.useCache {
		mcuOpts = append(mcuOpts, emu.WithDecodeCache(cache.DefaultConfig()))
	}

	m, err := emu.NewMcu(v, mcuOpts...)
	if err != nil {
		return err
	}

	programBytes, dataBytes := img.Install(m)
	logger.V(1).Info("program loaded",
		"path", opts.program,
		"program_bytes", programBytes,
		"data_bytes", dataBytes)

	runErr := m.Run()

	state := m.State()
	_, _ = fmt.Fprintf(out, "Program: %s\n", opts.program)
	_, _ = fmt.Fprintf(out, "Variant: %s\n", v.Name)
	_, _ = fmt.Fprintf(out, "Instructions executed: %d\n", state.InstructionCount)
	_, _ = fmt.Fprintf(out, "PC: 0x%04x  SP: 0x%04x  SREG: 0x%02x\n", state.PC, state.SP, state.SREG)
	_, _ = fmt.Fprintf(out, "Next: %s\n", state.Next)

	if opts.dump {
		printer := pp.New()
		printer.SetColoringEnabled(false)
		_, _ = printer.Fprintln(out, state)
	}

	return runErr
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		usage()
		os.Exit(1)
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	logger := newLogger(os.Stderr, opts.verbosity)

	if err := run(opts, os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}
