// Package main provides avrdis, a disassembler for AVR firmware images.
//
// Usage:
//
//	avrdis [flags] <program.{bin,hex,elf}>
//
// Flags:
//
//	-variant  Target device, sizes the flash image (default attiny85)
//	-format   Image format: auto, bin, hex or elf
//	-start    First byte address to disassemble
//	-n        Number of instructions (default: to the end of the image)
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/avrsim/emu"
	"github.com/sarchlab/avrsim/loader"
)

var (
	variantName = flag.String("variant", "attiny85", "Target device")
	format      = flag.String("format", "auto", "Image format: auto, bin, hex or elf")
	start       = flag.Uint("start", 0, "First byte address to disassemble")
	count       = flag.Int("n", 0, "Number of instructions (0: to the end of the image)")
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: avrdis [options] <program.{bin,hex,elf}>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	m, size, err := load(flag.Arg(0), *variantName, *format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	disassemble(os.Stdout, m, uint16(*start), size, *count)
}

// load installs the image into a fresh Mcu and returns the number of
// program bytes it covers.
func load(path, variantName, formatName string) (*emu.Mcu, int, error) {
	f, err := loader.ParseFormat(formatName)
	if err != nil {
		return nil, 0, err
	}

	img, err := loader.Load(path, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "loading program")
	}

	m, err := emu.NewMcuByName(variantName)
	if err != nil {
		return nil, 0, err
	}

	programBytes, _ := img.Install(m)
	return m, programBytes, nil
}

// disassemble writes one line per instruction. With count zero it stops at
// the end of the image.
func disassemble(w io.Writer, m *emu.Mcu, start uint16, size, count int) {
	limit := count
	if limit <= 0 {
		limit = (size - int(start) + 1) / 2
	}
	if limit <= 0 {
		return
	}

	for _, line := range m.Disassemble(start, limit) {
		if count <= 0 && int(line.Addr) >= size {
			break
		}

		var raw strings.Builder
		for _, word := range line.Words {
			fmt.Fprintf(&raw, "%02x %02x ", byte(word), byte(word>>8))
		}

		_, _ = fmt.Fprintf(w, "%6x:\t%-12s\t%s\n", line.Addr, raw.String(), line.Inst)
	}
}
