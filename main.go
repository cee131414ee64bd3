// Package main provides the entry point for avrsim.
// avrsim is a functional AVR 8-bit instruction-set simulator.
//
// For the full CLI, use: go run ./cmd/avrsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("avrsim - AVR 8-bit Instruction-Set Simulator")
	fmt.Println("")
	fmt.Println("Usage: avrsim [options] <program.{bin,hex,elf}>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -variant   Target device (default attiny85)")
	fmt.Println("  -steps     Number of instructions to execute")
	fmt.Println("  -strict    Stop on instructions without an effect on the core")
	fmt.Println("  -trace     Log every executed instruction")
	fmt.Println("  -dump      Pretty-print the final state")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/avrsim' for the full CLI,")
	fmt.Println("'go run ./cmd/avrdis' to disassemble an image,")
	fmt.Println("'go run ./cmd/benchmark' to measure throughput.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/avrsim' instead.")
	}
}
