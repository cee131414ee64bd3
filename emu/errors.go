package emu

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sarchlab/avrsim/insts"
)

// ErrNotPowerOfTwo is returned when a memory bank size is not a power of two.
var ErrNotPowerOfTwo = errors.New("memory size is not a power of two")

// ErrMemoryTooLarge is returned when a memory bank does not fit the 16-bit
// address space.
var ErrMemoryTooLarge = errors.New("memory size exceeds 64 KiB")

// ErrUnimplemented marks an instruction that decodes but has no effect on
// the simulated core.
var ErrUnimplemented = errors.New("unimplemented instruction")

// ErrMaxInstructions is returned once the instruction limit is reached.
var ErrMaxInstructions = errors.New("max instructions reached")

// ExecError describes an instruction that could not be executed.
type ExecError struct {
	PC   uint16
	Word uint16
	Inst insts.Instruction
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%v at PC=0x%04X: 0x%04X (%s)", ErrUnimplemented, e.PC, e.Word, e.Inst)
}

// Cause returns ErrUnimplemented so errors.Cause unwraps to the sentinel.
func (e *ExecError) Cause() error {
	return ErrUnimplemented
}

// Unwrap lets errors.Is match ErrUnimplemented.
func (e *ExecError) Unwrap() error {
	return ErrUnimplemented
}
