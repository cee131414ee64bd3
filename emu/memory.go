// Package emu provides functional AVR emulation.
package emu

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/avrsim/variant"
)

// IOOffset is the data-memory address of I/O register 0.
const IOOffset = 0x20

// Memory holds the two independent AVR memory banks: data memory (I/O space
// and SRAM) and program memory (flash). Both sizes are powers of
// two and every address is masked, so accesses wrap around instead of
// running off the end of a bank.
type Memory struct {
	data    []byte
	program []byte

	dataMask    uint16
	programMask uint16
}

// NewMemory allocates data and program memory of the given sizes.
// Both sizes must be powers of two no larger than 64 KiB.
func NewMemory(dataSize, programSize int) (*Memory, error) {
	if err := checkBankSize("data", dataSize); err != nil {
		return nil, err
	}
	if err := checkBankSize("program", programSize); err != nil {
		return nil, err
	}

	return &Memory{
		data:        make([]byte, dataSize),
		program:     make([]byte, programSize),
		dataMask:    uint16(dataSize - 1),
		programMask: uint16(programSize - 1),
	}, nil
}

func checkBankSize(bank string, size int) error {
	if !variant.IsPowerOfTwo(size) {
		return errors.Wrapf(ErrNotPowerOfTwo, "%s memory size %d", bank, size)
	}
	if size > variant.MaxMemorySize {
		return errors.Wrapf(ErrMemoryTooLarge, "%s memory size %d", bank, size)
	}
	return nil
}

// DataSize returns the size of data memory in bytes.
func (m *Memory) DataSize() int {
	return len(m.data)
}

// ProgramSize returns the size of program memory in bytes.
func (m *Memory) ProgramSize() int {
	return len(m.program)
}

// Read8 reads a byte of data memory.
func (m *Memory) Read8(addr uint16) uint8 {
	return m.data[addr&m.dataMask]
}

// Write8 writes a byte of data memory.
func (m *Memory) Write8(addr uint16, value uint8) {
	m.data[addr&m.dataMask] = value
}

// ReadIO reads an I/O register.
func (m *Memory) ReadIO(ioAddr uint8) uint8 {
	return m.Read8(uint16(ioAddr) + IOOffset)
}

// WriteIO writes an I/O register.
func (m *Memory) WriteIO(ioAddr uint8, value uint8) {
	m.Write8(uint16(ioAddr)+IOOffset, value)
}

// ProgramByte reads a byte of program memory.
func (m *Memory) ProgramByte(addr uint16) uint8 {
	return m.program[addr&m.programMask]
}

// Fetch16 reads the little-endian program word at byte address addr.
func (m *Memory) Fetch16(addr uint16) uint16 {
	lo := m.program[addr&m.programMask]
	hi := m.program[(addr+1)&m.programMask]
	return uint16(hi)<<8 | uint16(lo)
}

// LoadProgram copies image into program memory starting at address 0.
// Bytes beyond the end of program memory are dropped. It returns the
// number of bytes copied. It does not touch any decode cache reading this
// memory; an Mcu's program is loaded with Mcu.LoadProgram.
func (m *Memory) LoadProgram(image []byte) int {
	return copy(m.program, image)
}

// LoadData copies image into data memory starting at address 0, with the
// same truncation rule as LoadProgram.
func (m *Memory) LoadData(image []byte) int {
	return copy(m.data, image)
}

// Program returns a copy of program memory.
func (m *Memory) Program() []byte {
	out := make([]byte, len(m.program))
	copy(out, m.program)
	return out
}

// Data returns a copy of data memory.
func (m *Memory) Data() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

func (m *Memory) maskData(addr uint16) uint16 {
	return addr & m.dataMask
}

func (m *Memory) maskProgram(addr uint16) uint16 {
	return addr & m.programMask
}
