// Package emu provides functional AVR emulation.
package emu

import "github.com/sarchlab/avrsim/insts"

// RegFile represents the AVR register file.
// It contains 32 general-purpose 8-bit registers (r0-r31),
// the stack pointer (SP), the program counter (PC) and the status
// register (SREG).
type RegFile struct {
	// R holds general-purpose registers r0-r31. Pairs r26:r27, r28:r29
	// and r30:r31 double as the X, Y and Z pointer registers.
	R [32]uint8

	// SP is the stack pointer. It addresses the most recently pushed byte.
	SP uint16

	// PC is the program counter, a byte address into program memory.
	PC uint16

	// SREG holds the status flags.
	SREG Flags
}

// Flags represents the AVR status register.
type Flags struct {
	// C is the carry flag.
	C bool
	// Z is the zero flag.
	Z bool
	// N is the negative flag.
	N bool
	// V is the two's complement overflow flag.
	V bool
	// S is the sign flag, N xor V.
	S bool
	// H is the half carry flag.
	H bool
	// T is the transfer bit used by BLD and BST.
	T bool
	// I is the global interrupt enable.
	I bool
}

// Byte packs the flags as ITHSVNZC, I in the most significant bit.
func (f Flags) Byte() uint8 {
	var b uint8
	for flag := insts.FlagC; flag <= insts.FlagI; flag++ {
		if f.Get(flag) {
			b |= 1 << flag
		}
	}
	return b
}

// FlagsFromByte unpacks an ITHSVNZC status byte.
func FlagsFromByte(b uint8) Flags {
	var f Flags
	for flag := insts.FlagC; flag <= insts.FlagI; flag++ {
		f.Set(flag, b&(1<<flag) != 0)
	}
	return f
}

// Get returns the value of a single flag.
func (f Flags) Get(flag insts.StatusFlag) bool {
	switch flag {
	case insts.FlagC:
		return f.C
	case insts.FlagZ:
		return f.Z
	case insts.FlagN:
		return f.N
	case insts.FlagV:
		return f.V
	case insts.FlagS:
		return f.S
	case insts.FlagH:
		return f.H
	case insts.FlagT:
		return f.T
	default:
		return f.I
	}
}

// Set assigns a single flag.
func (f *Flags) Set(flag insts.StatusFlag, value bool) {
	switch flag {
	case insts.FlagC:
		f.C = value
	case insts.FlagZ:
		f.Z = value
	case insts.FlagN:
		f.N = value
	case insts.FlagV:
		f.V = value
	case insts.FlagS:
		f.S = value
	case insts.FlagH:
		f.H = value
	case insts.FlagT:
		f.T = value
	default:
		f.I = value
	}
}

// ReadReg reads a general-purpose register.
func (r *RegFile) ReadReg(reg uint8) uint8 {
	return r.R[reg&0x1F]
}

// WriteReg writes a general-purpose register.
func (r *RegFile) WriteReg(reg uint8, value uint8) {
	r.R[reg&0x1F] = value
}

// ReadPair reads the 16-bit value of the register pair starting at the
// even register reg (low byte) and reg+1 (high byte).
func (r *RegFile) ReadPair(reg uint8) uint16 {
	reg &= 0x1E
	return uint16(r.R[reg+1])<<8 | uint16(r.R[reg])
}

// WritePair writes a 16-bit value to the register pair starting at reg.
func (r *RegFile) WritePair(reg uint8, value uint16) {
	reg &= 0x1E
	r.R[reg] = uint8(value)
	r.R[reg+1] = uint8(value >> 8)
}

// ReadPointer reads the X, Y or Z pointer register.
func (r *RegFile) ReadPointer(p insts.Pointer) uint16 {
	return r.ReadPair(uint8(p))
}

// WritePointer writes the X, Y or Z pointer register.
func (r *RegFile) WritePointer(p insts.Pointer, value uint16) {
	r.WritePair(uint8(p), value)
}
