// Package emu provides functional AVR emulation.
package emu

import "github.com/sarchlab/avrsim/insts"

// push pre-decrements SP and stores a byte at the new top of stack.
// SP wraps from 0 to the top of data memory.
func push(regFile *RegFile, memory *Memory, value uint8) {
	regFile.SP = memory.maskData(regFile.SP - 1)
	memory.Write8(regFile.SP, value)
}

// pop reads the top of stack and post-increments SP.
func pop(regFile *RegFile, memory *Memory) uint8 {
	value := memory.Read8(regFile.SP)
	regFile.SP = memory.maskData(regFile.SP + 1)
	return value
}

// LoadStoreUnit implements AVR data transfer operations.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// LDD performs Rd = data[P + q].
func (lsu *LoadStoreUnit) LDD(rd uint8, p insts.Pointer, q uint8) {
	addr := lsu.regFile.ReadPointer(p) + uint16(q)
	lsu.regFile.WriteReg(rd, lsu.memory.Read8(addr))
}

// STD performs data[P + q] = Rr.
func (lsu *LoadStoreUnit) STD(p insts.Pointer, q uint8, rr uint8) {
	addr := lsu.regFile.ReadPointer(p) + uint16(q)
	lsu.memory.Write8(addr, lsu.regFile.ReadReg(rr))
}

// adjust returns the effective address of a post-increment or
// pre-decrement access and updates the pointer register.
func (lsu *LoadStoreUnit) adjust(p insts.Pointer, postIncrement bool) uint16 {
	ptr := lsu.regFile.ReadPointer(p)
	if postIncrement {
		lsu.regFile.WritePointer(p, ptr+1)
		return ptr
	}

	ptr--
	lsu.regFile.WritePointer(p, ptr)
	return ptr
}

// LDPointer performs LD Rd, P+ or LD Rd, -P. Rd is written after the
// pointer update.
func (lsu *LoadStoreUnit) LDPointer(rd uint8, p insts.Pointer, postIncrement bool) {
	addr := lsu.adjust(p, postIncrement)
	lsu.regFile.WriteReg(rd, lsu.memory.Read8(addr))
}

// STPointer performs ST P+, Rr or ST -P, Rr.
func (lsu *LoadStoreUnit) STPointer(p insts.Pointer, rr uint8, postIncrement bool) {
	value := lsu.regFile.ReadReg(rr)
	addr := lsu.adjust(p, postIncrement)
	lsu.memory.Write8(addr, value)
}

// LDS performs Rd = data[k].
func (lsu *LoadStoreUnit) LDS(rd uint8, k uint16) {
	lsu.regFile.WriteReg(rd, lsu.memory.Read8(k))
}

// STS performs data[k] = Rr.
func (lsu *LoadStoreUnit) STS(k uint16, rr uint8) {
	lsu.memory.Write8(k, lsu.regFile.ReadReg(rr))
}

// LPM performs Rd = program[Z], optionally post-incrementing Z.
func (lsu *LoadStoreUnit) LPM(rd uint8, postIncrement bool) {
	z := lsu.regFile.ReadPointer(insts.PointerZ)
	lsu.regFile.WriteReg(rd, lsu.memory.ProgramByte(z))
	if postIncrement {
		lsu.regFile.WritePointer(insts.PointerZ, z+1)
	}
}

// PUSH stores Rr on the stack.
func (lsu *LoadStoreUnit) PUSH(rr uint8) {
	push(lsu.regFile, lsu.memory, lsu.regFile.ReadReg(rr))
}

// POP loads Rd from the stack.
func (lsu *LoadStoreUnit) POP(rd uint8) {
	lsu.regFile.WriteReg(rd, pop(lsu.regFile, lsu.memory))
}

// IN performs Rd = I/O[A].
func (lsu *LoadStoreUnit) IN(rd, ioAddr uint8) {
	lsu.regFile.WriteReg(rd, lsu.memory.ReadIO(ioAddr))
}

// OUT performs I/O[A] = Rr.
func (lsu *LoadStoreUnit) OUT(ioAddr, rr uint8) {
	lsu.memory.WriteIO(ioAddr, lsu.regFile.ReadReg(rr))
}

// SBI sets bit n of I/O register A.
func (lsu *LoadStoreUnit) SBI(ioAddr, n uint8) {
	lsu.memory.WriteIO(ioAddr, lsu.memory.ReadIO(ioAddr)|1<<(n&7))
}

// CBI clears bit n of I/O register A.
func (lsu *LoadStoreUnit) CBI(ioAddr, n uint8) {
	lsu.memory.WriteIO(ioAddr, lsu.memory.ReadIO(ioAddr)&^(1<<(n&7)))
}

// Atomic performs XCH, LAS, LAC or LAT on data[Z]. Rd receives the old
// memory value.
func (lsu *LoadStoreUnit) Atomic(op insts.Op, rd uint8) {
	z := lsu.regFile.ReadPointer(insts.PointerZ)
	old := lsu.memory.Read8(z)
	reg := lsu.regFile.ReadReg(rd)

	var value uint8
	switch op {
	case insts.OpXCH:
		value = reg
	case insts.OpLAS:
		value = old | reg
	case insts.OpLAC:
		value = old &^ reg
	default: // insts.OpLAT
		value = old ^ reg
	}

	lsu.memory.Write8(z, value)
	lsu.regFile.WriteReg(rd, old)
}
