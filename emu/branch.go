// Package emu provides functional AVR emulation.
package emu

import "github.com/sarchlab/avrsim/insts"

// InstructionWidth is the size of one instruction word in bytes. The Mcu
// advances the PC by this amount after every instruction, so control-flow
// operations leave the PC one word before their target.
const InstructionWidth = 2

// BranchUnit implements AVR branches, jumps, calls, returns and skips.
type BranchUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewBranchUnit creates a new BranchUnit connected to the given register
// file and memory.
func NewBranchUnit(regFile *RegFile, memory *Memory) *BranchUnit {
	return &BranchUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// relative moves the PC by a signed number of words. The result wraps
// around program memory in both directions.
func (b *BranchUnit) relative(words int) {
	pc := int(b.regFile.PC) + words*InstructionWidth
	b.regFile.PC = b.memory.maskProgram(uint16(pc))
}

// jumpTo leaves the PC so that the next advance lands on the byte
// address target.
func (b *BranchUnit) jumpTo(target uint16) {
	b.regFile.PC = b.memory.maskProgram(target - InstructionWidth)
}

// pushReturn pushes a return address, high byte first, so the low byte
// ends at the lower address.
func (b *BranchUnit) pushReturn(addr uint16) {
	push(b.regFile, b.memory, uint8(addr>>8))
	push(b.regFile, b.memory, uint8(addr))
}

// BRBx performs a conditional relative branch when the selected flag
// equals testSet.
func (b *BranchUnit) BRBx(flag insts.StatusFlag, testSet bool, offset int8) {
	if b.regFile.SREG.Get(flag) == testSet {
		b.relative(int(offset))
	}
}

// RJMP performs a relative jump.
func (b *BranchUnit) RJMP(offset int16) {
	b.relative(int(offset))
}

// RCALL pushes the address of the next instruction and jumps relative.
func (b *BranchUnit) RCALL(offset int16) {
	b.pushReturn(b.regFile.PC + InstructionWidth)
	b.relative(int(offset))
}

// JMP jumps to a byte address.
func (b *BranchUnit) JMP(target uint16) {
	b.jumpTo(target)
}

// CALL pushes the address after the two-word CALL and jumps to a byte
// address.
func (b *BranchUnit) CALL(target uint16) {
	b.pushReturn(b.regFile.PC + 2*InstructionWidth)
	b.jumpTo(target)
}

// IJMP jumps to the word address held in Z.
func (b *BranchUnit) IJMP() {
	b.jumpTo(b.regFile.ReadPointer(insts.PointerZ) * InstructionWidth)
}

// ICALL pushes the address of the next instruction and jumps to the word
// address held in Z.
func (b *BranchUnit) ICALL() {
	b.pushReturn(b.regFile.PC + InstructionWidth)
	b.IJMP()
}

// RET pops a return address, low byte first, and resumes there.
func (b *BranchUnit) RET() {
	lo := pop(b.regFile, b.memory)
	hi := pop(b.regFile, b.memory)
	b.jumpTo(uint16(hi)<<8 | uint16(lo))
}

// RETI returns and sets the global interrupt enable.
func (b *BranchUnit) RETI() {
	b.RET()
	b.regFile.SREG.I = true
}

// Skip moves the PC past the next instruction. A two-word instruction is
// skipped as a whole.
func (b *BranchUnit) Skip() {
	b.regFile.PC = b.memory.maskProgram(b.regFile.PC + InstructionWidth)
	if insts.IsTwoWord(b.memory.Fetch16(b.regFile.PC)) {
		b.regFile.PC = b.memory.maskProgram(b.regFile.PC + InstructionWidth)
	}
}

// CPSE skips the next instruction if Rd == Rr.
func (b *BranchUnit) CPSE(rd, rr uint8) {
	if b.regFile.ReadReg(rd) == b.regFile.ReadReg(rr) {
		b.Skip()
	}
}

// SBRx skips the next instruction if bit n of Rd equals set.
func (b *BranchUnit) SBRx(rd, n uint8, set bool) {
	if bit(b.regFile.ReadReg(rd), uint(n&7)) == set {
		b.Skip()
	}
}

// SBIx skips the next instruction if bit n of an I/O register equals set.
func (b *BranchUnit) SBIx(ioAddr, n uint8, set bool) {
	if bit(b.memory.ReadIO(ioAddr), uint(n&7)) == set {
		b.Skip()
	}
}
