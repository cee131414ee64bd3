package emu

import (
	"github.com/sarchlab/avrsim/insts"
)

// State is a snapshot of the architectural state of an Mcu.
type State struct {
	Variant          string
	PC               uint16
	SP               uint16
	SREG             uint8
	Flags            Flags
	Registers        [32]uint8
	InstructionCount uint64
	Next             string // mnemonic at PC
}

// State returns a snapshot of the Mcu.
func (m *Mcu) State() State {
	return State{
		Variant:          m.variant.Name,
		PC:               m.regFile.PC,
		SP:               m.regFile.SP,
		SREG:             m.regFile.SREG.Byte(),
		Flags:            m.regFile.SREG,
		Registers:        m.regFile.R,
		InstructionCount: m.instructionCount,
		Next:             m.CurrentMnemonic(),
	}
}

// FlagsByte returns the status register packed as ITHSVNZC.
func (m *Mcu) FlagsByte() uint8 {
	return m.regFile.SREG.Byte()
}

// SetFlagsByte replaces the status register from a packed ITHSVNZC byte.
func (m *Mcu) SetFlagsByte(b uint8) {
	m.regFile.SREG = FlagsFromByte(b)
}

// Line is one disassembled instruction.
type Line struct {
	Addr  uint16
	Words []uint16
	Inst  insts.Instruction
}

// Disassemble decodes count instructions of program memory starting at
// addr. Two-word instructions occupy one line.
func (m *Mcu) Disassemble(addr uint16, count int) []Line {
	return Disassemble(m.decoder, m.memory, addr, count)
}

// Disassemble decodes count instructions from any word source.
func Disassemble(decoder *insts.Decoder, memory *Memory, addr uint16, count int) []Line {
	lines := make([]Line, 0, count)
	addr = memory.maskProgram(addr) &^ 1

	for i := 0; i < count; i++ {
		word := memory.Fetch16(addr)
		line := Line{Addr: addr, Words: []uint16{word}}

		if insts.IsTwoWord(word) {
			next := memory.Fetch16(addr + InstructionWidth)
			line.Words = append(line.Words, next)
			line.Inst = decoder.DecodePair(word, next)
		} else {
			line.Inst = decoder.Decode(word)
		}

		lines = append(lines, line)
		addr = memory.maskProgram(addr + uint16(len(line.Words))*InstructionWidth)
	}

	return lines
}
