// Package emu provides functional AVR emulation.
package emu

import (
	"fmt"

	"github.com/sarchlab/avrsim/insts"
)

// execute dispatches a decoded instruction to the execution units. The PC
// still points at the instruction; Step adds one word afterwards.
func (m *Mcu) execute(pc, word uint16, inst insts.Instruction) error {
	switch i := inst.(type) {
	case insts.Nop:
		// Nothing to do.
	case insts.TwoReg:
		m.executeTwoReg(i)
	case insts.Multiply:
		m.executeMultiply(i)
	case insts.RegConst:
		m.executeRegConst(i)
	case insts.WordImm:
		if i.Op == insts.OpADIW {
			m.alu.ADIW(i.Rd, i.K)
		} else {
			m.alu.SBIW(i.Rd, i.K)
		}
	case insts.OneReg:
		m.executeOneReg(i)
	case insts.TransferIndirect:
		if i.Load {
			m.lsu.LDD(i.Reg, i.Pointer, i.Displacement)
		} else {
			m.lsu.STD(i.Pointer, i.Displacement, i.Reg)
		}
	case insts.TransferChangePointer:
		if i.Load {
			m.lsu.LDPointer(i.Reg, i.Pointer, i.PostIncrement)
		} else {
			m.lsu.STPointer(i.Pointer, i.Reg, i.PostIncrement)
		}
	case insts.TransferDirect:
		k := m.memory.Fetch16(pc + InstructionWidth)
		if i.Load {
			m.lsu.LDS(i.Reg, k)
		} else {
			m.lsu.STS(k, i.Reg)
		}
		m.regFile.PC = m.memory.maskProgram(m.regFile.PC + InstructionWidth)
	case insts.ProgramLoad:
		// RAMPZ is not modeled, so ELPM reads the same bank as LPM.
		if i.Implicit {
			m.lsu.LPM(0, false)
		} else {
			m.lsu.LPM(i.Reg, i.PostIncrement)
		}
	case insts.Atomic:
		m.lsu.Atomic(i.Op, i.Reg)
	case insts.PushPop:
		if i.Pop {
			m.lsu.POP(i.Reg)
		} else {
			m.lsu.PUSH(i.Reg)
		}
	case insts.InOut:
		if i.In {
			m.lsu.IN(i.Reg, i.Address)
		} else {
			m.lsu.OUT(i.Address, i.Reg)
		}
	case insts.IOBit:
		m.executeIOBit(i)
	case insts.RegBit:
		m.executeRegBit(i)
	case insts.StatusBit:
		m.regFile.SREG.Set(i.Flag, i.Set)
	case insts.Branch:
		m.branchUnit.BRBx(i.Flag, i.TestSet, i.Offset)
	case insts.RelativeJump:
		if i.Call {
			m.branchUnit.RCALL(i.Offset)
		} else {
			m.branchUnit.RJMP(i.Offset)
		}
	case insts.AbsoluteJump:
		m.executeAbsoluteJump(pc, i)
	case insts.IndirectJump:
		// EIND is not modeled, so EIJMP and EICALL use Z alone.
		if i.Call {
			m.branchUnit.ICALL()
		} else {
			m.branchUnit.IJMP()
		}
	case insts.Return:
		if i.Interrupt {
			m.branchUnit.RETI()
		} else {
			m.branchUnit.RET()
		}
	default:
		// Control and Unsupported land here.
		return &ExecError{PC: pc, Word: word, Inst: inst}
	}

	return nil
}

func (m *Mcu) executeTwoReg(i insts.TwoReg) {
	switch i.Op {
	case insts.OpADD:
		m.alu.ADD(i.Rd, i.Rr, false)
	case insts.OpADC:
		m.alu.ADD(i.Rd, i.Rr, true)
	case insts.OpSUB:
		m.alu.SUB(i.Rd, i.Rr, false, true)
	case insts.OpSBC:
		m.alu.SUB(i.Rd, i.Rr, true, true)
	case insts.OpCP:
		m.alu.SUB(i.Rd, i.Rr, false, false)
	case insts.OpCPC:
		m.alu.SUB(i.Rd, i.Rr, true, false)
	case insts.OpCPSE:
		m.branchUnit.CPSE(i.Rd, i.Rr)
	case insts.OpAND:
		m.alu.AND(i.Rd, m.regFile.ReadReg(i.Rr))
	case insts.OpOR:
		m.alu.OR(i.Rd, m.regFile.ReadReg(i.Rr))
	case insts.OpEOR:
		m.alu.EOR(i.Rd, m.regFile.ReadReg(i.Rr))
	case insts.OpMOV:
		m.alu.MOV(i.Rd, m.regFile.ReadReg(i.Rr))
	}
}

func (m *Mcu) executeMultiply(i insts.Multiply) {
	switch i.Op {
	case insts.OpMUL:
		m.alu.MUL(i.Rd, i.Rr)
	case insts.OpMULS:
		m.alu.MULS(i.Rd, i.Rr, false)
	case insts.OpMULSU:
		m.alu.MULSU(i.Rd, i.Rr, false)
	case insts.OpFMUL:
		m.alu.FMUL(i.Rd, i.Rr)
	case insts.OpFMULS:
		m.alu.MULS(i.Rd, i.Rr, true)
	case insts.OpFMULSU:
		m.alu.MULSU(i.Rd, i.Rr, true)
	case insts.OpMOVW:
		m.alu.MOVW(i.Rd, i.Rr)
	}
}

func (m *Mcu) executeRegConst(i insts.RegConst) {
	switch i.Op {
	case insts.OpCPI:
		m.alu.SUBImm(i.Rd, i.K, false, false)
	case insts.OpSBCI:
		m.alu.SUBImm(i.Rd, i.K, true, true)
	case insts.OpSUBI:
		m.alu.SUBImm(i.Rd, i.K, false, true)
	case insts.OpORI:
		m.alu.OR(i.Rd, i.K)
	case insts.OpANDI:
		m.alu.AND(i.Rd, i.K)
	case insts.OpLDI:
		m.alu.MOV(i.Rd, i.K)
	}
}

func (m *Mcu) executeOneReg(i insts.OneReg) {
	switch i.Op {
	case insts.OpCOM:
		m.alu.COM(i.Rd)
	case insts.OpNEG:
		m.alu.NEG(i.Rd)
	case insts.OpSWAP:
		m.alu.SWAP(i.Rd)
	case insts.OpINC:
		m.alu.INC(i.Rd)
	case insts.OpDEC:
		m.alu.DEC(i.Rd)
	case insts.OpASR:
		m.alu.ASR(i.Rd)
	case insts.OpLSR:
		m.alu.LSR(i.Rd)
	case insts.OpROR:
		m.alu.ROR(i.Rd)
	}
}

func (m *Mcu) executeIOBit(i insts.IOBit) {
	switch i.Op {
	case insts.OpCBI:
		m.lsu.CBI(i.Address, i.Bit)
	case insts.OpSBI:
		m.lsu.SBI(i.Address, i.Bit)
	case insts.OpSBIC:
		m.branchUnit.SBIx(i.Address, i.Bit, false)
	case insts.OpSBIS:
		m.branchUnit.SBIx(i.Address, i.Bit, true)
	}
}

func (m *Mcu) executeRegBit(i insts.RegBit) {
	switch i.Op {
	case insts.OpBLD:
		m.alu.BLD(i.Reg, i.Bit)
	case insts.OpBST:
		m.alu.BST(i.Reg, i.Bit)
	case insts.OpSBRC:
		m.branchUnit.SBRx(i.Reg, i.Bit, false)
	case insts.OpSBRS:
		m.branchUnit.SBRx(i.Reg, i.Bit, true)
	}
}

// executeAbsoluteJump completes the 22-bit word address from the second
// instruction word. Targets beyond the 16-bit byte-addressed PC keep their
// low bits.
func (m *Mcu) executeAbsoluteJump(pc uint16, i insts.AbsoluteJump) {
	target := (i.Target | uint32(m.memory.Fetch16(pc+InstructionWidth))) * InstructionWidth
	if target > 0xFFFF {
		m.logger.Info("jump target beyond program counter range",
			"pc", fmt.Sprintf("0x%04x", pc),
			"target", fmt.Sprintf("0x%06x", target))
	}

	if i.Call {
		m.branchUnit.CALL(uint16(target))
	} else {
		m.branchUnit.JMP(uint16(target))
	}
}
