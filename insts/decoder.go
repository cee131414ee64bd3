package insts

// Bit masks shared by the decoder.
const (
	regDMask    = 0x01F0 // bits [8:4]
	regRMask    = 0x000F // bits [3:0]
	regRHighBit = 0x0200 // bit 9, adds 16 to Rr

	twoWordTransferMask  = 0xFC0F
	twoWordTransferMatch = 0x9000 // LDS/STS
	twoWordJumpMask      = 0xFE0C
	twoWordJumpMatch     = 0x940C // JMP/CALL
)

// IsTwoWord reports whether word is the first word of a two-word
// instruction (LDS, STS, JMP or CALL).
func IsTwoWord(word uint16) bool {
	return word&twoWordTransferMask == twoWordTransferMatch ||
		word&twoWordJumpMask == twoWordJumpMatch
}

// Decoder decodes AVR machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new AVR instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a single 16-bit instruction word. Every word maps to
// exactly one instruction; unknown patterns decode to Unsupported.
func (d *Decoder) Decode(word uint16) Instruction {
	switch word >> 12 { // bits [15:12]
	case 0x0, 0x1, 0x2:
		return d.decodeTwoReg(word)
	case 0x3, 0x4, 0x5, 0x6, 0x7, 0xE:
		return d.decodeRegConst(word)
	case 0x8, 0xA:
		return d.decodeTransferIndirect(word)
	case 0x9:
		return d.decodeMisc(word)
	case 0xB:
		return d.decodeInOut(word)
	case 0xC, 0xD:
		return d.decodeRelativeJump(word)
	default: // 0xF
		return d.decodeBranchOrBit(word)
	}
}

// DecodePair decodes word and, for two-word instructions, fills in the
// operand carried by next.
func (d *Decoder) DecodePair(word, next uint16) Instruction {
	inst := d.Decode(word)
	switch i := inst.(type) {
	case TransferDirect:
		i.Address = next
		return i
	case AbsoluteJump:
		i.Target |= uint32(next)
		return i
	}
	return inst
}

func regD(word uint16) uint8 {
	return uint8((word & regDMask) >> 4)
}

func regR(word uint16) uint8 {
	r := uint8(word & regRMask)
	if word&regRHighBit != 0 {
		r += 16
	}
	return r
}

// decodeTwoReg decodes the 0x0000-0x2FFF block.
// Format: 0000 00rd dddd rrrr with op in bits [13:10]
func (d *Decoder) decodeTwoReg(word uint16) Instruction {
	if word < 0x0400 {
		return d.decodeMultiply(word)
	}

	var op Op
	switch (word >> 10) & 0xF { // bits [13:10]
	case 0x1:
		op = OpCPC
	case 0x2:
		op = OpSBC
	case 0x3:
		op = OpADD
	case 0x4:
		op = OpCPSE
	case 0x5:
		op = OpCP
	case 0x6:
		op = OpSUB
	case 0x7:
		op = OpADC
	case 0x8:
		op = OpAND
	case 0x9:
		op = OpEOR
	case 0xA:
		op = OpOR
	default: // 0xB
		op = OpMOV
	}

	return TwoReg{Op: op, Rd: regD(word), Rr: regR(word)}
}

// decodeMultiply decodes NOP, MOVW, MULS, MULSU and the FMUL forms.
func (d *Decoder) decodeMultiply(word uint16) Instruction {
	switch word >> 8 { // bits [15:8]
	case 0x00:
		if word == 0 {
			return Nop{}
		}
		return Unsupported{Word: word}
	case 0x01:
		// 0000 0001 dddd rrrr, register pairs
		return Multiply{
			Op: OpMOVW,
			Rd: uint8((word>>4)&0xF) * 2,
			Rr: uint8(word&0xF) * 2,
		}
	case 0x02:
		// 0000 0010 dddd rrrr, r16-r31
		return Multiply{
			Op: OpMULS,
			Rd: 16 + uint8((word>>4)&0xF),
			Rr: 16 + uint8(word&0xF),
		}
	}

	// 0000 0011 fddd frrr, r16-r23
	var op Op
	switch {
	case word&0x88 == 0x00:
		op = OpMULSU
	case word&0x88 == 0x08:
		op = OpFMUL
	case word&0x88 == 0x80:
		op = OpFMULS
	default:
		op = OpFMULSU
	}

	return Multiply{
		Op: op,
		Rd: 16 + uint8((word>>4)&0x7),
		Rr: 16 + uint8(word&0x7),
	}
}

// decodeRegConst decodes register-immediate instructions.
// Format: oooo KKKK dddd KKKK, Rd in r16-r31
func (d *Decoder) decodeRegConst(word uint16) Instruction {
	var op Op
	switch word >> 12 {
	case 0x3:
		op = OpCPI
	case 0x4:
		op = OpSBCI
	case 0x5:
		op = OpSUBI
	case 0x6:
		op = OpORI
	case 0x7:
		op = OpANDI
	default: // 0xE
		op = OpLDI
	}

	return RegConst{
		Op: op,
		Rd: 16 + uint8((word>>4)&0xF),
		K:  uint8((word>>4)&0xF0) | uint8(word&0xF),
	}
}

// decodeTransferIndirect decodes LDD/STD with displacement via Y or Z.
// Format: 10q0 qqsd dddd yqqq
func (d *Decoder) decodeTransferIndirect(word uint16) Instruction {
	pointer := PointerZ
	if word&0x0008 != 0 { // bit 3
		pointer = PointerY
	}

	q := word & 0x7         // bits [2:0]
	q |= (word >> 7) & 0x18 // bits [11:10]
	q |= (word >> 8) & 0x20 // bit 13

	return TransferIndirect{
		Load:         word&0x0200 == 0, // bit 9
		Pointer:      pointer,
		Reg:          regD(word),
		Displacement: uint8(q),
	}
}

// decodeMisc dispatches the 0x9000-0x9FFF block on bits [11:8].
func (d *Decoder) decodeMisc(word uint16) Instruction {
	switch (word >> 8) & 0xF {
	case 0x0, 0x1, 0x2, 0x3:
		return d.decodeTransfer(word)
	case 0x4, 0x5:
		return d.decodeOneRegOrControl(word)
	case 0x6, 0x7:
		return d.decodeWordImm(word)
	case 0x8, 0x9, 0xA, 0xB:
		return d.decodeIOBit(word)
	default: // 0xC-0xF
		return Multiply{Op: OpMUL, Rd: regD(word), Rr: regR(word)}
	}
}

// decodeTransfer decodes 1001 00sd dddd oooo: pointer transfers, LDS/STS,
// LPM/ELPM, XCH/LAS/LAC/LAT and PUSH/POP.
func (d *Decoder) decodeTransfer(word uint16) Instruction {
	load := word&0x0200 == 0 // bit 9
	reg := regD(word)

	switch word & 0xF { // bits [3:0]
	case 0x0:
		return TransferDirect{Load: load, Reg: reg}
	case 0x1:
		return TransferChangePointer{Load: load, Pointer: PointerZ, Reg: reg, PostIncrement: true}
	case 0x2:
		return TransferChangePointer{Load: load, Pointer: PointerZ, Reg: reg}
	case 0x4, 0x5, 0x6, 0x7:
		if load {
			return ProgramLoad{
				Extended:      word&0x2 != 0,
				Reg:           reg,
				PostIncrement: word&0x1 != 0,
			}
		}
		return Atomic{Op: [...]Op{OpXCH, OpLAS, OpLAC, OpLAT}[word&0x3], Reg: reg}
	case 0x9:
		return TransferChangePointer{Load: load, Pointer: PointerY, Reg: reg, PostIncrement: true}
	case 0xA:
		return TransferChangePointer{Load: load, Pointer: PointerY, Reg: reg}
	case 0xC:
		return TransferIndirect{Load: load, Pointer: PointerX, Reg: reg}
	case 0xD:
		return TransferChangePointer{Load: load, Pointer: PointerX, Reg: reg, PostIncrement: true}
	case 0xE:
		return TransferChangePointer{Load: load, Pointer: PointerX, Reg: reg}
	case 0xF:
		return PushPop{Pop: load, Reg: reg}
	}

	return Unsupported{Word: word}
}

// decodeOneRegOrControl decodes 1001 010d dddd oooo.
func (d *Decoder) decodeOneRegOrControl(word uint16) Instruction {
	reg := regD(word)
	high := word&0x0100 != 0 // bit 8

	switch word & 0xF { // bits [3:0]
	case 0x0:
		return OneReg{Op: OpCOM, Rd: reg}
	case 0x1:
		return OneReg{Op: OpNEG, Rd: reg}
	case 0x2:
		return OneReg{Op: OpSWAP, Rd: reg}
	case 0x3:
		return OneReg{Op: OpINC, Rd: reg}
	case 0x5:
		return OneReg{Op: OpASR, Rd: reg}
	case 0x6:
		return OneReg{Op: OpLSR, Rd: reg}
	case 0x7:
		return OneReg{Op: OpROR, Rd: reg}
	case 0xA:
		return OneReg{Op: OpDEC, Rd: reg}
	case 0x8:
		if !high {
			// 1001 0100 Bsss 1000
			return StatusBit{
				Set:  word&0x0080 == 0,
				Flag: StatusFlag((word >> 4) & 0x7),
			}
		}
		return d.decodeZeroOperand(word)
	case 0x9:
		switch (word >> 4) & 0x1F { // bits [8:4]
		case 0x00:
			return IndirectJump{}
		case 0x01:
			return IndirectJump{Extended: true}
		case 0x10:
			return IndirectJump{Call: true}
		case 0x11:
			return IndirectJump{Call: true, Extended: true}
		}
	case 0xB:
		if !high {
			return Control{Op: OpDES, K: uint8((word >> 4) & 0xF)}
		}
	case 0xC, 0xD, 0xE, 0xF:
		// 1001 010k kkkk 11ck, k holds bits [21:16] of the word address
		upper := uint32((word>>3)&0x3E) | uint32(word&0x1)
		return AbsoluteJump{Call: word&0x2 != 0, Target: upper << 16}
	}

	return Unsupported{Word: word}
}

// decodeZeroOperand decodes 1001 0101 oooo 1000.
func (d *Decoder) decodeZeroOperand(word uint16) Instruction {
	switch (word >> 4) & 0xF { // bits [7:4]
	case 0x0:
		return Return{}
	case 0x1:
		return Return{Interrupt: true}
	case 0x8:
		return Control{Op: OpSLEEP}
	case 0x9:
		return Control{Op: OpBREAK}
	case 0xA:
		return Control{Op: OpWDR}
	case 0xC:
		return ProgramLoad{Implicit: true}
	case 0xD:
		return ProgramLoad{Implicit: true, Extended: true}
	case 0xE:
		return Control{Op: OpSPM}
	case 0xF:
		return Control{Op: OpSPMZ}
	}

	return Unsupported{Word: word}
}

// decodeWordImm decodes ADIW/SBIW.
// Format: 1001 011o KKdd KKKK
func (d *Decoder) decodeWordImm(word uint16) Instruction {
	op := OpADIW
	if word&0x0100 != 0 {
		op = OpSBIW
	}

	return WordImm{
		Op: op,
		Rd: 24 + 2*uint8((word>>4)&0x3),
		K:  uint8((word>>2)&0x30) | uint8(word&0xF),
	}
}

// decodeIOBit decodes CBI/SBIC/SBI/SBIS.
// Format: 1001 10oo AAAA Abbb
func (d *Decoder) decodeIOBit(word uint16) Instruction {
	ops := [...]Op{OpCBI, OpSBIC, OpSBI, OpSBIS}

	return IOBit{
		Op:      ops[(word>>8)&0x3],
		Address: uint8((word >> 3) & 0x1F),
		Bit:     uint8(word & 0x7),
	}
}

// decodeInOut decodes IN/OUT.
// Format: 1011 sAAd dddd AAAA
func (d *Decoder) decodeInOut(word uint16) Instruction {
	return InOut{
		In:      word&0x0800 == 0, // bit 11
		Reg:     regD(word),
		Address: uint8((word>>5)&0x30) | uint8(word&0xF),
	}
}

// decodeRelativeJump decodes RJMP/RCALL.
// Format: 110c kkkk kkkk kkkk
func (d *Decoder) decodeRelativeJump(word uint16) Instruction {
	return RelativeJump{
		Call:   word&0x1000 != 0,
		Offset: int16(word<<4) >> 4, // sign-extend bits [11:0]
	}
}

// decodeBranchOrBit decodes the 0xF000-0xFFFF block.
func (d *Decoder) decodeBranchOrBit(word uint16) Instruction {
	if word&0x0800 == 0 {
		// 1111 0tkk kkkk ksss
		return Branch{
			Flag:    StatusFlag(word & 0x7),
			TestSet: word&0x0400 == 0,
			Offset:  int8(uint8(word>>2)&0xFE) >> 1, // sign-extend bits [9:3]
		}
	}

	// 1111 1oor rrrr 0bbb
	if word&0x0008 != 0 {
		return Unsupported{Word: word}
	}

	ops := [...]Op{OpBLD, OpBST, OpSBRC, OpSBRS}

	return RegBit{
		Op:  ops[(word>>9)&0x3],
		Reg: regD(word),
		Bit: uint8(word & 0x7),
	}
}
