package benchmarks

import "github.com/sarchlab/avrsim/insts"

// Helper functions for building AVR programs. Relative offsets are in
// words and count from the instruction after the branch, as in the
// assembler's ".+N" notation with N = 2*offset.

// HaltWord is "rjmp .-2", the conventional end of a benchmark program.
const HaltWord uint16 = 0xCFFF

// BuildProgram lays instruction words out little-endian, the way they sit
// in flash.
func BuildProgram(words ...uint16) []byte {
	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w), byte(w>>8))
	}
	return program
}

// encodeTwoReg encodes 0000 00rd dddd rrrr style instructions.
func encodeTwoReg(base uint16, rd, rr uint8) uint16 {
	return base |
		uint16(rr&0x10)<<5 | // bit 9
		uint16(rd&0x1F)<<4 | // bits [8:4]
		uint16(rr&0x0F) // bits [3:0]
}

// EncodeADD encodes ADD Rd, Rr.
func EncodeADD(rd, rr uint8) uint16 { return encodeTwoReg(0x0C00, rd, rr) }

// EncodeADC encodes ADC Rd, Rr.
func EncodeADC(rd, rr uint8) uint16 { return encodeTwoReg(0x1C00, rd, rr) }

// EncodeSUB encodes SUB Rd, Rr.
func EncodeSUB(rd, rr uint8) uint16 { return encodeTwoReg(0x1800, rd, rr) }

// EncodeSBC encodes SBC Rd, Rr.
func EncodeSBC(rd, rr uint8) uint16 { return encodeTwoReg(0x0800, rd, rr) }

// EncodeCP encodes CP Rd, Rr.
func EncodeCP(rd, rr uint8) uint16 { return encodeTwoReg(0x1400, rd, rr) }

// EncodeCPC encodes CPC Rd, Rr.
func EncodeCPC(rd, rr uint8) uint16 { return encodeTwoReg(0x0400, rd, rr) }

// EncodeCPSE encodes CPSE Rd, Rr.
func EncodeCPSE(rd, rr uint8) uint16 { return encodeTwoReg(0x1000, rd, rr) }

// EncodeAND encodes AND Rd, Rr.
func EncodeAND(rd, rr uint8) uint16 { return encodeTwoReg(0x2000, rd, rr) }

// EncodeEOR encodes EOR Rd, Rr. EOR Rd, Rd is the CLR idiom.
func EncodeEOR(rd, rr uint8) uint16 { return encodeTwoReg(0x2400, rd, rr) }

// EncodeOR encodes OR Rd, Rr.
func EncodeOR(rd, rr uint8) uint16 { return encodeTwoReg(0x2800, rd, rr) }

// EncodeMOV encodes MOV Rd, Rr.
func EncodeMOV(rd, rr uint8) uint16 { return encodeTwoReg(0x2C00, rd, rr) }

// EncodeMUL encodes MUL Rd, Rr.
func EncodeMUL(rd, rr uint8) uint16 { return encodeTwoReg(0x9C00, rd, rr) }

// encodeRegConst encodes oooo KKKK dddd KKKK with Rd in r16-r31.
func encodeRegConst(base uint16, rd, k uint8) uint16 {
	return base |
		uint16(k&0xF0)<<4 | // bits [11:8]
		uint16((rd-16)&0x0F)<<4 | // bits [7:4]
		uint16(k&0x0F) // bits [3:0]
}

// EncodeLDI encodes LDI Rd, K (r16-r31).
func EncodeLDI(rd, k uint8) uint16 { return encodeRegConst(0xE000, rd, k) }

// EncodeCPI encodes CPI Rd, K (r16-r31).
func EncodeCPI(rd, k uint8) uint16 { return encodeRegConst(0x3000, rd, k) }

// EncodeSUBI encodes SUBI Rd, K (r16-r31).
func EncodeSUBI(rd, k uint8) uint16 { return encodeRegConst(0x5000, rd, k) }

// EncodeSBCI encodes SBCI Rd, K (r16-r31).
func EncodeSBCI(rd, k uint8) uint16 { return encodeRegConst(0x4000, rd, k) }

// EncodeORI encodes ORI Rd, K (r16-r31).
func EncodeORI(rd, k uint8) uint16 { return encodeRegConst(0x6000, rd, k) }

// EncodeANDI encodes ANDI Rd, K (r16-r31).
func EncodeANDI(rd, k uint8) uint16 { return encodeRegConst(0x7000, rd, k) }

func encodeOneReg(op uint16, rd uint8) uint16 {
	return 0x9400 | uint16(rd&0x1F)<<4 | op
}

// EncodeCOM encodes COM Rd.
func EncodeCOM(rd uint8) uint16 { return encodeOneReg(0x0, rd) }

// EncodeNEG encodes NEG Rd.
func EncodeNEG(rd uint8) uint16 { return encodeOneReg(0x1, rd) }

// EncodeSWAP encodes SWAP Rd.
func EncodeSWAP(rd uint8) uint16 { return encodeOneReg(0x2, rd) }

// EncodeINC encodes INC Rd.
func EncodeINC(rd uint8) uint16 { return encodeOneReg(0x3, rd) }

// EncodeASR encodes ASR Rd.
func EncodeASR(rd uint8) uint16 { return encodeOneReg(0x5, rd) }

// EncodeLSR encodes LSR Rd.
func EncodeLSR(rd uint8) uint16 { return encodeOneReg(0x6, rd) }

// EncodeROR encodes ROR Rd.
func EncodeROR(rd uint8) uint16 { return encodeOneReg(0x7, rd) }

// EncodeDEC encodes DEC Rd.
func EncodeDEC(rd uint8) uint16 { return encodeOneReg(0xA, rd) }

// encodeWordImm encodes 1001 011o KKdd KKKK on pairs r24, r26, r28, r30.
func encodeWordImm(base uint16, rd, k uint8) uint16 {
	return base |
		uint16(k&0x30)<<2 | // bits [7:6]
		uint16((rd-24)/2&0x3)<<4 | // bits [5:4]
		uint16(k&0x0F) // bits [3:0]
}

// EncodeADIW encodes ADIW Rd+1:Rd, K.
func EncodeADIW(rd, k uint8) uint16 { return encodeWordImm(0x9600, rd, k) }

// EncodeSBIW encodes SBIW Rd+1:Rd, K.
func EncodeSBIW(rd, k uint8) uint16 { return encodeWordImm(0x9700, rd, k) }

// EncodeIN encodes IN Rd, A.
func EncodeIN(rd, a uint8) uint16 {
	return 0xB000 | uint16(a&0x30)<<5 | uint16(rd&0x1F)<<4 | uint16(a&0x0F)
}

// EncodeOUT encodes OUT A, Rr.
func EncodeOUT(a, rr uint8) uint16 {
	return 0xB800 | uint16(a&0x30)<<5 | uint16(rr&0x1F)<<4 | uint16(a&0x0F)
}

// EncodePUSH encodes PUSH Rr.
func EncodePUSH(rr uint8) uint16 { return 0x920F | uint16(rr&0x1F)<<4 }

// EncodePOP encodes POP Rd.
func EncodePOP(rd uint8) uint16 { return 0x900F | uint16(rd&0x1F)<<4 }

// EncodeLDS encodes LDS Rd, k as two words.
func EncodeLDS(rd uint8, k uint16) (uint16, uint16) {
	return 0x9000 | uint16(rd&0x1F)<<4, k
}

// EncodeSTS encodes STS k, Rr as two words.
func EncodeSTS(k uint16, rr uint8) (uint16, uint16) {
	return 0x9200 | uint16(rr&0x1F)<<4, k
}

func encodeDisplacement(p insts.Pointer, q uint8) uint16 {
	w := uint16(q&0x20)<<8 | // bit 13
		uint16(q&0x18)<<7 | // bits [11:10]
		uint16(q&0x07) // bits [2:0]
	if p == insts.PointerY {
		w |= 0x0008
	}
	return 0x8000 | w
}

// EncodeLDD encodes LDD Rd, Y+q or LDD Rd, Z+q.
func EncodeLDD(rd uint8, p insts.Pointer, q uint8) uint16 {
	return encodeDisplacement(p, q) | uint16(rd&0x1F)<<4
}

// EncodeSTD encodes STD Y+q, Rr or STD Z+q, Rr.
func EncodeSTD(p insts.Pointer, q, rr uint8) uint16 {
	return encodeDisplacement(p, q) | 0x0200 | uint16(rr&0x1F)<<4
}

var postIncrementMode = map[insts.Pointer]uint16{
	insts.PointerX: 0xD,
	insts.PointerY: 0x9,
	insts.PointerZ: 0x1,
}

// EncodeLDPostInc encodes LD Rd, P+.
func EncodeLDPostInc(rd uint8, p insts.Pointer) uint16 {
	return 0x9000 | uint16(rd&0x1F)<<4 | postIncrementMode[p]
}

// EncodeSTPostInc encodes ST P+, Rr.
func EncodeSTPostInc(p insts.Pointer, rr uint8) uint16 {
	return 0x9200 | uint16(rr&0x1F)<<4 | postIncrementMode[p]
}

// EncodeRJMP encodes RJMP with a signed word offset.
func EncodeRJMP(offset int) uint16 { return 0xC000 | uint16(offset)&0x0FFF }

// EncodeRCALL encodes RCALL with a signed word offset.
func EncodeRCALL(offset int) uint16 { return 0xD000 | uint16(offset)&0x0FFF }

// EncodeJMP encodes JMP to a byte address as two words.
func EncodeJMP(addr uint32) (uint16, uint16) { return encodeAbsolute(0x940C, addr) }

// EncodeCALL encodes CALL to a byte address as two words.
func EncodeCALL(addr uint32) (uint16, uint16) { return encodeAbsolute(0x940E, addr) }

func encodeAbsolute(base uint16, addr uint32) (uint16, uint16) {
	target := addr / 2
	upper := uint16(target>>16) & 0x3F
	return base | (upper&0x3E)<<3 | upper&0x1, uint16(target)
}

// EncodeRET encodes RET.
func EncodeRET() uint16 { return 0x9508 }

// EncodeNOP encodes NOP.
func EncodeNOP() uint16 { return 0x0000 }

// EncodeBRBS encodes a branch taken when the flag is set.
func EncodeBRBS(flag insts.StatusFlag, offset int) uint16 {
	return 0xF000 | (uint16(offset)&0x7F)<<3 | uint16(flag&0x7)
}

// EncodeBRBC encodes a branch taken when the flag is clear.
func EncodeBRBC(flag insts.StatusFlag, offset int) uint16 {
	return 0xF400 | (uint16(offset)&0x7F)<<3 | uint16(flag&0x7)
}

// EncodeBRNE encodes BRNE.
func EncodeBRNE(offset int) uint16 { return EncodeBRBC(insts.FlagZ, offset) }

// EncodeBREQ encodes BREQ.
func EncodeBREQ(offset int) uint16 { return EncodeBRBS(insts.FlagZ, offset) }

// EncodeBRCS encodes BRCS.
func EncodeBRCS(offset int) uint16 { return EncodeBRBS(insts.FlagC, offset) }

// EncodeBRCC encodes BRCC.
func EncodeBRCC(offset int) uint16 { return EncodeBRBC(insts.FlagC, offset) }

// EncodeSBI encodes SBI A, b.
func EncodeSBI(a, b uint8) uint16 { return 0x9A00 | uint16(a&0x1F)<<3 | uint16(b&0x7) }

// EncodeCBI encodes CBI A, b.
func EncodeCBI(a, b uint8) uint16 { return 0x9800 | uint16(a&0x1F)<<3 | uint16(b&0x7) }

// EncodeSBIC encodes SBIC A, b.
func EncodeSBIC(a, b uint8) uint16 { return 0x9900 | uint16(a&0x1F)<<3 | uint16(b&0x7) }

// EncodeSBIS encodes SBIS A, b.
func EncodeSBIS(a, b uint8) uint16 { return 0x9B00 | uint16(a&0x1F)<<3 | uint16(b&0x7) }

// EncodeSBRC encodes SBRC Rr, b.
func EncodeSBRC(rr, b uint8) uint16 { return 0xFC00 | uint16(rr&0x1F)<<4 | uint16(b&0x7) }

// EncodeSBRS encodes SBRS Rr, b.
func EncodeSBRS(rr, b uint8) uint16 { return 0xFE00 | uint16(rr&0x1F)<<4 | uint16(b&0x7) }

// EncodeLPM encodes LPM Rd, Z or LPM Rd, Z+.
func EncodeLPM(rd uint8, postIncrement bool) uint16 {
	if postIncrement {
		return 0x9005 | uint16(rd&0x1F)<<4
	}
	return 0x9004 | uint16(rd&0x1F)<<4
}
