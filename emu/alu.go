// Package emu provides functional AVR emulation.
package emu

// ALU implements AVR arithmetic and logic operations. Every operation that
// affects the status register recomputes its flags from the operands and
// the result.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

func bit(v uint8, n uint) bool {
	return v&(1<<n) != 0
}

func carryIn(f *Flags, withCarry bool) uint8 {
	if withCarry && f.C {
		return 1
	}
	return 0
}

// add computes x + y + c and sets C, Z, N, V, S and H.
func (a *ALU) add(x, y, c uint8) uint8 {
	sum := x + y + c
	carries := (x & y) | (y &^ sum) | (x &^ sum)
	overflow := (x & y &^ sum) | (^x & ^y & sum)

	f := &a.regFile.SREG
	f.H = bit(carries, 3)
	f.C = bit(carries, 7)
	f.V = bit(overflow, 7)
	f.N = bit(sum, 7)
	f.S = f.N != f.V
	f.Z = sum == 0

	return sum
}

// sub computes x - (y + c) and sets C, Z, N, V, S and H.
func (a *ALU) sub(x, y, c uint8) uint8 {
	y += c
	result := x - y
	borrows := (^x & y) | (y & result) | (^x & result)
	overflow := (x &^ y &^ result) | (^x & y & result)

	f := &a.regFile.SREG
	f.H = bit(borrows, 3)
	f.C = bit(borrows, 7)
	f.V = bit(overflow, 7)
	f.N = bit(result, 7)
	f.S = f.N != f.V
	f.Z = result == 0

	return result
}

// logic sets the flags of AND, OR and EOR. C and H are left untouched.
func (a *ALU) logic(result uint8) uint8 {
	f := &a.regFile.SREG
	f.V = false
	f.N = bit(result, 7)
	f.S = f.N
	f.Z = result == 0
	return result
}

// ADD performs Rd = Rd + Rr, plus carry when withCarry is set (ADC).
func (a *ALU) ADD(rd, rr uint8, withCarry bool) {
	c := carryIn(&a.regFile.SREG, withCarry)
	a.regFile.WriteReg(rd, a.add(a.regFile.ReadReg(rd), a.regFile.ReadReg(rr), c))
}

// SUB performs Rd - Rr, minus carry when withCarry is set (SBC, CPC).
// The result is written back only when store is set; CP and CPC only
// update the flags.
func (a *ALU) SUB(rd, rr uint8, withCarry, store bool) {
	a.SUBImm(rd, a.regFile.ReadReg(rr), withCarry, store)
}

// SUBImm performs Rd - K with the same carry and store rules as SUB
// (SUBI, SBCI, CPI). Z is recomputed from the result for every form.
func (a *ALU) SUBImm(rd, k uint8, withCarry, store bool) {
	c := carryIn(&a.regFile.SREG, withCarry)
	result := a.sub(a.regFile.ReadReg(rd), k, c)
	if store {
		a.regFile.WriteReg(rd, result)
	}
}

// AND performs Rd = Rd & K.
func (a *ALU) AND(rd, k uint8) {
	a.regFile.WriteReg(rd, a.logic(a.regFile.ReadReg(rd)&k))
}

// OR performs Rd = Rd | K.
func (a *ALU) OR(rd, k uint8) {
	a.regFile.WriteReg(rd, a.logic(a.regFile.ReadReg(rd)|k))
}

// EOR performs Rd = Rd ^ K.
func (a *ALU) EOR(rd, k uint8) {
	a.regFile.WriteReg(rd, a.logic(a.regFile.ReadReg(rd)^k))
}

// MOV copies Rr into Rd. LDI uses it with an immediate.
func (a *ALU) MOV(rd, value uint8) {
	a.regFile.WriteReg(rd, value)
}

// COM performs Rd = 0xFF - Rd. C is always set.
func (a *ALU) COM(rd uint8) {
	a.regFile.WriteReg(rd, a.logic(^a.regFile.ReadReg(rd)))
	a.regFile.SREG.C = true
}

// NEG performs Rd = 0x00 - Rd.
func (a *ALU) NEG(rd uint8) {
	a.regFile.WriteReg(rd, a.sub(0, a.regFile.ReadReg(rd), 0))
}

// SWAP exchanges the nibbles of Rd. No flags are affected.
func (a *ALU) SWAP(rd uint8) {
	v := a.regFile.ReadReg(rd)
	a.regFile.WriteReg(rd, v<<4|v>>4)
}

// INC performs Rd = Rd + 1. C and H are not affected.
func (a *ALU) INC(rd uint8) {
	result := a.regFile.ReadReg(rd) + 1
	a.regFile.WriteReg(rd, result)

	f := &a.regFile.SREG
	f.V = result == 0x80
	f.N = bit(result, 7)
	f.S = f.N != f.V
	f.Z = result == 0
}

// DEC performs Rd = Rd - 1. C and H are not affected.
func (a *ALU) DEC(rd uint8) {
	result := a.regFile.ReadReg(rd) - 1
	a.regFile.WriteReg(rd, result)

	f := &a.regFile.SREG
	f.V = result == 0x7F
	f.N = bit(result, 7)
	f.S = f.N != f.V
	f.Z = result == 0
}

// shifted sets the flags of the right shifts: C takes the bit shifted out
// and V = N xor C.
func (a *ALU) shifted(result uint8, out bool) uint8 {
	f := &a.regFile.SREG
	f.C = out
	f.N = bit(result, 7)
	f.V = f.N != f.C
	f.S = f.N != f.V
	f.Z = result == 0
	return result
}

// ASR shifts Rd right one bit, keeping bit 7.
func (a *ALU) ASR(rd uint8) {
	v := a.regFile.ReadReg(rd)
	a.regFile.WriteReg(rd, a.shifted(v>>1|v&0x80, bit(v, 0)))
}

// LSR shifts Rd right one bit, shifting in zero.
func (a *ALU) LSR(rd uint8) {
	v := a.regFile.ReadReg(rd)
	a.regFile.WriteReg(rd, a.shifted(v>>1, bit(v, 0)))
}

// ROR rotates Rd right one bit through carry.
func (a *ALU) ROR(rd uint8) {
	v := a.regFile.ReadReg(rd)
	result := v >> 1
	if a.regFile.SREG.C {
		result |= 0x80
	}
	a.regFile.WriteReg(rd, a.shifted(result, bit(v, 0)))
}

// ADIW adds K (0-63) to the register pair starting at rd.
func (a *ALU) ADIW(rd, k uint8) {
	v := a.regFile.ReadPair(rd)
	result := v + uint16(k)
	a.regFile.WritePair(rd, result)

	hiIn := bit(uint8(v>>8), 7)
	hiOut := bit(uint8(result>>8), 7)

	f := &a.regFile.SREG
	f.C = !hiOut && hiIn
	f.V = hiOut && !hiIn
	f.N = hiOut
	f.S = f.N != f.V
	f.Z = result == 0
}

// SBIW subtracts K (0-63) from the register pair starting at rd.
func (a *ALU) SBIW(rd, k uint8) {
	v := a.regFile.ReadPair(rd)
	result := v - uint16(k)
	a.regFile.WritePair(rd, result)

	hiIn := bit(uint8(v>>8), 7)
	hiOut := bit(uint8(result>>8), 7)

	f := &a.regFile.SREG
	f.C = hiOut && !hiIn
	f.V = !hiOut && hiIn
	f.N = hiOut
	f.S = f.N != f.V
	f.Z = result == 0
}

// product stores a 16-bit multiply result in r1:r0. C is bit 15 of the
// unshifted product; the fractional forms shift the product left by one.
func (a *ALU) product(p uint16, fractional bool) {
	f := &a.regFile.SREG
	f.C = p&0x8000 != 0
	if fractional {
		p <<= 1
	}
	f.Z = p == 0
	a.regFile.WritePair(0, p)
}

// MUL performs r1:r0 = Rd * Rr, unsigned.
func (a *ALU) MUL(rd, rr uint8) {
	a.product(uint16(a.regFile.ReadReg(rd))*uint16(a.regFile.ReadReg(rr)), false)
}

// MULS performs r1:r0 = Rd * Rr, signed.
func (a *ALU) MULS(rd, rr uint8, fractional bool) {
	p := int16(int8(a.regFile.ReadReg(rd))) * int16(int8(a.regFile.ReadReg(rr)))
	a.product(uint16(p), fractional)
}

// MULSU performs r1:r0 = Rd * Rr, Rd signed and Rr unsigned.
func (a *ALU) MULSU(rd, rr uint8, fractional bool) {
	p := int16(int8(a.regFile.ReadReg(rd))) * int16(a.regFile.ReadReg(rr))
	a.product(uint16(p), fractional)
}

// FMUL performs r1:r0 = (Rd * Rr) << 1, unsigned.
func (a *ALU) FMUL(rd, rr uint8) {
	a.product(uint16(a.regFile.ReadReg(rd))*uint16(a.regFile.ReadReg(rr)), true)
}

// MOVW copies the register pair starting at rr into the pair at rd.
func (a *ALU) MOVW(rd, rr uint8) {
	a.regFile.WritePair(rd, a.regFile.ReadPair(rr))
}

// BST stores bit b of Rd in T.
func (a *ALU) BST(rd, b uint8) {
	a.regFile.SREG.T = bit(a.regFile.ReadReg(rd), uint(b&7))
}

// BLD loads T into bit b of Rd.
func (a *ALU) BLD(rd, b uint8) {
	v := a.regFile.ReadReg(rd) &^ (1 << (b & 7))
	if a.regFile.SREG.T {
		v |= 1 << (b & 7)
	}
	a.regFile.WriteReg(rd, v)
}
