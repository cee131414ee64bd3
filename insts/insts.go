// Package insts provides AVR instruction definitions and decoding.
//
// This package decodes 16-bit AVR instruction words into a closed set of
// instruction values, one type per encoding family. It supports:
//   - Register-register arithmetic and logic: ADD, ADC, SUB, SBC, CP, CPC, CPSE, AND, OR, EOR, MOV
//   - Register-immediate operations: CPI, SBCI, SUBI, ORI, ANDI, LDI, ADIW, SBIW
//   - Multiply: MUL, MULS, MULSU, FMUL, FMULS, FMULSU and MOVW
//   - Data transfer: LD/ST/LDD/STD via X, Y and Z, LDS/STS, LPM/ELPM, PUSH/POP, IN/OUT
//   - Control flow: RJMP, RCALL, JMP, CALL, IJMP, ICALL, RET, RETI, BRxx, skips
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x0C01) // add r0, r17
//	fmt.Println(inst)
package insts

import "fmt"

// Op represents an AVR operation within an instruction family.
type Op uint8

// AVR operations.
const (
	OpUnknown Op = iota

	// Register-register
	OpADD
	OpADC
	OpSUB
	OpSBC
	OpCP
	OpCPC
	OpCPSE
	OpAND
	OpOR
	OpEOR
	OpMOV

	// Multiply and word move
	OpMUL
	OpMULS
	OpMULSU
	OpFMUL
	OpFMULS
	OpFMULSU
	OpMOVW

	// Register-immediate
	OpCPI
	OpSBCI
	OpSUBI
	OpORI
	OpANDI
	OpLDI

	// Word-immediate
	OpADIW
	OpSBIW

	// One register
	OpCOM
	OpNEG
	OpSWAP
	OpINC
	OpDEC
	OpASR
	OpLSR
	OpROR

	// I/O bit
	OpCBI
	OpSBI
	OpSBIC
	OpSBIS

	// Register bit
	OpBLD
	OpBST
	OpSBRC
	OpSBRS

	// Z-indirect read-modify-write
	OpXCH
	OpLAS
	OpLAC
	OpLAT

	// Control
	OpSLEEP
	OpBREAK
	OpWDR
	OpSPM
	OpSPMZ
	OpDES
)

var opNames = [...]string{
	OpUnknown: "unknown",
	OpADD:     "add",
	OpADC:     "adc",
	OpSUB:     "sub",
	OpSBC:     "sbc",
	OpCP:      "cp",
	OpCPC:     "cpc",
	OpCPSE:    "cpse",
	OpAND:     "and",
	OpOR:      "or",
	OpEOR:     "eor",
	OpMOV:     "mov",
	OpMUL:     "mul",
	OpMULS:    "muls",
	OpMULSU:   "mulsu",
	OpFMUL:    "fmul",
	OpFMULS:   "fmuls",
	OpFMULSU:  "fmulsu",
	OpMOVW:    "movw",
	OpCPI:     "cpi",
	OpSBCI:    "sbci",
	OpSUBI:    "subi",
	OpORI:     "ori",
	OpANDI:    "andi",
	OpLDI:     "ldi",
	OpADIW:    "adiw",
	OpSBIW:    "sbiw",
	OpCOM:     "com",
	OpNEG:     "neg",
	OpSWAP:    "swap",
	OpINC:     "inc",
	OpDEC:     "dec",
	OpASR:     "asr",
	OpLSR:     "lsr",
	OpROR:     "ror",
	OpCBI:     "cbi",
	OpSBI:     "sbi",
	OpSBIC:    "sbic",
	OpSBIS:    "sbis",
	OpBLD:     "bld",
	OpBST:     "bst",
	OpSBRC:    "sbrc",
	OpSBRS:    "sbrs",
	OpXCH:     "xch",
	OpLAS:     "las",
	OpLAC:     "lac",
	OpLAT:     "lat",
	OpSLEEP:   "sleep",
	OpBREAK:   "break",
	OpWDR:     "wdr",
	OpSPM:     "spm",
	OpSPMZ:    "spm",
	OpDES:     "des",
}

// String returns the assembler mnemonic of the operation.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Format represents an instruction encoding family.
type Format uint8

// Instruction formats.
const (
	FormatUnknown               Format = iota
	FormatNop                          // NOP
	FormatTwoReg                       // Rd, Rr arithmetic/logic/compare
	FormatMultiply                     // MUL family and MOVW
	FormatRegConst                     // Rd (r16-r31), K8
	FormatWordImm                      // ADIW/SBIW on r24-r31 pairs
	FormatOneReg                       // COM, NEG, SWAP, INC, DEC, shifts
	FormatTransferIndirect             // LD/ST/LDD/STD via Y or Z (+q) and X
	FormatTransferChangePointer        // LD/ST with post-increment or pre-decrement
	FormatTransferDirect               // LDS/STS (two words)
	FormatProgramLoad                  // LPM/ELPM
	FormatAtomic                       // XCH/LAS/LAC/LAT
	FormatPushPop                      // PUSH/POP
	FormatInOut                        // IN/OUT
	FormatIOBit                        // CBI/SBI/SBIC/SBIS
	FormatRegBit                       // BLD/BST/SBRC/SBRS
	FormatStatusBit                    // BSET/BCLR
	FormatBranch                       // BRBS/BRBC
	FormatRelativeJump                 // RJMP/RCALL
	FormatAbsoluteJump                 // JMP/CALL (two words)
	FormatIndirectJump                 // IJMP/ICALL/EIJMP/EICALL
	FormatReturn                       // RET/RETI
	FormatControl                      // SLEEP, BREAK, WDR, SPM, DES
)

// StatusFlag is a bit index into the status register.
type StatusFlag uint8

// Status register bits, in the order selected by the 3-bit field of
// branch and BSET/BCLR encodings.
const (
	FlagC StatusFlag = iota // Carry
	FlagZ                   // Zero
	FlagN                   // Negative
	FlagV                   // Two's complement overflow
	FlagS                   // Sign, N xor V
	FlagH                   // Half carry
	FlagT                   // Transfer bit
	FlagI                   // Global interrupt enable
)

// Pointer names one of the 16-bit pointer register pairs.
type Pointer uint8

// Pointer registers and the index of their low byte.
const (
	PointerX Pointer = 26
	PointerY Pointer = 28
	PointerZ Pointer = 30
)

// String returns the assembler name of the pointer register.
func (p Pointer) String() string {
	switch p {
	case PointerX:
		return "X"
	case PointerY:
		return "Y"
	case PointerZ:
		return "Z"
	}
	return fmt.Sprintf("Pointer(%d)", uint8(p))
}

// Instruction is a decoded AVR instruction. The set of implementations is
// closed: every value returned by the decoder is one of the types below.
type Instruction interface {
	fmt.Stringer

	// Format returns the encoding family of the instruction.
	Format() Format

	isInstruction()
}

// Nop is the no-operation instruction.
type Nop struct{}

// TwoReg is a register-register operation: Rd = Rd op Rr.
type TwoReg struct {
	Op Op
	Rd uint8
	Rr uint8
}

// Multiply is a member of the multiply family or MOVW. Results of the
// multiplies land in r1:r0.
type Multiply struct {
	Op Op
	Rd uint8
	Rr uint8
}

// RegConst is a register-immediate operation on r16-r31.
type RegConst struct {
	Op Op
	Rd uint8 // Register number, already biased into 16-31
	K  uint8
}

// WordImm adds or subtracts a 6-bit constant to a register pair.
type WordImm struct {
	Op Op
	Rd uint8 // Low register of the pair: 24, 26, 28 or 30
	K  uint8
}

// OneReg is a single-register operation.
type OneReg struct {
	Op Op
	Rd uint8
}

// TransferIndirect moves a byte between a register and the data memory
// address held in a pointer register plus a displacement.
type TransferIndirect struct {
	Load         bool
	Pointer      Pointer
	Reg          uint8
	Displacement uint8
}

// TransferChangePointer is LD/ST through a pointer register that is
// post-incremented or pre-decremented.
type TransferChangePointer struct {
	Load          bool
	Pointer       Pointer
	Reg           uint8
	PostIncrement bool
}

// TransferDirect is LDS/STS. Address holds the second instruction word; the
// single-word decoder leaves it zero.
type TransferDirect struct {
	Load    bool
	Reg     uint8
	Address uint16
}

// ProgramLoad reads a byte of program memory addressed by Z.
type ProgramLoad struct {
	Extended      bool
	Implicit      bool // LPM/ELPM without operands: r0 <- (Z)
	Reg           uint8
	PostIncrement bool
}

// Atomic is a Z-indirect read-modify-write on data memory.
type Atomic struct {
	Op  Op
	Reg uint8
}

// PushPop moves a register to or from the stack.
type PushPop struct {
	Pop bool
	Reg uint8
}

// InOut moves a register to or from the I/O space.
type InOut struct {
	In      bool
	Reg     uint8
	Address uint8 // I/O address, 0-63
}

// IOBit manipulates or tests a bit in the lower 32 I/O registers.
type IOBit struct {
	Op      Op
	Address uint8
	Bit     uint8
}

// RegBit moves or tests a single register bit.
type RegBit struct {
	Op  Op
	Reg uint8
	Bit uint8
}

// StatusBit sets or clears one flag of the status register.
type StatusBit struct {
	Set  bool
	Flag StatusFlag
}

// Branch is a conditional relative branch on one status flag.
type Branch struct {
	Flag    StatusFlag
	TestSet bool // branch when the flag is set
	Offset  int8 // signed word offset, -64..63
}

// RelativeJump is RJMP or RCALL.
type RelativeJump struct {
	Call   bool
	Offset int16 // signed word offset, -2048..2047
}

// AbsoluteJump is JMP or CALL. The 22-bit word address is split between
// the two instruction words; Target holds the full word address once the
// second word is known.
type AbsoluteJump struct {
	Call   bool
	Target uint32
}

// IndirectJump jumps or calls through Z.
type IndirectJump struct {
	Call     bool
	Extended bool
}

// Return is RET or RETI.
type Return struct {
	Interrupt bool
}

// Control is a zero-operand system instruction that has no effect on the
// simulated core.
type Control struct {
	Op Op
	K  uint8 // DES round number
}

// Unsupported marks a bit pattern that does not decode to any instruction.
type Unsupported struct {
	Word uint16
}

func (Nop) Format() Format                   { return FormatNop }
func (TwoReg) Format() Format                { return FormatTwoReg }
func (Multiply) Format() Format              { return FormatMultiply }
func (RegConst) Format() Format              { return FormatRegConst }
func (WordImm) Format() Format               { return FormatWordImm }
func (OneReg) Format() Format                { return FormatOneReg }
func (TransferIndirect) Format() Format      { return FormatTransferIndirect }
func (TransferChangePointer) Format() Format { return FormatTransferChangePointer }
func (TransferDirect) Format() Format        { return FormatTransferDirect }
func (ProgramLoad) Format() Format           { return FormatProgramLoad }
func (Atomic) Format() Format                { return FormatAtomic }
func (PushPop) Format() Format               { return FormatPushPop }
func (InOut) Format() Format                 { return FormatInOut }
func (IOBit) Format() Format                 { return FormatIOBit }
func (RegBit) Format() Format                { return FormatRegBit }
func (StatusBit) Format() Format             { return FormatStatusBit }
func (Branch) Format() Format                { return FormatBranch }
func (RelativeJump) Format() Format          { return FormatRelativeJump }
func (AbsoluteJump) Format() Format          { return FormatAbsoluteJump }
func (IndirectJump) Format() Format          { return FormatIndirectJump }
func (Return) Format() Format                { return FormatReturn }
func (Control) Format() Format               { return FormatControl }
func (Unsupported) Format() Format           { return FormatUnknown }

func (Nop) isInstruction()                   {}
func (TwoReg) isInstruction()                {}
func (Multiply) isInstruction()              {}
func (RegConst) isInstruction()              {}
func (WordImm) isInstruction()               {}
func (OneReg) isInstruction()                {}
func (TransferIndirect) isInstruction()      {}
func (TransferChangePointer) isInstruction() {}
func (TransferDirect) isInstruction()        {}
func (ProgramLoad) isInstruction()           {}
func (Atomic) isInstruction()                {}
func (PushPop) isInstruction()               {}
func (InOut) isInstruction()                 {}
func (IOBit) isInstruction()                 {}
func (RegBit) isInstruction()                {}
func (StatusBit) isInstruction()             {}
func (Branch) isInstruction()                {}
func (RelativeJump) isInstruction()          {}
func (AbsoluteJump) isInstruction()          {}
func (IndirectJump) isInstruction()          {}
func (Return) isInstruction()                {}
func (Control) isInstruction()               {}
func (Unsupported) isInstruction()           {}
