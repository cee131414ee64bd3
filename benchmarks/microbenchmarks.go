package benchmarks

import (
	"github.com/sarchlab/avrsim/emu"
	"github.com/sarchlab/avrsim/insts"
)

// PortB is the data-space address of PORTB (I/O 0x18) on the supported
// devices.
const PortB = 0x38

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// ends in a halt loop except blink, which runs for a fixed step count.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		functionCalls(),
		countdownLoop(),
		multiplyAccumulate(),
		skipChain(),
		stackRoundTrip(),
		lookupTable(),
		Blink(),
	}
}

// GetCoreBenchmarks returns a small set for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countdownLoop(),
		functionCalls(),
		Blink(),
	}
}

func register(r uint8) func(m *emu.Mcu) uint8 {
	return func(m *emu.Mcu) uint8 { return m.Register(r) }
}

func repeat(n int, words ...uint16) []uint16 {
	out := make([]uint16, 0, n*len(words))
	for i := 0; i < n; i++ {
		out = append(out, words...)
	}
	return out
}

func concat(parts ...[]uint16) []uint16 {
	var out []uint16
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// 1. Arithmetic Sequential - independent increments across five registers
func arithmeticSequential() Benchmark {
	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 independent INC operations over r16-r20",
		Program: BuildProgram(concat(
			repeat(4,
				EncodeINC(16),
				EncodeINC(17),
				EncodeINC(18),
				EncodeINC(19),
				EncodeINC(20),
			),
			[]uint16{HaltWord},
		)...),
		Result:   register(20),
		Expected: 4,
	}
}

// 2. Dependency Chain - every instruction reads the previous result
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent SUBI r16, -1 operations",
		Program: BuildProgram(concat(
			repeat(20, EncodeSUBI(16, 0xFF)),
			[]uint16{HaltWord},
		)...),
		Result:   register(16),
		Expected: 20,
	}
}

// 3. Memory Sequential - fill ten bytes through X, then sum them back
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "10 ST X+ followed by 10 LD X+ with accumulation",
		Program: BuildProgram(concat(
			[]uint16{
				EncodeLDI(16, 42),
				EncodeLDI(26, 0x60),
				EncodeLDI(27, 0x00),
			},
			repeat(10, EncodeSTPostInc(insts.PointerX, 16)),
			[]uint16{
				EncodeLDI(26, 0x60),
				EncodeEOR(17, 17),
			},
			repeat(10,
				EncodeLDPostInc(18, insts.PointerX),
				EncodeADD(17, 18),
			),
			[]uint16{HaltWord},
		)...),
		Result:   register(17),
		Expected: 164, // 420 mod 256
	}
}

// 4. Function Calls - five RCALLs into a one-instruction subroutine
func functionCalls() Benchmark {
	const sub = 6 // word address of add_one

	words := make([]uint16, 0, 8)
	for i := 0; i < 5; i++ {
		words = append(words, EncodeRCALL(sub-(i+1)))
	}
	words = append(words,
		HaltWord,
		// add_one:
		EncodeINC(16),
		EncodeRET(),
	)

	return Benchmark{
		Name:        "function_calls",
		Description: "5 RCALL/RET pairs",
		Program:     BuildProgram(words...),
		Result:      register(16),
		Expected:    5,
	}
}

// 5. Countdown Loop - SBIW/BRNE over a 16-bit counter
func countdownLoop() Benchmark {
	return Benchmark{
		Name:        "countdown_loop",
		Description: "1000 iterations of INC, SBIW, BRNE",
		Program: BuildProgram(
			EncodeLDI(24, 0xE8), // r25:r24 = 1000
			EncodeLDI(25, 0x03),
			EncodeEOR(16, 16),
			// loop:
			EncodeINC(16),
			EncodeSBIW(24, 1),
			EncodeBRNE(-3),
			HaltWord,
		),
		Result:   register(16),
		Expected: 232, // 1000 mod 256
	}
}

// 6. Multiply Accumulate - sum of i*3 for i = 10..1
func multiplyAccumulate() Benchmark {
	return Benchmark{
		Name:        "multiply_accumulate",
		Description: "10 iterations of MUL, ADD, DEC, BRNE",
		Program: BuildProgram(
			EncodeLDI(16, 10),
			EncodeLDI(17, 3),
			EncodeEOR(20, 20),
			// loop:
			EncodeMUL(16, 17),
			EncodeADD(20, 0),
			EncodeDEC(16),
			EncodeBRNE(-4),
			HaltWord,
		),
		Result:   register(20),
		Expected: 165,
	}
}

// 7. Skip Chain - count odd values with SBRC
func skipChain() Benchmark {
	return Benchmark{
		Name:        "skip_chain",
		Description: "16 iterations alternating taken and not-taken SBRC",
		Program: BuildProgram(
			EncodeLDI(16, 16),
			EncodeEOR(17, 17),
			// loop:
			EncodeSBRC(16, 0),
			EncodeINC(17),
			EncodeDEC(16),
			EncodeBRNE(-4),
			HaltWord,
		),
		Result:   register(17),
		Expected: 8,
	}
}

// 8. Stack Round Trip - push 1..8, pop and sum
func stackRoundTrip() Benchmark {
	return Benchmark{
		Name:        "stack_round_trip",
		Description: "8 PUSH followed by 8 POP with accumulation",
		Setup: func(m *emu.Mcu) {
			m.SetStackPointer(uint16(len(m.DataMemory()) - 1))
		},
		Program: BuildProgram(concat(
			[]uint16{
				EncodeLDI(16, 1),
				EncodeEOR(18, 18),
			},
			repeat(8, EncodePUSH(16), EncodeINC(16)),
			repeat(8, EncodePOP(17), EncodeADD(18, 17)),
			[]uint16{HaltWord},
		)...),
		Result:   register(18),
		Expected: 36,
	}
}

// 9. Lookup Table - LPM Z+ over a table stored after the code
func lookupTable() Benchmark {
	return Benchmark{
		Name:        "lookup_table",
		Description: "4 LPM Z+ reads from flash with accumulation",
		Program: BuildProgram(
			EncodeLDI(30, 18), // Z = byte address of table
			EncodeLDI(31, 0),
			EncodeEOR(17, 17),
			EncodeLDI(16, 4),
			// loop:
			EncodeLPM(18, true),
			EncodeADD(17, 18),
			EncodeDEC(16),
			EncodeBRNE(-4),
			HaltWord,
			// table:
			0x0201,
			0x0403,
		),
		Result:   register(17),
		Expected: 10,
	}
}

// BlinkProgram toggles PORTB bit 0 with a busy-wait of 24999 SBIW/BRNE
// iterations between toggles, 50006 instructions per period.
func BlinkProgram() []byte {
	return BuildProgram(
		EncodeLDI(25, 0x01),
		// toggle:
		EncodeIN(24, 0x18),
		EncodeEOR(24, 25),
		EncodeOUT(0x18, 24),
		EncodeLDI(30, 0xA7), // Z = 0x61A7
		EncodeLDI(31, 0x61),
		// delay:
		EncodeSBIW(30, 1),
		EncodeBRNE(-2),
		EncodeRJMP(0),
		EncodeNOP(),
		EncodeRJMP(-10),
	)
}

// Blink runs BlinkProgram through two toggle periods. PORTB bit 0 is set
// after 4 instructions, cleared at 50010 and set again at 100016.
func Blink() Benchmark {
	return Benchmark{
		Name:        "blink",
		Description: "LED blink loop, two full toggle periods",
		Program:     BlinkProgram(),
		MaxSteps:    100016,
		Result: func(m *emu.Mcu) uint8 {
			return m.DataByte(PortB)
		},
		Expected: 1,
	}
}
