// Package emu provides functional AVR emulation.
package emu

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/sarchlab/avrsim/cache"
	"github.com/sarchlab/avrsim/insts"
	"github.com/sarchlab/avrsim/variant"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// PC is the address the instruction was fetched from.
	PC uint16

	// Inst is the decoded instruction. Nil if nothing was fetched.
	Inst insts.Instruction

	// Err is set if the instruction could not be executed. The PC is left
	// on the failing instruction.
	Err error
}

// Mcu executes AVR instructions functionally. It owns one register file
// and one pair of memory banks; instances share no state.
type Mcu struct {
	variant variant.Variant

	regFile     *RegFile
	memory      *Memory
	decoder     *insts.Decoder
	decodeCache *cache.DecodeCache

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	logger logr.Logger
	strict bool

	cacheConfig *cache.Config
	initialSP   uint16

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// Option is a functional option for configuring the Mcu.
type Option func(*Mcu)

// WithLogger sets the logger used for diagnostics. Unimplemented
// instructions are logged at V(0), every executed instruction at V(2).
func WithLogger(logger logr.Logger) Option {
	return func(m *Mcu) {
		m.logger = logger
	}
}

// WithStrict makes instructions without an effect on the core fail the
// step instead of being logged and skipped.
func WithStrict(strict bool) Option {
	return func(m *Mcu) {
		m.strict = strict
	}
}

// WithDecodeCache enables the predecoded-instruction cache.
func WithDecodeCache(config cache.Config) Option {
	return func(m *Mcu) {
		m.cacheConfig = &config
	}
}

// WithStackPointer sets the initial stack pointer value. The default of 0
// places the first pushed byte at the top of data memory.
func WithStackPointer(sp uint16) Option {
	return func(m *Mcu) {
		m.initialSP = sp
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) Option {
	return func(m *Mcu) {
		m.maxInstructions = max
	}
}

// NewMcu creates an Mcu sized for v. It fails with ErrNotPowerOfTwo if a
// memory size is not a power of two.
func NewMcu(v variant.Variant, opts ...Option) (*Mcu, error) {
	memory, err := NewMemory(v.DataSize, v.ProgramSize)
	if err != nil {
		return nil, errors.Wrapf(err, "variant %s", v.Name)
	}

	m := &Mcu{
		variant: v,
		regFile: &RegFile{},
		memory:  memory,
		decoder: insts.NewDecoder(),
		logger:  logr.Discard(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.regFile.SP = memory.maskData(m.initialSP)

	// Create execution units
	m.alu = NewALU(m.regFile)
	m.lsu = NewLoadStoreUnit(m.regFile, memory)
	m.branchUnit = NewBranchUnit(m.regFile, memory)

	if m.cacheConfig != nil {
		m.decodeCache, err = cache.New(*m.cacheConfig, m.decoder, memory)
		if err != nil {
			return nil, err
		}
	}

	m.logger.V(1).Info("mcu created",
		"variant", v.Name,
		"data_size", v.DataSize,
		"program_size", v.ProgramSize,
		"decode_cache", m.decodeCache != nil)

	return m, nil
}

// NewMcuByName creates an Mcu for a built-in variant.
func NewMcuByName(name string, opts ...Option) (*Mcu, error) {
	v, err := variant.Lookup(name)
	if err != nil {
		return nil, err
	}
	return NewMcu(v, opts...)
}

// Variant returns the part the Mcu was built for.
func (m *Mcu) Variant() variant.Variant {
	return m.variant
}

// RegFile returns the Mcu's register file.
func (m *Mcu) RegFile() *RegFile {
	return m.regFile
}

// Memory returns the Mcu's memory banks. Programs must be loaded through
// Mcu.LoadProgram: loading through Memory.LoadProgram bypasses the decode
// cache, which keeps serving the old instructions until DecodeCache is
// invalidated.
func (m *Mcu) Memory() *Memory {
	return m.memory
}

// DecodeCache returns the decode cache, or nil when it is disabled.
func (m *Mcu) DecodeCache() *cache.DecodeCache {
	return m.decodeCache
}

// InstructionCount returns the number of instructions executed.
func (m *Mcu) InstructionCount() uint64 {
	return m.instructionCount
}

// LoadProgram copies image into program memory from address 0, dropping
// whatever does not fit, and returns the number of bytes copied.
func (m *Mcu) LoadProgram(image []byte) int {
	n := m.memory.LoadProgram(image)
	if m.decodeCache != nil {
		m.decodeCache.Invalidate()
	}
	if n < len(image) {
		m.logger.V(1).Info("program image truncated", "size", len(image), "loaded", n)
	}
	return n
}

// LoadData copies image into data memory from address 0, dropping whatever
// does not fit, and returns the number of bytes copied.
func (m *Mcu) LoadData(image []byte) int {
	return m.memory.LoadData(image)
}

// ProgramMemory returns a copy of program memory.
func (m *Mcu) ProgramMemory() []byte {
	return m.memory.Program()
}

// DataMemory returns a copy of data memory.
func (m *Mcu) DataMemory() []byte {
	return m.memory.Data()
}

// DataByte reads one byte of data memory.
func (m *Mcu) DataByte(addr uint16) uint8 {
	return m.memory.Read8(addr)
}

// SetDataByte writes one byte of data memory.
func (m *Mcu) SetDataByte(addr uint16, value uint8) {
	m.memory.Write8(addr, value)
}

// Register returns general-purpose register r.
func (m *Mcu) Register(r uint8) uint8 {
	return m.regFile.ReadReg(r)
}

// SetRegister writes general-purpose register r.
func (m *Mcu) SetRegister(r, value uint8) {
	m.regFile.WriteReg(r, value)
}

// Registers returns all 32 general-purpose registers.
func (m *Mcu) Registers() [32]uint8 {
	return m.regFile.R
}

// SetRegisters replaces all 32 general-purpose registers.
func (m *Mcu) SetRegisters(regs [32]uint8) {
	m.regFile.R = regs
}

// PC returns the program counter.
func (m *Mcu) PC() uint16 {
	return m.regFile.PC
}

// SetPC sets the program counter, masked to an even program address.
func (m *Mcu) SetPC(pc uint16) {
	m.regFile.PC = m.memory.maskProgram(pc) &^ 1
}

// SP returns the stack pointer.
func (m *Mcu) SP() uint16 {
	return m.regFile.SP
}

// SetStackPointer sets the stack pointer, masked to data memory.
func (m *Mcu) SetStackPointer(sp uint16) {
	m.regFile.SP = m.memory.maskData(sp)
}

// Flags returns the status register.
func (m *Mcu) Flags() Flags {
	return m.regFile.SREG
}

// SetFlags replaces the status register.
func (m *Mcu) SetFlags(f Flags) {
	m.regFile.SREG = f
}

// Reset clears registers, flags and counters and restores the initial PC
// and SP. Memory is kept.
func (m *Mcu) Reset() {
	*m.regFile = RegFile{SP: m.memory.maskData(m.initialSP)}
	m.instructionCount = 0
	if m.decodeCache != nil {
		m.decodeCache.Reset()
	}
}

// CurrentWord returns the instruction word at the PC.
func (m *Mcu) CurrentWord() uint16 {
	return m.memory.Fetch16(m.regFile.PC)
}

// CurrentMnemonic renders the instruction at the PC.
func (m *Mcu) CurrentMnemonic() string {
	pc := m.regFile.PC
	return m.decoder.DecodePair(m.memory.Fetch16(pc), m.memory.Fetch16(pc+InstructionWidth)).String()
}

func (m *Mcu) decode(pc, word uint16) insts.Instruction {
	if m.decodeCache != nil {
		return m.decodeCache.Lookup(pc)
	}
	return m.decoder.Decode(word)
}

// Step executes a single instruction: fetch, decode, execute, then advance
// the PC by one instruction word.
func (m *Mcu) Step() StepResult {
	pc := m.regFile.PC

	// Check instruction limit before executing
	if m.maxInstructions > 0 && m.instructionCount >= m.maxInstructions {
		return StepResult{PC: pc, Err: ErrMaxInstructions}
	}

	word := m.memory.Fetch16(pc)
	inst := m.decode(pc, word)

	if trace := m.logger.V(2); trace.Enabled() {
		trace.Info("step",
			"count", m.instructionCount,
			"pc", fmt.Sprintf("0x%04x", pc),
			"word", fmt.Sprintf("0x%04x", word),
			"inst", inst.String())
	}

	if err := m.execute(pc, word, inst); err != nil {
		if m.strict {
			m.regFile.PC = pc
			return StepResult{PC: pc, Inst: inst, Err: err}
		}
		m.logger.Info("unimplemented instruction",
			"pc", fmt.Sprintf("0x%04x", pc),
			"word", fmt.Sprintf("0x%04x", word),
			"inst", inst.String())
	}

	m.regFile.PC = m.memory.maskProgram(m.regFile.PC + InstructionWidth)
	m.instructionCount++

	return StepResult{PC: pc, Inst: inst}
}

// StepN executes n instructions and returns the last result. It stops
// early, returning the failing step, only when a step errors: that happens
// with WithStrict on an unimplemented instruction or once the
// WithMaxInstructions limit is reached. Otherwise all n steps run.
func (m *Mcu) StepN(n int) StepResult {
	var result StepResult
	for i := 0; i < n; i++ {
		result = m.Step()
		if result.Err != nil {
			return result
		}
	}
	return result
}

// Run executes instructions until the instruction limit is reached or a
// step fails. Reaching the limit returns nil. Without a limit and without
// strict mode Run does not return.
func (m *Mcu) Run() error {
	for {
		result := m.Step()
		if result.Err == nil {
			continue
		}
		if errors.Is(result.Err, ErrMaxInstructions) {
			return nil
		}
		return result.Err
	}
}
