package insts

import "fmt"

var statusBitNames = [2][8]string{
	{"clc", "clz", "cln", "clv", "cls", "clh", "clt", "cli"},
	{"sec", "sez", "sen", "sev", "ses", "seh", "set", "sei"},
}

var branchNames = [2][8]string{
	{"brcc", "brne", "brpl", "brvc", "brge", "brhc", "brtc", "brid"},
	{"brcs", "breq", "brmi", "brvs", "brlt", "brhs", "brts", "brie"},
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

// relative renders a word offset as a signed byte displacement from the
// following instruction, e.g. ".+2" or ".-4".
func relative(words int) string {
	return fmt.Sprintf(".%+d", words*2)
}

func (Nop) String() string {
	return "nop"
}

func (i TwoReg) String() string {
	return fmt.Sprintf("%s\tr%d, r%d", i.Op, i.Rd, i.Rr)
}

func (i Multiply) String() string {
	return fmt.Sprintf("%s\tr%d, r%d", i.Op, i.Rd, i.Rr)
}

func (i RegConst) String() string {
	return fmt.Sprintf("%s\tr%d, 0x%02X", i.Op, i.Rd, i.K)
}

func (i WordImm) String() string {
	return fmt.Sprintf("%s\tr%d, 0x%02X", i.Op, i.Rd, i.K)
}

func (i OneReg) String() string {
	return fmt.Sprintf("%s\tr%d", i.Op, i.Rd)
}

func (i TransferIndirect) String() string {
	switch {
	case i.Displacement == 0 && i.Load:
		return fmt.Sprintf("ld\tr%d, %s", i.Reg, i.Pointer)
	case i.Displacement == 0:
		return fmt.Sprintf("st\t%s, r%d", i.Pointer, i.Reg)
	case i.Load:
		return fmt.Sprintf("ldd\tr%d, %s+%d", i.Reg, i.Pointer, i.Displacement)
	default:
		return fmt.Sprintf("std\t%s+%d, r%d", i.Pointer, i.Displacement, i.Reg)
	}
}

func (i TransferChangePointer) String() string {
	operand := "-" + i.Pointer.String()
	if i.PostIncrement {
		operand = i.Pointer.String() + "+"
	}

	if i.Load {
		return fmt.Sprintf("ld\tr%d, %s", i.Reg, operand)
	}
	return fmt.Sprintf("st\t%s, r%d", operand, i.Reg)
}

func (i TransferDirect) String() string {
	if i.Load {
		return fmt.Sprintf("lds\tr%d, 0x%04x", i.Reg, i.Address)
	}
	return fmt.Sprintf("sts\t0x%04x, r%d", i.Address, i.Reg)
}

func (i ProgramLoad) String() string {
	name := "lpm"
	if i.Extended {
		name = "elpm"
	}

	switch {
	case i.Implicit:
		return name
	case i.PostIncrement:
		return fmt.Sprintf("%s\tr%d, Z+", name, i.Reg)
	default:
		return fmt.Sprintf("%s\tr%d, Z", name, i.Reg)
	}
}

func (i Atomic) String() string {
	return fmt.Sprintf("%s\tZ, r%d", i.Op, i.Reg)
}

func (i PushPop) String() string {
	if i.Pop {
		return fmt.Sprintf("pop\tr%d", i.Reg)
	}
	return fmt.Sprintf("push\tr%d", i.Reg)
}

func (i InOut) String() string {
	if i.In {
		return fmt.Sprintf("in\tr%d, 0x%02x", i.Reg, i.Address)
	}
	return fmt.Sprintf("out\t0x%02x, r%d", i.Address, i.Reg)
}

func (i IOBit) String() string {
	return fmt.Sprintf("%s\t0x%02x, %d", i.Op, i.Address, i.Bit)
}

func (i RegBit) String() string {
	return fmt.Sprintf("%s\tr%d, %d", i.Op, i.Reg, i.Bit)
}

func (i StatusBit) String() string {
	return statusBitNames[boolIndex(i.Set)][i.Flag&0x7]
}

func (i Branch) String() string {
	return branchNames[boolIndex(i.TestSet)][i.Flag&0x7] + "\t" + relative(int(i.Offset))
}

func (i RelativeJump) String() string {
	name := "rjmp"
	if i.Call {
		name = "rcall"
	}
	return name + "\t" + relative(int(i.Offset))
}

func (i AbsoluteJump) String() string {
	name := "jmp"
	if i.Call {
		name = "call"
	}
	return fmt.Sprintf("%s\t0x%x", name, i.Target*2)
}

func (i IndirectJump) String() string {
	name := "ijmp"
	if i.Call {
		name = "icall"
	}
	if i.Extended {
		name = "e" + name
	}
	return name
}

func (i Return) String() string {
	if i.Interrupt {
		return "reti"
	}
	return "ret"
}

func (i Control) String() string {
	switch i.Op {
	case OpSPMZ:
		return "spm\tz+"
	case OpDES:
		return fmt.Sprintf("des\t%d", i.K)
	}
	return i.Op.String()
}

func (i Unsupported) String() string {
	return fmt.Sprintf(".word\t0x%02x", i.Word)
}
