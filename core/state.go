package core

// CPSR is the condition register: four flag bits at fixed positions, all
// other bits reserved and read as zero.
type CPSR struct {
	N bool // Negative (bit 31)
	Z bool // Zero (bit 30)
	C bool // Carry (bit 29)
	V bool // Overflow (bit 28)
}

// Value packs the flags into the 32-bit condition word. Bits 0-27 are
// always zero, satisfying the "reserved, read as zero" invariant by
// construction.
func (c CPSR) Value() uint32 {
	var v uint32
	if c.N {
		v |= 1 << FlagBitN
	}
	if c.Z {
		v |= 1 << FlagBitZ
	}
	if c.C {
		v |= 1 << FlagBitC
	}
	if c.V {
		v |= 1 << FlagBitV
	}
	return v
}

// SetValue loads the flags from a 32-bit condition word. Bits 0-27 are
// ignored, never stored.
func (c *CPSR) SetValue(v uint32) {
	c.N = v&(1<<FlagBitN) != 0
	c.Z = v&(1<<FlagBitZ) != 0
	c.C = v&(1<<FlagBitC) != 0
	c.V = v&(1<<FlagBitV) != 0
}

// Machine is the complete architectural state: the 16-slot register bank,
// the condition word, and the termination flag. Memory and the
// software-interrupt trap are supplied by the host through Memory.
type Machine struct {
	R    [RegisterCount]uint32
	CPSR CPSR

	// Terminated becomes true on an unrecognized encoding or when the host
	// sets it from the software-interrupt callback. Step() halts once set;
	// the host may clear it externally between Step calls.
	Terminated bool

	Mem Memory

	// Cycles counts completed instructions, for hosts that want a cheap
	// execution budget or statistics without attaching a full Statistics
	// collector.
	Cycles uint64

	// Optional diagnostic hooks. Nil by default; attaching one costs a
	// pointer check per instruction, nothing more.
	Trace         *ExecutionTrace
	FlagTrace     *FlagTrace
	RegisterTrace *RegisterTrace
	Coverage      *CodeCoverage
	Stats         *Statistics
}

// NewMachine constructs a machine with the given initial stack pointer and
// program counter. All other registers and the condition word start at
// zero.
func NewMachine(mem Memory, initialSP, initialPC uint32) *Machine {
	m := &Machine{Mem: mem}
	m.R[SP] = initialSP
	m.R[PC] = initialPC
	return m
}

// GetRegister returns the raw value of register reg (0-15). No pipeline
// compensation is applied here; the handful of Thumb encodings that need
// PC+2 (categories 6, 12, 16 and 18, via pcOperand) add it
// explicitly at the point of use, since it is not a property of reading
// the register in general.
func (m *Machine) GetRegister(reg int) uint32 {
	return m.R[reg]
}

// SetRegister writes reg (0-15).
func (m *Machine) SetRegister(reg int, value uint32) {
	m.R[reg] = value
}
