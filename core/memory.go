package core

// Memory is the contract the core consumes from its host:
// byte-granularity read and write, plus the software-interrupt trap. The
// core never interprets "unmapped" or "read-only" itself — a host that
// wants to surface a memory fault does so by setting Terminated from
// inside SoftwareInterrupt, or simply by returning a sentinel byte.
//
// Encapsulating these three callbacks as a single interface (rather than
// three separate function values) keeps the core generic over hosts and
// trivially mockable in tests, per the design notes.
type Memory interface {
	ReadByte(addr uint32) byte
	WriteByte(addr uint32, value byte)
	SoftwareInterrupt(m *Machine, number uint8)
}

// readHalfword composes a 16-bit little-endian load from two ReadByte
// calls, low address first.
func readHalfword(mem Memory, addr uint32) uint16 {
	lo := mem.ReadByte(addr)
	hi := mem.ReadByte(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// readWord composes a 32-bit little-endian load from ReadByte, low byte
// first through high byte.
func readWord(mem Memory, addr uint32) uint32 {
	b0 := mem.ReadByte(addr)
	b1 := mem.ReadByte(addr + 1)
	b2 := mem.ReadByte(addr + 2)
	b3 := mem.ReadByte(addr + 3)
	return uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
}

// writeHalfword decomposes a 16-bit value into two little-endian
// WriteByte calls.
func writeHalfword(mem Memory, addr uint32, value uint16) {
	mem.WriteByte(addr, byte(value))
	mem.WriteByte(addr+1, byte(value>>8))
}

// writeWord decomposes a 32-bit value into four little-endian WriteByte
// calls.
func writeWord(mem Memory, addr uint32, value uint32) {
	mem.WriteByte(addr, byte(value))
	mem.WriteByte(addr+1, byte(value>>8))
	mem.WriteByte(addr+2, byte(value>>16))
	mem.WriteByte(addr+3, byte(value>>24))
}

// pcOperand returns the PC value as Thumb instructions see it when used
// as an addressing-mode operand. The fetch loop has already advanced
// R[PC] by 2 (past the current instruction); categories 6, 12, 16 and 18
// add a further 2 to reach "PC as an operand", reproducing the real
// machine's pipeline-ahead convention without modelling a pipeline.
func pcOperand(m *Machine) uint32 {
	return m.R[PC] + 2
}

// FetchHalfword reads the instruction half-word at addr, little-endian.
// Exported so tooling (tracers, disassemblers, the loader's literal-pool
// placement) can read code memory the same way the fetch loop does.
func FetchHalfword(mem Memory, addr uint32) uint16 {
	return readHalfword(mem, addr)
}
