// Package loader ties parser, encoder and hostmem together: it assembles a
// parser.Program, lays out the data directives, resolves the Category 6
// literal pool, and writes the resulting half-words and bytes into a
// hostmem.Memory.
//
// hostmem.Memory exposes only byte-granular ReadByte/WriteByte plus the
// WriteWord/WriteHalfword helpers composed from them (unmapped/read-only
// writes are simply dropped rather than erroring), and
// encoder.EncodeInstruction returns a slice of one or two 16-bit
// half-words instead of a single
// 32-bit word, so the instruction-write loop iterates over that slice.
package loader

import (
	"fmt"
	"os"

	"github.com/tinylab/thumb16vm/encoder"
	"github.com/tinylab/thumb16vm/hostmem"
	"github.com/tinylab/thumb16vm/parser"
	"github.com/tinylab/thumb16vm/vm"
)

// LoadProgramIntoVM loads a parsed assembly program into the VM's memory.
// It creates necessary memory segments, processes data directives, encodes
// instructions, and sets up the entry point.
func LoadProgramIntoVM(machine *vm.VM, program *parser.Program, entryPoint uint32) error {
	// Ensure a memory segment exists for the entry point: programs using
	// .org 0x0000 or similar fall below the default code segment start.
	if entryPoint < hostmem.CodeSegmentStart {
		segmentSize := uint32(hostmem.CodeSegmentStart)
		machine.Memory.AddSegment("low-memory", 0, segmentSize, hostmem.PermRead|hostmem.PermWrite|hostmem.PermExecute)
	}

	enc := encoder.NewEncoder(program.SymbolTable)

	// Track the maximum address used, for literal pool placement.
	maxAddr := entryPoint

	addressMap := make(map[*parser.Instruction]uint32)
	for _, inst := range program.Instructions {
		addressMap[inst] = inst.Address
		instEnd := inst.Address + uint32(inst.EncodedLen)
		if instEnd > maxAddr {
			maxAddr = instEnd
		}
	}

	for _, directive := range program.Directives {
		dataAddr := directive.Address

		switch directive.Name {
		case ".org", ".align", ".balign":
			// Already folded into directive.Address/inst.Address by the parser.
			continue

		case ".word":
			for _, arg := range directive.Args {
				var value uint32
				if _, err := fmt.Sscanf(arg, "0x%x", &value); err != nil {
					if _, err := fmt.Sscanf(arg, "%d", &value); err != nil {
						symValue, symErr := program.SymbolTable.Get(arg)
						if symErr != nil {
							return fmt.Errorf("invalid .word value %q: %w", arg, symErr)
						}
						value = symValue
					}
				}
				machine.Memory.WriteWord(dataAddr, value)
				dataAddr += 4
			}
			if dataAddr > maxAddr {
				maxAddr = dataAddr
			}

		case ".byte":
			for _, arg := range directive.Args {
				var value uint32
				switch {
				case len(arg) >= 3 && arg[0] == '\'' && arg[len(arg)-1] == '\'':
					charContent := arg[1 : len(arg)-1]
					switch {
					case len(charContent) == 1:
						value = uint32(charContent[0])
					case len(charContent) >= 2 && charContent[0] == '\\':
						b, _, err := parser.ParseEscapeChar(charContent)
						if err != nil {
							return fmt.Errorf("invalid .byte escape sequence: %s", arg)
						}
						value = uint32(b)
					default:
						return fmt.Errorf("invalid .byte character literal: %s", arg)
					}
				default:
					if _, err := fmt.Sscanf(arg, "0x%x", &value); err != nil {
						if _, err := fmt.Sscanf(arg, "%d", &value); err != nil {
							return fmt.Errorf("invalid .byte value: %s", arg)
						}
					}
				}
				machine.Memory.WriteByte(dataAddr, byte(value))
				dataAddr++
			}
			if dataAddr > maxAddr {
				maxAddr = dataAddr
			}

		case ".ascii":
			if len(directive.Args) > 0 {
				str := directive.Args[0]
				if len(str) >= 2 && (str[0] == '"' || str[0] == '\'') {
					str = str[1 : len(str)-1]
				}
				processedStr := parser.ProcessEscapeSequences(str)
				for i := 0; i < len(processedStr); i++ {
					machine.Memory.WriteByte(dataAddr, processedStr[i])
					dataAddr++
				}
			}
			if dataAddr > maxAddr {
				maxAddr = dataAddr
			}

		case ".asciz", ".string":
			if len(directive.Args) > 0 {
				str := directive.Args[0]
				if len(str) >= 2 && (str[0] == '"' || str[0] == '\'') {
					str = str[1 : len(str)-1]
				}
				processedStr := parser.ProcessEscapeSequences(str)
				for i := 0; i < len(processedStr); i++ {
					machine.Memory.WriteByte(dataAddr, processedStr[i])
					dataAddr++
				}
				machine.Memory.WriteByte(dataAddr, 0)
				dataAddr++
			}
			if dataAddr > maxAddr {
				maxAddr = dataAddr
			}

		case ".space", ".skip":
			if len(directive.Args) > 0 {
				var size uint32
				if _, err := fmt.Sscanf(directive.Args[0], "0x%x", &size); err != nil {
					_, _ = fmt.Sscanf(directive.Args[0], "%d", &size)
				}
				endAddr := dataAddr + size
				if endAddr > maxAddr {
					maxAddr = endAddr
				}
			}

		case ".ltorg":
			// Space for this pool is reserved implicitly once the literals
			// that land here are written below; program.LiteralPoolLocs
			// already records where the parser placed it.
			continue
		}
	}

	// Fallback literal pool start, word-aligned, used for a literal when no
	// .ltorg pool lies within category 6's forward reach of its load.
	enc.LiteralPoolStart = (maxAddr + 3) &^ 3

	for _, inst := range program.Instructions {
		addr := addressMap[inst]

		halfwords, err := enc.EncodeInstruction(inst, addr)
		if err != nil {
			return fmt.Errorf("failed to encode instruction at 0x%08X (%s): %w", addr, inst.Mnemonic, err)
		}

		for i, hw := range halfwords {
			machine.Memory.WriteHalfword(addr+uint32(i*2), hw)
		}
	}

	// Literal pool entries are always full 32-bit values (LDR Rd,=value
	// loads a word), regardless of Thumb's 16-bit instruction width.
	for addr, value := range enc.LiteralPool {
		machine.Memory.WriteWord(addr, value)
	}

	enc.ValidatePoolCapacity()
	if enc.HasPoolWarnings() && os.Getenv("THUMB_WARN_POOLS") != "" {
		for _, warning := range enc.GetPoolWarnings() {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	machine.SetEntryPoint(entryPoint)

	return nil
}
