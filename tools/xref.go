package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tinylab/thumb16vm/parser"
)

// ReferenceType classifies how one source line touches a symbol.
type ReferenceType int

const (
	RefDefinition ReferenceType = iota
	RefBranch
	RefLoad
	RefStore
	RefData
	RefCall // BL target
)

var refTypeNames = map[ReferenceType]string{
	RefDefinition: "definition",
	RefBranch:     "branch",
	RefLoad:       "load",
	RefStore:      "store",
	RefData:       "data",
	RefCall:       "call",
}

func (r ReferenceType) String() string {
	if name, ok := refTypeNames[r]; ok {
		return name
	}
	return "unknown"
}

// Reference is one definition or use site.
type Reference struct {
	Type   ReferenceType
	Line   int
	Column int
	Source string
}

// Symbol aggregates everything the cross-referencer learned about one
// name: its definition site, every use, and classification flags.
type Symbol struct {
	Name        string
	Definition  *Reference
	References  []*Reference
	Value       uint32
	IsConstant  bool // defined via .equ/.set
	IsFunction  bool // targeted by at least one BL
	IsDataLabel bool // labels a data directive
}

// XRefGenerator builds the symbol cross-reference for one source file.
type XRefGenerator struct {
	program *parser.Program
	symbols map[string]*Symbol
}

// NewXRefGenerator creates an empty generator.
func NewXRefGenerator() *XRefGenerator {
	return &XRefGenerator{symbols: make(map[string]*Symbol)}
}

// Generate parses input and returns its symbol table cross-reference.
func (x *XRefGenerator) Generate(input, filename string) (map[string]*Symbol, error) {
	p := parser.NewParser(input, filename)
	prog, err := p.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	x.program = prog

	x.collectDefinitions()
	x.collectReferences()

	// A symbol any BL targets is a function.
	for _, symbol := range x.symbols {
		for _, ref := range symbol.References {
			if ref.Type == RefCall {
				symbol.IsFunction = true
				break
			}
		}
	}

	return x.symbols, nil
}

// symbol returns the entry for name, creating it on first sight.
func (x *XRefGenerator) symbol(name string) *Symbol {
	name = strings.TrimSpace(name)
	sym, exists := x.symbols[name]
	if !exists {
		sym = &Symbol{Name: name}
		x.symbols[name] = sym
	}
	return sym
}

func (x *XRefGenerator) collectDefinitions() {
	for _, inst := range x.program.Instructions {
		if inst.Label == "" {
			continue
		}
		x.symbol(inst.Label).Definition = &Reference{
			Type:   RefDefinition,
			Line:   inst.Pos.Line,
			Column: inst.Pos.Column,
			Source: inst.RawLine,
		}
	}

	for _, dir := range x.program.Directives {
		if dir.Label == "" {
			continue
		}
		sym := x.symbol(dir.Label)
		sym.Definition = &Reference{
			Type:   RefDefinition,
			Line:   dir.Pos.Line,
			Column: dir.Pos.Column,
			Source: dir.RawLine,
		}
		sym.IsDataLabel = true
	}

	if x.program.SymbolTable != nil {
		for name, tableSym := range x.program.SymbolTable.GetAllSymbols() {
			sym := x.symbol(name)
			sym.Value = tableSym.Value
			if tableSym.Type == parser.SymbolConstant {
				sym.IsConstant = true
			}
			if tableSym.Type == parser.SymbolLabel && tableSym.Defined && sym.Definition == nil {
				// A label on its own line labels data when a directive, and
				// no instruction, starts at its address.
				sym.Definition = &Reference{Type: RefDefinition, Line: tableSym.Pos.Line, Column: tableSym.Pos.Column}
				atInst, atDir := false, false
				for _, inst := range x.program.Instructions {
					atInst = atInst || inst.Address == tableSym.Value
				}
				for _, dir := range x.program.Directives {
					atDir = atDir || dir.Address == tableSym.Value
				}
				sym.IsDataLabel = atDir && !atInst
			}
		}
	}
}

func (x *XRefGenerator) collectReferences() {
	for _, inst := range x.program.Instructions {
		mnem := strings.ToUpper(inst.Mnemonic)

		switch mnem {
		case "B", "BL", "BX",
			"BEQ", "BNE", "BCS", "BHS", "BCC", "BLO", "BMI", "BPL",
			"BVS", "BVC", "BHI", "BLS", "BGE", "BLT", "BGT", "BLE":
			if len(inst.Operands) > 0 && !isRegisterOperand(inst.Operands[0]) {
				refType := RefBranch
				if mnem == "BL" {
					refType = RefCall
				}
				x.addReference(inst.Operands[0], refType, inst)
			}

		case "LDR", "STR", "LDRB", "STRB", "LDRH", "STRH":
			// LDR Rd,=label pseudo-loads reference the label.
			if len(inst.Operands) > 1 && strings.HasPrefix(inst.Operands[1], "=") {
				label := strings.TrimPrefix(inst.Operands[1], "=")
				if !isNumeric(label) {
					refType := RefLoad
					if strings.HasPrefix(mnem, "ST") {
						refType = RefStore
					}
					x.addReference(label, refType, inst)
				}
			}
		}

		// Symbolic constants can appear as immediates on any instruction.
		for _, operand := range inst.Operands {
			operand = strings.TrimPrefix(operand, "#")
			if isNumeric(operand) || isRegisterOperand(operand) ||
				strings.ContainsAny(operand, "[]") {
				continue
			}
			if sym, known := x.symbols[operand]; known && sym.IsConstant {
				x.addReference(operand, RefData, inst)
			}
		}
	}
}

func (x *XRefGenerator) addReference(name string, refType ReferenceType, inst *parser.Instruction) {
	sym := x.symbol(name)
	sym.References = append(sym.References, &Reference{
		Type:   refType,
		Line:   inst.Pos.Line,
		Column: inst.Pos.Column,
		Source: inst.RawLine,
	})
}

// isRegisterOperand reports whether operand names a register.
func isRegisterOperand(operand string) bool {
	operand = strings.ToUpper(strings.TrimSpace(operand))
	if operand == "SP" || operand == "LR" || operand == "PC" {
		return true
	}
	return strings.HasPrefix(operand, "R") && len(operand) >= 2
}

// sortedByName returns the symbols matching keep, name-ordered.
func (x *XRefGenerator) sortedByName(keep func(*Symbol) bool) []*Symbol {
	var result []*Symbol
	for _, sym := range x.symbols {
		if keep(sym) {
			result = append(result, sym)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// GetSymbols returns everything the generator found.
func (x *XRefGenerator) GetSymbols() map[string]*Symbol {
	return x.symbols
}

// GetSymbol returns one symbol by name.
func (x *XRefGenerator) GetSymbol(name string) (*Symbol, bool) {
	sym, exists := x.symbols[name]
	return sym, exists
}

// GetFunctions returns every BL-targeted symbol.
func (x *XRefGenerator) GetFunctions() []*Symbol {
	return x.sortedByName(func(s *Symbol) bool { return s.IsFunction })
}

// GetDataLabels returns every label attached to a data directive.
func (x *XRefGenerator) GetDataLabels() []*Symbol {
	return x.sortedByName(func(s *Symbol) bool { return s.IsDataLabel })
}

// GetUndefinedSymbols returns symbols referenced but never defined.
func (x *XRefGenerator) GetUndefinedSymbols() []*Symbol {
	return x.sortedByName(func(s *Symbol) bool {
		return s.Definition == nil && len(s.References) > 0
	})
}

// GetUnusedSymbols returns symbols defined but never referenced,
// excluding entry-point names the host looks up by convention.
func (x *XRefGenerator) GetUnusedSymbols() []*Symbol {
	return x.sortedByName(func(s *Symbol) bool {
		return s.Definition != nil && len(s.References) == 0 && !isSpecialLabel(s.Name)
	})
}

// XRefReport renders a symbol cross-reference as text.
type XRefReport struct {
	symbols []*Symbol
}

// NewXRefReport creates a report over symbols, name-ordered.
func NewXRefReport(symbols map[string]*Symbol) *XRefReport {
	sorted := make([]*Symbol, 0, len(symbols))
	for _, sym := range symbols {
		sorted = append(sorted, sym)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &XRefReport{symbols: sorted}
}

// String renders the per-symbol listing plus a summary block.
func (r *XRefReport) String() string {
	var sb strings.Builder

	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("======================\n\n")

	for _, sym := range r.symbols {
		sb.WriteString(fmt.Sprintf("%-30s", sym.Name))
		switch {
		case sym.IsConstant:
			fmt.Fprintf(&sb, " [constant=0x%08X]", sym.Value)
		case sym.IsFunction:
			sb.WriteString(" [function]")
		case sym.IsDataLabel:
			sb.WriteString(" [data]")
		default:
			sb.WriteString(" [label]")
		}
		sb.WriteString("\n")

		if sym.Definition != nil {
			fmt.Fprintf(&sb, "  Defined:     line %d\n", sym.Definition.Line)
		} else {
			sb.WriteString("  Defined:     (undefined)\n")
		}

		if len(sym.References) == 0 {
			sb.WriteString("  Referenced:  (never)\n\n")
			continue
		}
		fmt.Fprintf(&sb, "  Referenced:  %d time(s)\n", len(sym.References))

		refsByType := make(map[ReferenceType][]*Reference)
		for _, ref := range sym.References {
			refsByType[ref.Type] = append(refsByType[ref.Type], ref)
		}
		for _, refType := range []ReferenceType{RefCall, RefBranch, RefLoad, RefStore, RefData} {
			refs := refsByType[refType]
			if len(refs) == 0 {
				continue
			}
			lines := make([]string, len(refs))
			for i, ref := range refs {
				lines[i] = fmt.Sprintf("%d", ref.Line)
			}
			fmt.Fprintf(&sb, "    %-10s: line(s) %s\n", refType, strings.Join(lines, ", "))
		}
		sb.WriteString("\n")
	}

	var defined, undefined, unused, functions int
	for _, sym := range r.symbols {
		if sym.Definition != nil {
			defined++
		} else {
			undefined++
		}
		if len(sym.References) == 0 {
			unused++
		}
		if sym.IsFunction {
			functions++
		}
	}

	sb.WriteString("Summary\n")
	sb.WriteString("=======\n")
	fmt.Fprintf(&sb, "Total symbols:     %d\n", len(r.symbols))
	fmt.Fprintf(&sb, "Defined:           %d\n", defined)
	fmt.Fprintf(&sb, "Undefined:         %d\n", undefined)
	fmt.Fprintf(&sb, "Unused:            %d\n", unused)
	fmt.Fprintf(&sb, "Functions:         %d\n", functions)

	return sb.String()
}

// GenerateXRef parses input and renders its cross-reference report.
func GenerateXRef(input, filename string) (string, error) {
	gen := NewXRefGenerator()
	symbols, err := gen.Generate(input, filename)
	if err != nil {
		return "", err
	}
	return NewXRefReport(symbols).String(), nil
}
