package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tinylab/thumb16vm/parser"
)

// FormatStyle selects one of the formatter's layout presets.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // column-aligned
	FormatCompact                     // minimal whitespace
	FormatExpanded                    // wider columns
)

// FormatOptions controls column layout and alignment.
type FormatOptions struct {
	Style              FormatStyle
	LabelColumn        int
	InstructionColumn  int
	OperandColumn      int
	CommentColumn      int
	AlignOperands      bool
	AlignComments      bool
	IndentSize         int
	PreserveEmptyLines bool
	TabWidth           int
}

// DefaultFormatOptions is the standard column-aligned layout.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:              FormatDefault,
		InstructionColumn:  8,
		OperandColumn:      16,
		CommentColumn:      40,
		AlignOperands:      true,
		AlignComments:      true,
		IndentSize:         8,
		PreserveEmptyLines: true,
		TabWidth:           8,
	}
}

// CompactFormatOptions collapses all alignment to single spaces.
func CompactFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatCompact
	opts.InstructionColumn = 0
	opts.OperandColumn = 0
	opts.CommentColumn = 0
	opts.AlignOperands = false
	opts.AlignComments = false
	return opts
}

// ExpandedFormatOptions widens every column.
func ExpandedFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatExpanded
	opts.InstructionColumn = 12
	opts.OperandColumn = 24
	opts.CommentColumn = 50
	return opts
}

// Formatter renders a parsed program back as canonically laid-out source.
type Formatter struct {
	options *FormatOptions
	program *parser.Program
	output  strings.Builder
}

// NewFormatter creates a formatter; nil options mean the default layout.
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// Format parses input and renders it with the configured layout.
func (f *Formatter) Format(input, filename string) (string, error) {
	p := parser.NewParser(input, filename)
	prog, err := p.Parse()
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}

	f.program = prog
	f.output.Reset()
	f.formatProgram()
	return f.output.String(), nil
}

// formatProgram interleaves instructions, directives, and standalone
// labels back into source-line order.
func (f *Formatter) formatProgram() {
	attachedLabels := make(map[string]bool)
	for _, inst := range f.program.Instructions {
		if inst.Label != "" {
			attachedLabels[inst.Label] = true
		}
	}
	for _, dir := range f.program.Directives {
		if dir.Label != "" {
			attachedLabels[dir.Label] = true
		}
	}

	// Labels on their own line exist only in the symbol table.
	type standaloneLabel struct {
		name string
		line int
	}
	var standalone []standaloneLabel
	for name, sym := range f.program.SymbolTable.GetAllSymbols() {
		if !attachedLabels[name] && sym.Type == parser.SymbolLabel {
			standalone = append(standalone, standaloneLabel{name: name, line: sym.Pos.Line})
		}
	}
	sort.Slice(standalone, func(i, j int) bool { return standalone[i].line < standalone[j].line })

	const maxLine = 1<<31 - 1
	instIdx, dirIdx, labelIdx := 0, 0, 0
	for instIdx < len(f.program.Instructions) || dirIdx < len(f.program.Directives) || labelIdx < len(standalone) {
		instLine, dirLine, labelLine := maxLine, maxLine, maxLine
		if instIdx < len(f.program.Instructions) {
			instLine = f.program.Instructions[instIdx].Pos.Line
		}
		if dirIdx < len(f.program.Directives) {
			dirLine = f.program.Directives[dirIdx].Pos.Line
		}
		if labelIdx < len(standalone) {
			labelLine = standalone[labelIdx].line
		}

		switch {
		case labelLine <= instLine && labelLine <= dirLine:
			f.output.WriteString(standalone[labelIdx].name)
			f.output.WriteString(":\n")
			labelIdx++
		case instLine <= dirLine:
			f.formatInstruction(f.program.Instructions[instIdx])
			instIdx++
		default:
			f.formatDirective(f.program.Directives[dirIdx])
			dirIdx++
		}
	}
}

// writeLabelAndIndent emits an optional leading label and positions the
// line at the instruction column.
func (f *Formatter) writeLabelAndIndent(line *strings.Builder, label string) {
	if label != "" {
		line.WriteString(label)
		line.WriteString(":")
		if f.options.Style == FormatCompact {
			line.WriteString(" ")
			return
		}
	}
	if f.options.Style != FormatCompact {
		f.padToColumn(line, f.options.InstructionColumn)
	}
}

// writeComment appends a trailing comment per the alignment options.
func (f *Formatter) writeComment(line *strings.Builder, comment string) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return
	}
	switch {
	case f.options.Style == FormatCompact:
		line.WriteString(" ; ")
	case f.options.AlignComments:
		f.padToColumn(line, f.options.CommentColumn)
		line.WriteString("; ")
	default:
		line.WriteString("\t; ")
	}
	line.WriteString(comment)
}

func (f *Formatter) formatInstruction(inst *parser.Instruction) {
	var line strings.Builder
	f.writeLabelAndIndent(&line, inst.Label)

	// Bcc mnemonics already spell out their condition; nothing is
	// appended to any mnemonic.
	line.WriteString(strings.ToUpper(inst.Mnemonic))

	if len(inst.Operands) > 0 {
		switch {
		case f.options.Style == FormatCompact:
			line.WriteString(" ")
		case f.options.AlignOperands:
			f.padToColumn(&line, f.options.OperandColumn)
		default:
			line.WriteString("\t")
		}
		for i, op := range inst.Operands {
			if i > 0 {
				line.WriteString(", ")
			}
			line.WriteString(strings.TrimSpace(op))
		}
	}

	f.writeComment(&line, inst.Comment)
	f.output.WriteString(line.String())
	f.output.WriteString("\n")
}

func (f *Formatter) formatDirective(dir *parser.Directive) {
	var line strings.Builder
	f.writeLabelAndIndent(&line, dir.Label)

	name := strings.ToLower(dir.Name)
	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}
	line.WriteString(name)

	if len(dir.Args) > 0 {
		if f.options.Style == FormatCompact {
			line.WriteString(" ")
		} else {
			line.WriteString("\t")
		}
		line.WriteString(strings.Join(dir.Args, ", "))
	}

	f.writeComment(&line, dir.Comment)
	f.output.WriteString(line.String())
	f.output.WriteString("\n")
}

// padToColumn pads to the given column, or by a single space when the
// line has already passed it.
func (f *Formatter) padToColumn(sb *strings.Builder, column int) {
	if current := sb.Len(); current < column {
		sb.WriteString(strings.Repeat(" ", column-current))
	} else if current > column {
		sb.WriteString(" ")
	}
}

// FormatString formats input with the default layout.
func FormatString(input, filename string) (string, error) {
	return NewFormatter(DefaultFormatOptions()).Format(input, filename)
}

// FormatStringWithStyle formats a string with the specified style preset.
func FormatStringWithStyle(input, filename string, style FormatStyle) (string, error) {
	var options *FormatOptions
	switch style {
	case FormatCompact:
		options = CompactFormatOptions()
	case FormatExpanded:
		options = ExpandedFormatOptions()
	default:
		options = DefaultFormatOptions()
	}
	return NewFormatter(options).Format(input, filename)
}
