package parser

import (
	"os"
	"path/filepath"
)

// ParseFileOptions configures ParseFile.
type ParseFileOptions struct {
	// Defines seeds the preprocessor's .ifdef/.ifndef symbol set.
	Defines []string
	// EnablePreprocessor turns on .include and conditional directives.
	EnablePreprocessor bool
}

// DefaultParseFileOptions enables the preprocessor with no defines.
func DefaultParseFileOptions() ParseFileOptions {
	return ParseFileOptions{EnablePreprocessor: true}
}

// ParseFile reads, preprocesses and parses one assembly file. Includes
// are resolved relative to the file's own directory. The parser is
// returned alongside the program so callers can inspect warnings.
func ParseFile(filePath string, opts ParseFileOptions) (*Program, *Parser, error) {
	content, err := os.ReadFile(filePath) // #nosec G304 -- user-provided assembly file path
	if err != nil {
		return nil, nil, err
	}

	filename := filepath.Base(filePath)
	source := string(content)

	if opts.EnablePreprocessor {
		pp := NewPreprocessor(filepath.Dir(filePath))
		for _, def := range opts.Defines {
			pp.Define(def)
		}
		processed, err := pp.ProcessContent(source, filename)
		if err != nil {
			return nil, nil, err
		}
		if pp.Errors().HasErrors() {
			return nil, nil, pp.Errors().Errors[0]
		}
		source = processed
	}

	p := NewParser(source, filename)
	program, err := p.Parse()
	if err != nil {
		return nil, p, err
	}
	return program, p, nil
}

// ParseFileSimple is ParseFile with the default options.
func ParseFileSimple(filePath string) (*Program, *Parser, error) {
	return ParseFile(filePath, DefaultParseFileOptions())
}
