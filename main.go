package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/tinylab/thumb16vm/api"
	"github.com/tinylab/thumb16vm/config"
	"github.com/tinylab/thumb16vm/core"
	"github.com/tinylab/thumb16vm/debugger"
	"github.com/tinylab/thumb16vm/loader"
	"github.com/tinylab/thumb16vm/parser"
	"github.com/tinylab/thumb16vm/vm"
)

// Build metadata - overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		maxCycles   = flag.Uint64("max-cycles", 1000000, "Maximum instructions before halt")
		stackSize   = flag.Uint("stack-size", vm.StackSegmentSize, "Stack size in bytes")
		entryPoint  = flag.String("entry", "0x8000", "Entry point address (hex or decimal)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		fsRoot      = flag.String("fsroot", "", "Restrict file operations to this directory (default: current directory)")

		enableTrace         = flag.Bool("trace", false, "Enable execution trace")
		traceFile           = flag.String("trace-file", "", "Trace output file (default: trace.log in log dir)")
		enableStats         = flag.Bool("stats", false, "Enable instruction-category statistics")
		statsFile           = flag.String("stats-file", "", "Statistics output file (default: stats.txt)")
		enableCoverage      = flag.Bool("coverage", false, "Enable code coverage tracking")
		coverageFile        = flag.String("coverage-file", "", "Coverage output file (default: coverage.txt)")
		enableFlagTrace     = flag.Bool("flag-trace", false, "Enable CPSR flag change tracing")
		flagTraceFile       = flag.String("flag-trace-file", "", "Flag trace output file (default: flag_trace.txt)")
		enableRegisterTrace = flag.Bool("register-trace", false, "Enable register write tracing")
		registerTraceFile   = flag.String("register-trace-file", "", "Register trace output file (default: register_trace.txt)")

		dumpSymbols = flag.Bool("dump-symbols", false, "Dump symbol table and exit")
		symbolsFile = flag.String("symbols-file", "", "Symbol dump output file (default: stdout)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("Thumb-1 Interpreter %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	asmFile := flag.Arg(0)
	if _, err := os.Stat(asmFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", asmFile)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Loading and parsing assembly file: %s\n", asmFile)
	}

	program, _, err := parser.ParseFileSimple(asmFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parse error:\n%v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Parsed %d instructions, %d directives\n",
			len(program.Instructions), len(program.Directives))
	}

	machine := vm.NewVM()
	machine.CycleLimit = *maxCycles

	filesystemRoot := *fsRoot
	if filesystemRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting current directory: %v\n", err)
			os.Exit(1)
		}
		filesystemRoot = cwd
	}
	absRoot, err := filepath.Abs(filesystemRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving filesystem root path: %v\n", err)
		os.Exit(1)
	}
	machine.FilesystemRoot = absRoot

	if *verboseMode {
		fmt.Printf("Filesystem root: %s\n", absRoot)
	}

	const maxStackSize = 0x10000000 // 256MB reasonable maximum
	if *stackSize > maxStackSize {
		fmt.Fprintf(os.Stderr, "Error: stack size %d exceeds maximum allowed %d\n", *stackSize, maxStackSize)
		os.Exit(1)
	}
	stackTop := uint32(vm.StackSegmentStart + *stackSize) // #nosec G115 -- bounded by maxStackSize above
	machine.InitializeStack(stackTop)

	entryAddr, err := resolveEntryPoint(program, *entryPoint, *verboseMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Println("Loading program into memory...")
	}
	if err := loader.LoadProgramIntoVM(machine, program, entryAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	symbols, sourceMap := buildDebugMaps(program)

	if *verboseMode {
		fmt.Printf("Entry point: 0x%08X\n", entryAddr)
		fmt.Printf("Stack: 0x%08X - 0x%08X (%d bytes)\n", vm.StackSegmentStart, stackTop, *stackSize)
		fmt.Printf("Symbols: %d labels defined\n", len(symbols))
	}

	if *dumpSymbols {
		if err := dumpSymbolTable(program.SymbolTable, *symbolsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error dumping symbols: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	closers := attachDiagnostics(machine, diagnosticFlags{
		trace:         *enableTrace,
		traceFile:     *traceFile,
		stats:         *enableStats,
		statsFile:     *statsFile,
		coverage:      *enableCoverage,
		coverageFile:  *coverageFile,
		flagTrace:     *enableFlagTrace,
		flagTraceFile: *flagTraceFile,
		regTrace:      *enableRegisterTrace,
		regTraceFile:  *registerTraceFile,
	}, *verboseMode)
	defer closers.Close()

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(machine)
		dbg.LoadSymbols(symbols)
		dbg.LoadSourceMap(sourceMap)

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		fmt.Println("Thumb-1 Debugger - Type 'help' for commands")
		fmt.Printf("Program loaded: %s\n", asmFile)
		fmt.Println()
		if err := debugger.RunCLI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	code := runDirect(machine, *verboseMode)
	closers.Close()
	os.Exit(code)
}

// runAPIServer starts the HTTP/WebSocket debugging server and blocks until
// it receives a shutdown signal, either from the OS or from the process
// monitor noticing a dead parent (a GUI front end that crashed or was
// force-quit without closing the server cleanly).
func runAPIServer(port int) {
	server := api.NewServerWithVersion(port, Version, Commit, Date)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	monitor := api.NewProcessMonitor(performShutdown)
	monitor.Start()

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

// resolveEntryPoint picks, in priority order, the _start symbol, the
// program's .org address (when -entry was left at its default), or the
// explicit -entry flag value.
func resolveEntryPoint(program *parser.Program, entryFlag string, verbose bool) (uint32, error) {
	if startSym, exists := program.SymbolTable.Lookup("_start"); exists && startSym.Defined {
		if verbose {
			fmt.Printf("Using _start symbol address: 0x%08X\n", startSym.Value)
		}
		return startSym.Value, nil
	}

	if entryFlag == "0x8000" && program.OriginSet {
		if verbose {
			fmt.Printf("Using .org directive address: 0x%08X\n", program.Origin)
		}
		return program.Origin, nil
	}

	var entryAddr uint32
	if _, err := fmt.Sscanf(entryFlag, "0x%x", &entryAddr); err == nil {
		return entryAddr, nil
	}
	if _, err := fmt.Sscanf(entryFlag, "%d", &entryAddr); err == nil {
		return entryAddr, nil
	}
	return 0, fmt.Errorf("invalid entry point: %s", entryFlag)
}

// buildDebugMaps extracts the label table and an address-to-source-line
// map the debugger front ends use to display where execution is. Data
// directives are tagged with a "[DATA]" prefix so the TUI can render them
// distinctly from disassembled instructions.
func buildDebugMaps(program *parser.Program) (map[string]uint32, map[uint32]string) {
	symbols := make(map[string]uint32)
	for name, symbol := range program.SymbolTable.GetAllSymbols() {
		if symbol.Type == parser.SymbolLabel {
			symbols[name] = symbol.Value
		}
	}

	sourceMap := make(map[uint32]string)
	for _, inst := range program.Instructions {
		sourceMap[inst.Address] = inst.RawLine
	}
	for _, dir := range program.Directives {
		switch dir.Name {
		case ".word", ".byte", ".ascii", ".asciz", ".space":
			sourceMap[dir.Address] = "[DATA]" + dir.RawLine
		}
	}
	return symbols, sourceMap
}

// diagnosticFlags bundles the CLI's optional-diagnostics flag values so
// attachDiagnostics doesn't need a 10-argument signature.
type diagnosticFlags struct {
	trace, stats, coverage, flagTrace, regTrace                             bool
	traceFile, statsFile, coverageFile, flagTraceFile, regTraceFile string
}

// diagnosticCloser flushes and closes every diagnostic hook attached to a
// run, in the order they were opened.
type diagnosticCloser []func()

func (d diagnosticCloser) Close() {
	for _, fn := range d {
		fn()
	}
}

// attachDiagnostics wires the optional execution/flag/register trace,
// coverage, and statistics collectors onto the machine per the requested
// flags, opening their output files relative to config.GetLogPath() when
// no explicit path was given. The returned closer flushes each collector
// and closes its file.
func attachDiagnostics(machine *vm.VM, f diagnosticFlags, verbose bool) diagnosticCloser {
	var closers diagnosticCloser

	openFile := func(requested, defaultName string) *os.File {
		path := requested
		if path == "" {
			path = filepath.Join(config.GetLogPath(), defaultName)
		}
		file, err := os.Create(path) // #nosec G304 -- user-specified diagnostic output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", path, err)
			return nil
		}
		if verbose {
			fmt.Printf("%s: %s\n", defaultName, path)
		}
		return file
	}

	if f.trace {
		if file := openFile(f.traceFile, "trace.log"); file != nil {
			machine.Machine.Trace = core.NewExecutionTrace(file)
			closers = append(closers, func() {
				if err := machine.Machine.Trace.Flush(); err != nil {
					fmt.Fprintf(os.Stderr, "Error flushing execution trace: %v\n", err)
				}
				_ = file.Close()
			})
		}
	}

	if f.stats {
		machine.Machine.Stats = core.NewStatistics()
		path := f.statsFile
		if path == "" {
			path = filepath.Join(config.GetLogPath(), "stats.txt")
		}
		closers = append(closers, func() {
			file, err := os.Create(path) // #nosec G304 -- user-specified diagnostic output path
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", path, err)
				return
			}
			defer func() { _ = file.Close() }()
			if err := machine.Machine.Stats.Flush(file); err != nil {
				fmt.Fprintf(os.Stderr, "Error flushing statistics: %v\n", err)
			}
			if verbose {
				fmt.Printf("stats.txt: %s\n", path)
			}
		})
	}

	if f.coverage {
		if file := openFile(f.coverageFile, "coverage.txt"); file != nil {
			machine.Machine.Coverage = core.NewCodeCoverage(file)
			machine.Machine.Coverage.CodeStart = machine.EntryPoint
			closers = append(closers, func() {
				if err := machine.Machine.Coverage.Flush(); err != nil {
					fmt.Fprintf(os.Stderr, "Error flushing coverage: %v\n", err)
				}
				_ = file.Close()
			})
		}
	}

	if f.flagTrace {
		if file := openFile(f.flagTraceFile, "flag_trace.txt"); file != nil {
			machine.Machine.FlagTrace = core.NewFlagTrace(file)
			closers = append(closers, func() {
				if err := machine.Machine.FlagTrace.Flush(); err != nil {
					fmt.Fprintf(os.Stderr, "Error flushing flag trace: %v\n", err)
				}
				_ = file.Close()
			})
		}
	}

	if f.regTrace {
		if file := openFile(f.regTraceFile, "register_trace.txt"); file != nil {
			machine.Machine.RegisterTrace = core.NewRegisterTrace(file)
			machine.Machine.RegisterTrace.Enabled = true
			closers = append(closers, func() {
				if err := machine.Machine.RegisterTrace.Flush(); err != nil {
					fmt.Fprintf(os.Stderr, "Error flushing register trace: %v\n", err)
				}
				_ = file.Close()
			})
		}
	}

	return closers
}

// runDirect runs the program to completion outside the debugger, printing
// a short run summary when -verbose is set. Returns the process exit code
// rather than calling os.Exit so the caller can flush diagnostics first.
func runDirect(machine *vm.VM, verbose bool) int {
	if verbose {
		fmt.Println("\nStarting execution...")
		fmt.Println("----------------------------------------")
	}

	machine.State = vm.StateRunning
	for machine.State == vm.StateRunning {
		if err := machine.Step(); err != nil {
			fmt.Fprintf(os.Stderr, "\nRuntime error at PC=0x%08X: %v\n", machine.Machine.R[core.PC], err)
			return 1
		}
		if machine.Machine.Terminated {
			break
		}
	}

	if verbose {
		fmt.Println("\n----------------------------------------")
		fmt.Println("Execution complete")
		fmt.Printf("Exit code: %d\n", machine.ExitCode)
		fmt.Printf("Instructions executed: %d\n", len(machine.InstructionLog))

		if machine.Machine.Coverage != nil {
			fmt.Printf("Coverage: %.1f%%\n", machine.Machine.Coverage.Percent())
		}
		if machine.Machine.Stats != nil {
			fmt.Printf("Instructions retired: %d\n", machine.Machine.Stats.TotalInstructions)
		}
	}

	return int(machine.ExitCode)
}

func printHelp() {
	fmt.Printf(`Thumb-1 Interpreter %s

Usage: thumb-emu [options] <assembly-file>
       thumb-emu -api-server [-port N]

Options:
  -help              Show this help message
  -version           Show version information
  -api-server        Start HTTP/WebSocket debugging server (no file required)
  -port N            API server port (default: 8080, used with -api-server)
  -debug             Start in debugger mode (CLI)
  -tui               Start in TUI debugger mode
  -max-cycles N      Set maximum instruction count (default: 1000000)
  -stack-size N      Set stack size in bytes (default: %d)
  -entry ADDR        Set entry point address (default: 0x8000)
  -verbose           Enable verbose output
  -fsroot DIR        Restrict file operations to directory (default: current directory)

Symbol Options:
  -dump-symbols      Dump symbol table and exit
  -symbols-file FILE Symbol dump output file (default: stdout)

Diagnostics:
  -trace               Enable execution trace
  -trace-file FILE      Trace output file (default: trace.log in log dir)
  -stats                Enable instruction-category statistics
  -stats-file FILE      Statistics output file (default: stats.txt)
  -coverage             Enable code coverage tracking
  -coverage-file FILE   Coverage output file (default: coverage.txt)
  -flag-trace           Enable CPSR flag change tracing
  -flag-trace-file FILE Flag trace output file (default: flag_trace.txt)
  -register-trace       Enable register write tracing
  -register-trace-file FILE Register trace output file (default: register_trace.txt)

Examples:
  # Start the debugging server for a GUI front end
  thumb-emu -api-server
  thumb-emu -api-server -port 3000

  # Run a program directly
  thumb-emu examples/hello.s

  # Run with the CLI debugger
  thumb-emu -debug examples/fibonacci.s

  # Run with the TUI debugger
  thumb-emu -tui examples/bubble_sort.s

  # Run with custom cycle budget and entry point
  thumb-emu -max-cycles 5000000 -entry 0x10000 program.s

  # Run with an execution trace and statistics
  thumb-emu -trace -stats -verbose program.s

  # Dump the symbol table
  thumb-emu -dump-symbols program.s
  thumb-emu -dump-symbols -symbols-file symbols.txt program.s

  # Restrict file operations to a specific directory
  thumb-emu -fsroot /tmp/sandbox program.s

Debugger Commands (when in -debug mode):
  run, r             Start/restart program execution
  continue, c        Continue execution
  step, s            Execute single instruction
  next, n            Step over function calls
  break ADDR         Set breakpoint at address/label
  info registers     Show all registers
  print EXPR         Evaluate and print expression
  help               Show debugger help

For more information, see the README.md file.
`, Version, vm.StackSegmentSize)
}

// dumpSymbolTable writes the symbol table, sorted by address, to filename
// (or stdout if filename is empty).
func dumpSymbolTable(st *parser.SymbolTable, filename string) error {
	var writer *os.File
	var err error

	if filename == "" {
		writer = os.Stdout
	} else {
		writer, err = os.Create(filename) // #nosec G304 -- user-specified symbol output path
		if err != nil {
			return fmt.Errorf("failed to create symbol file: %w", err)
		}
		defer func() {
			if cerr := writer.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close symbol file: %v\n", cerr)
			}
		}()
	}

	allSymbols := st.GetAllSymbols()
	if len(allSymbols) == 0 {
		_, _ = fmt.Fprintln(writer, "No symbols defined")
		return nil
	}

	_, _ = fmt.Fprintln(writer, "Symbol Table")
	_, _ = fmt.Fprintln(writer, "============")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "%-30s %-12s %-10s %s\n", "Name", "Type", "Address", "Status")
	_, _ = fmt.Fprintln(writer, "--------------------------------------------------------------------------------")

	type symbolEntry struct {
		name   string
		symbol *parser.Symbol
	}
	entries := make([]symbolEntry, 0, len(allSymbols))
	for name, sym := range allSymbols {
		entries = append(entries, symbolEntry{name, sym})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].symbol.Value < entries[j].symbol.Value
	})

	for _, entry := range entries {
		sym := entry.symbol

		var symType string
		switch sym.Type {
		case parser.SymbolLabel:
			symType = "Label"
		case parser.SymbolConstant:
			symType = "Constant"
		case parser.SymbolVariable:
			symType = "Variable"
		default:
			symType = "Unknown"
		}

		status := "Defined"
		if !sym.Defined {
			status = "Undefined"
		}

		_, _ = fmt.Fprintf(writer, "%-30s %-12s 0x%08X %s\n", entry.name, symType, sym.Value, status)
	}

	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "Total symbols: %d\n", len(allSymbols))

	return nil
}
