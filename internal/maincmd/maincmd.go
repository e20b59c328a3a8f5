// Package maincmd wires the Lumen CLI: argument parsing, exit codes, and
// the REPL/file dispatch. It carries no compiler or VM logic of its own,
// only the plumbing that turns argv and stdio into calls against the
// lang/compiler, lang/vm and internal/config packages.
package maincmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/lumen-lang/lumen/internal/config"
	"github.com/lumen-lang/lumen/lang/compiler"
	"github.com/lumen-lang/lumen/lang/vm"
)

const binName = "lumen"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the %[1]s scripting language.

With a <path> argument, compiles and runs the script at that path. With
no arguments, starts a REPL that reads one line at a time from stdin,
reusing a single VM so globals persist across lines.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --config <path>           Load VM/GC tunables from a YAML file.
`, binName)
)

// Cmd is the top-level command, populated by mainer.Parser from argv and
// environment variables.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	ConfigPath string `flag:"config"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("at most one script path may be given, got %d", len(c.args))
	}
	return nil
}

// exit codes match the reference host's convention: a clean run is 0, a
// compile-time failure is 65 (EX_DATAERR), a runtime failure is 70
// (EX_SOFTWARE), and an I/O failure (e.g. the script file can't be read)
// is 74 (EX_IOERR).
const (
	exitSuccess      mainer.ExitCode = 0
	exitCompileError mainer.ExitCode = 65
	exitRuntimeError mainer.ExitCode = 70
	exitIOError      mainer.ExitCode = 74
)

// Main parses args, then either prints help/version or runs the
// interpreter in file or REPL mode, returning the exit code the process
// should use.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return exitSuccess
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return exitSuccess
	}

	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "loading config: %s\n", err)
		return exitIOError
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if len(c.args) == 1 {
		return runFile(ctx, stdio, cfg, c.args[0])
	}
	return runREPL(ctx, stdio, cfg)
}

func newVM(stdio mainer.Stdio, cfg config.Config) *vm.VM {
	heap := cfg.NewHeap()
	opts := append(cfg.VMOptions(), vm.WithStdio(stdio.Stdout, stdio.Stderr))
	return vm.New(heap, opts...)
}

// runFile compiles and runs the script at path, reporting whichever
// category of error occurred to stderr and returning the matching exit
// code.
func runFile(ctx context.Context, stdio mainer.Stdio, cfg config.Config, path string) mainer.ExitCode {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return exitIOError
	}

	m := newVM(stdio, cfg)
	return interpret(ctx, m, string(source), stdio.Stderr)
}

// runREPL reads stdin one line at a time, evaluating each against a single
// VM so that globals and class definitions persist across lines, printing
// `> ` between statements the way an interactive session does.
func runREPL(ctx context.Context, stdio mainer.Stdio, cfg config.Config) mainer.ExitCode {
	m := newVM(stdio, cfg)

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		// REPL errors are reported but never end the session: each line is
		// an independent chance to keep going.
		interpret(ctx, m, line, stdio.Stderr)

		if ctx.Err() != nil {
			break
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(stdio.Stderr, "reading stdin: %s\n", err)
		return exitIOError
	}
	return exitSuccess
}

// interpret runs source against m and reports any error to stderr,
// translating it into the exit code its category maps to.
func interpret(ctx context.Context, m *vm.VM, source string, stderr io.Writer) mainer.ExitCode {
	err := m.InterpretContext(ctx, source)
	if err == nil {
		return exitSuccess
	}

	var compileErrs compiler.Errors
	if errors.As(err, &compileErrs) {
		fmt.Fprintln(stderr, compileErrs.Error())
		return exitCompileError
	}

	var rerr *vm.RuntimeError
	if errors.As(err, &rerr) {
		fmt.Fprintln(stderr, rerr.Error())
		return exitRuntimeError
	}

	fmt.Fprintln(stderr, err)
	return exitRuntimeError
}
