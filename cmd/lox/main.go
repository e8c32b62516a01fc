package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/ctsk/lox/compiler"
	"github.com/ctsk/lox/internal/ioutil"
	"github.com/ctsk/lox/vm"
)

func main() {
	trace := flag.Bool("trace", false, "enable VM instruction trace on stderr")
	dump := flag.Bool("dump", false, "print a disassembly of the compiled chunk before running")
	flag.Parse()

	if os.Getenv("LOX_TRACE") != "" {
		*trace = true
	}

	logger := logrus.New()
	logger.Out = os.Stderr
	if *trace {
		logger.SetLevel(logrus.DebugLevel)
	}

	args := flag.Args()
	switch len(args) {
	case 0:
		os.Exit(repl(logger, *dump))
	case 1:
		os.Exit(runFile(args[0], logger, *dump))
	default:
		fmt.Fprintln(os.Stderr, "Usage: lox [path]")
		os.Exit(64)
	}
}

func repl(logger *logrus.Logger, dump bool) int {
	out := ioutil.NewErrWriter(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return 0
		}
		runSource(scanner.Text(), "<repl>", out, logger, dump)
	}
}

func runFile(path string, logger *logrus.Logger, dump bool) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 74
	}
	out := ioutil.NewErrWriter(os.Stdout)
	return runSource(string(src), path, out, logger, dump)
}

// runSource compiles and runs src, printing diagnostics to stderr and
// returning the process exit code this invocation warrants (0/65/70).
func runSource(src, name string, out *ioutil.ErrWriter, logger *logrus.Logger, dump bool) int {
	chunk, err := compiler.Compile(src, compiler.WithLogger(logger))
	if err != nil {
		printCompileErrors(err)
		return 65
	}
	if dump {
		fmt.Fprint(os.Stdout, chunk.Disassemble(name))
	}

	i, err := vm.New(vm.WithOutput(out), vm.Trace(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 70
	}
	if err := i.Run(chunk); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 70
	}
	return 0
}

func printCompileErrors(err error) {
	merr, ok := err.(*multierror.Error)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	for _, e := range merr.Errors {
		fmt.Fprintln(os.Stderr, e)
	}
}
