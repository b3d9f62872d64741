package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"loxcore/internal/compiler"
)

type disasmCmd struct {
	stats bool
}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "compile a source file and print its bytecode" }
func (*disasmCmd) Usage() string {
	return "disasm <file>:\n  Compile a source file and dump its disassembly to stdout.\n"
}

func (d *disasmCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&d.stats, "stats", false, "include a compiled-size header line")
}

func (d *disasmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "disasm: missing source file")
		return subcommands.ExitUsageError
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "disasm: %v\n", err)
		return subcommands.ExitFailure
	}

	c, err := compiler.Compile(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}

	if d.stats {
		c.DisassembleWithHeader(os.Stdout, args[0], time.Now())
	} else {
		c.Disassemble(os.Stdout, args[0])
	}
	return subcommands.ExitSuccess
}
