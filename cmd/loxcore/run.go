package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"loxcore/internal/compiler"
	"loxcore/internal/vm"
)

type runCmd struct {
	lenientGlobals bool
	stats          bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "compile and execute a source file" }
func (*runCmd) Usage() string {
	return "run <file>:\n  Compile and execute a loxcore source file.\n"
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.lenientGlobals, "lenient-globals", false, "undefined globals read as nil instead of erroring")
	f.BoolVar(&r.stats, "stats", false, "print stack/heap footprint after execution")
}

func (r *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "run: missing source file")
		return subcommands.ExitUsageError
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return subcommands.ExitFailure
	}

	c, err := compiler.Compile(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}

	machine := vm.NewWithConfig(vm.Config{LenientGlobals: r.lenientGlobals, Output: os.Stdout})
	_, err = machine.Run(c)
	if r.stats {
		fmt.Fprintln(os.Stderr, machine.Stats())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
