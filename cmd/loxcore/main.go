// Command loxcore compiles and runs the core language: run a script,
// drop into a REPL, or dump a chunk's disassembly.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

const version = "v0.1.0"

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&disasmCmd{}, "")

	// Zero arguments drops straight into the REPL, the way the teacher's
	// own noxy binary does when invoked with no file.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "repl")
	}

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
