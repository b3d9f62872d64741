package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"golang.org/x/exp/slices"

	"loxcore/internal/compiler"
	"loxcore/internal/value"
	"loxcore/internal/vm"
)

type replCmd struct {
	lenientGlobals bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive session" }
func (*replCmd) Usage() string {
	return "repl:\n  Start an interactive loxcore session. Globals persist across lines.\n" +
		"  :globals and :locals introspect the live globals table and the most\n" +
		"  recently compiled line's local-variable table.\n"
}

func (r *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.lenientGlobals, "lenient-globals", false, "undefined globals read as nil instead of erroring")
}

// Execute runs the REPL loop. One vm.VM and thus one globals table is
// shared across every line for the life of the process (§6's persistence
// note), while each line gets its own Compile call and its own local
// scope.
func (r *replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sessionID := uuid.NewString()
	interactive := isatty.IsTerminal(os.Stdin.Fd())

	if interactive {
		fmt.Printf("loxcore %s [session %s]\n", version, sessionID)
		fmt.Println("Ctrl-D to exit.")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "> ",
		HistoryFile: "",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "repl: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.NewWithConfig(vm.Config{LenientGlobals: r.lenientGlobals, Output: os.Stdout})
	var lastCompiler *compiler.Compiler

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "[session %s] %v\n", sessionID, err)
			return subcommands.ExitFailure
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			runREPLCommand(machine, lastCompiler, line)
			continue
		}

		c, comp, err := compiler.CompileDebug(line)
		lastCompiler = comp
		if err != nil {
			fmt.Printf("[session %s] %v\n", sessionID, err)
			continue
		}

		result, err := machine.Run(c)
		if err != nil {
			fmt.Printf("[session %s] %v\n", sessionID, err)
			continue
		}
		fmt.Println(value.Print(result, machine.Heap()))
	}
}

// runREPLCommand handles the REPL's introspection commands: ":globals"
// lists the live globals table (persisted across lines on machine), and
// ":locals" lists the names still in the most recently compiled line's
// local-variable table. Since every REPL line is a balanced top-level
// program, its local table is normally empty by the time compilation
// finishes (blocks close their own scope before returning) — ":locals"
// mainly helps inspect a line that failed to compile mid-block.
func runREPLCommand(machine *vm.VM, lastCompiler *compiler.Compiler, line string) {
	switch strings.TrimSpace(line) {
	case ":globals":
		globals := machine.Globals()
		names := make([]string, 0, len(globals))
		for name := range globals {
			names = append(names, name)
		}
		slices.Sort(names)
		if len(names) == 0 {
			fmt.Println("(no globals defined)")
			return
		}
		for _, name := range names {
			fmt.Printf("%s = %s\n", name, value.Print(globals[name], machine.Heap()))
		}
	case ":locals":
		if lastCompiler == nil {
			fmt.Println("(no locals: nothing compiled yet)")
			return
		}
		names := lastCompiler.LocalNames()
		if len(names) == 0 {
			fmt.Println("(no locals)")
			return
		}
		for _, name := range names {
			fmt.Println(name)
		}
	default:
		fmt.Printf("unknown command %q (try :globals or :locals)\n", line)
	}
}
