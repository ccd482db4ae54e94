// Command minijs runs scripts or an interactive REPL against this module's
// embeddable evaluator (spec.md §6.1 "Ambient stack: CLI (cmd/minijs) as
// REPL/script-runner"). Grounded on the teacher's cmd/io/main.go: a
// bufio.Scanner-driven prompt loop that prints an exception's stack on a
// throw and the completion value's string form otherwise.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/zephyrtronium/minijs/builtin"
	"github.com/zephyrtronium/minijs/vm"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	gc := flag.Bool("gc", false, "run a collector pass and log its result after each REPL input line that evaluates without error")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "minijs: loading config:", err)
		os.Exit(1)
	}
	if *gc {
		cfg.GCVerbose = true
	}

	ctx := vm.NewContext()
	builtin.Install(ctx)

	if flag.NArg() > 0 {
		runFile(ctx, flag.Arg(0))
		return
	}
	repl(ctx, cfg)
}

// runFile evaluates a script file as a program and exits nonzero on an
// uncaught exception, the batch-mode half of spec.md §6's embedding API.
func runFile(ctx *vm.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "minijs:", err)
		os.Exit(1)
	}
	_, err = ctx.EvalComplex(string(data), vm.WithFile(path))
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

// repl runs the interactive prompt loop. isTerminal gates whether the PS1
// prompt is printed at all (PS2 is not printed by this loop), mirroring the teacher's unconditional fmt.Print(p)
// but skipping the noise when stdin is piped rather than a tty — checked
// through golang.org/x/sys/unix the way a raw-mode line editor would need
// to before touching termios (spec.md §6.2 domain-stack wiring for
// golang.org/x/sys: "cmd/minijs REPL raw-mode terminal").
func repl(ctx *vm.Context, cfg config) {
	interactive := isTerminal(os.Stdin.Fd())
	stdin := bufio.NewScanner(os.Stdin)
	line := 1
	for {
		if interactive {
			fmt.Print(cfg.PS1)
		}
		if !stdin.Scan() {
			break
		}
		src := stdin.Text()
		v, err := ctx.EvalComplex(src, vm.WithFile("<stdin>"), vm.WithPos(line, 1))
		line++
		if err != nil {
			printError(err)
			continue
		}
		fmt.Println(v.String())
		if cfg.GCVerbose {
			freed := ctx.Collect()
			fmt.Fprintf(os.Stderr, "; gc: freed %d, live %d\n", freed, ctx.GC.Live())
		}
	}
	if err := stdin.Err(); err != nil {
		fmt.Fprintln(os.Stderr, stdin.Err())
	}
}

func printError(err error) {
	if se, ok := err.(*vm.ScriptError); ok {
		fmt.Fprintln(os.Stderr, "uncaught exception:", se.Error())
		return
	}
	fmt.Fprintln(os.Stderr, "minijs:", err)
}

// isTerminal reports whether fd refers to a tty, via the same
// ioctl(TCGETS) probe a raw-mode line editor needs before it can flip
// termios flags.
func isTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}
