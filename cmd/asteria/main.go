// Command asteria runs an Asteria script, or drops into a REPL when
// invoked with no script argument on a terminal.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"asteria"
	"asteria/internal/global"
	"asteria/internal/value"
)

const (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var infoFlag bool
	var script string
	for _, a := range args {
		switch {
		case a == "-info":
			infoFlag = true
		case strings.HasPrefix(a, "-"):
			fmt.Fprintf(os.Stderr, "asteria: unrecognised flag %q\n", a)
			return exitUsage
		default:
			script = a
		}
	}

	gl := asteria.NewGlobal(global.APILatest)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gl.Env().SetInterruptContext(ctx)
	watchInterrupt(ctx, cancel)

	if script == "" {
		if isatty.IsTerminal(os.Stdout.Fd()) {
			return runREPL(gl)
		}
		fmt.Fprintln(os.Stderr, "asteria: no script given and stdout is not a terminal")
		return exitUsage
	}

	program, err := gl.LoadFile(script)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return exitFailure
	}
	if infoFlag {
		info, statErr := os.Stat(script)
		if statErr == nil {
			fmt.Fprintf(os.Stderr, "asteria: %s (%s)\n", script, humanize.Bytes(uint64(info.Size())))
		}
	}

	result, ferr := program.Execute(nil)
	if ferr != nil {
		fmt.Fprintln(os.Stderr, ferr.Error())
		return exitFailure
	}
	fmt.Println(result.Render(false))
	return exitSuccess
}

// watchInterrupt cancels ctx the first time SIGINT arrives, letting the
// executor's per-statement interrupt check raise a clean `interrupted`
// failure instead of the process dying mid-mutation.
func watchInterrupt(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	var g errgroup.Group
	g.Go(func() error {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		return nil
	})
}

func runREPL(gl *asteria.Global) int {
	fmt.Println("Asteria REPL | type 'exit' to quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		program, err := gl.LoadString("<repl>", line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}
		result, ferr := program.Execute(nil)
		if ferr != nil {
			fmt.Fprintln(os.Stderr, ferr.Error())
			continue
		}
		if result.Kind() != value.Null {
			fmt.Println(result.Render(false))
		}
	}
	return exitSuccess
}
