// Command clipd records clipboard changes into the clippy history until it
// receives SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"

	"github.com/yiblet/clippy/internal/cli"
)

type clipdArgs struct {
	Home     *string `arg:"--home,env:CLIPPY_HOME" help:"Directory holding the clippy files (default: user home)"`
	Verbose  bool    `arg:"-v,--verbose" help:"Enable debug logging"`
	LogLevel *string `arg:"--log-level,env:CLIPPY_LOG_LEVEL" help:"Log level: debug, info, warn or error"`
}

func (clipdArgs) Description() string {
	return "clipd - clipboard history daemon"
}

func (clipdArgs) Version() string {
	return "clipd 0.1.0"
}

func main() {
	var args clipdArgs
	arg.MustParse(&args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliArgs := &cli.Args{
		Home:     args.Home,
		Verbose:  args.Verbose,
		LogLevel: args.LogLevel,
		Daemon:   &cli.DaemonCmd{},
	}
	cliHandler, err := cli.NewWithArgs(cliArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cliHandler.Execute(ctx, cliArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
