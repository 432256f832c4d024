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

func main() {
	var args cli.Args
	parser := arg.MustParse(&args)

	// No subcommand: open the picker on history
	if !args.HasCommand() {
		args.Pick = &cli.PickCmd{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cliHandler.Execute(ctx, &args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// Show usage for argument validation errors
		if args.Validate() != nil {
			fmt.Fprintln(os.Stderr)
			parser.WriteUsage(os.Stderr)
		}
		stop()
		os.Exit(1)
	}
}
