package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/yiblet/cliphist/internal/cli"
)

func main() {
	// Parse command-line arguments
	var args cli.Args
	parser := arg.MustParse(&args)

	// Default behavior: open the picker
	if !args.HasCommand() {
		args.UI = &cli.UICmd{}
	}

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = cliHandler.Execute(&args)
	if cerr := cliHandler.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// If it's an argument validation error, show usage
		if args.Validate() != nil {
			fmt.Fprintln(os.Stderr)
			parser.WriteUsage(os.Stderr)
		}
		os.Exit(1)
	}
}
