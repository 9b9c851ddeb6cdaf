// Package main implements the spellcheck command, which checks text files
// against word-list dictionaries using the background spellcheck engine.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCLI(os.Stdin, os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "spellcheck: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newCLI builds the command tree. Input and output streams are injected so
// commands can be exercised in tests.
func newCLI(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "spellcheck",
		Usage:     "check spelling against word-list dictionaries",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
			},
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "dictionary language tag, such as en-US",
			},
			&cli.StringFlag{
				Name:    "dict-path",
				Aliases: []string{"d"},
				Usage:   "directory searched for dictionary files",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve /metrics and /health on this address while running",
			},
		},
		Commands: []*cli.Command{
			checkCommand(),
			suggestCommand(),
			dictionariesCommand(),
		},
	}
}
