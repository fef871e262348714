package main

import (
	"fmt"
	"os"

	"github.com/aescanero/dago-hbs-helpers/internal/command"
	"github.com/aescanero/dago-hbs-helpers/internal/config"
	"github.com/aescanero/dago-hbs-helpers/internal/logging"
	"github.com/mitchellh/cli"
)

// Version is set at build time
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return command.ExitError
	}

	// stdout carries the rendered output, so logs go to stderr
	logger, err := logging.New(cfg.LogLevel, "stderr")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return command.ExitError
	}
	defer func() { _ = logger.Sync() }()

	meta := &command.Meta{
		Ui: &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		},
		Logger: logger,
		Stdin:  os.Stdin,
	}

	c := cli.NewCLI("hbs-render", Version)
	c.Args = args
	c.Commands = command.Commands(meta)

	code, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %v\n", err)
		return command.ExitError
	}
	return code
}
