package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/sadopc/planline/internal/cli"
	"github.com/sadopc/planline/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	paths, err := config.DefaultPaths()
	if err != nil {
		return err
	}

	app := cli.NewApp(paths)
	defer app.Close()
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
