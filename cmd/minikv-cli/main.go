package main

import (
	"errors"
	"os"

	"github.com/yndnr/minikv/internal/cli/command"
)

func main() {
	app := command.App()

	err := app.Run(os.Args)
	switch {
	case err == nil:
	case errors.Is(err, command.ErrReplyError):
		// Already printed as "(error) ...".
		os.Exit(1)
	case errors.Is(err, command.ErrUsage):
		command.PrintError(os.Stderr, "%v", err)
		os.Exit(2)
	default:
		command.PrintError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
