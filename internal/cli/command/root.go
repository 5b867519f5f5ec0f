package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/minikv/internal/cli/connection"
	"github.com/yndnr/minikv/internal/cli/output"
	"github.com/yndnr/minikv/internal/infra/buildinfo"
)

// DefaultServer is the address used when --server is not given.
const DefaultServer = "127.0.0.1:6379"

// ErrReplyError is returned by a command whose reply was a server error.
// The reply has already been printed; callers only set the exit status.
var ErrReplyError = errors.New("server replied with an error")

// ErrUsage reports wrong command-line arguments.
var ErrUsage = errors.New("usage")

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "minikv-cli",
		Usage:   "command-line client for minikv",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "minikv server address",
			EnvVars: []string{"MINIKV_SERVER"},
			Value:   DefaultServer,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "dial and request timeout",
			Value:   connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, json",
			Value:   string(output.FormatText),
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Timeout time.Duration
	Output  output.Format
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Timeout: c.Duration("timeout"),
		Output:  output.Format(c.String("output")),
	}
}

// PrintError prints an error message to w.
func PrintError(w io.Writer, format string, args ...any) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "error: "+format+"\n", args...)
}
