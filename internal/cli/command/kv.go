package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/minikv/internal/cli/connection"
	"github.com/yndnr/minikv/internal/cli/output"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server is answering",
		Action: func(c *cli.Context) error {
			if c.NArg() != 0 {
				return usageError(c)
			}
			return do(c, "PING")
		},
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Have the server echo a message",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError(c)
			}
			return do(c, "ECHO", c.Args().First())
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the value of a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError(c)
			}
			return do(c, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Write the value of a key",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "px",
				Usage: "expire the key after this many milliseconds",
			},
		},
		Action: func(c *cli.Context) error {
			rest, px, hasPX, err := splitTrailingPX(c.Args().Slice())
			if err != nil {
				return err
			}
			if len(rest) != 2 {
				return usageError(c)
			}
			if c.IsSet("px") {
				px, hasPX = c.Int64("px"), true
			}

			args := []string{"SET", rest[0], rest[1]}
			if hasPX {
				args = append(args, "PX", strconv.FormatInt(px, 10))
			}
			return do(c, args...)
		},
	}
}

// do sends one request and prints the reply.
func do(c *cli.Context, args ...string) error {
	flags := ParseGlobalFlags(c)

	client, err := connection.Dial(c.Context, flags.Server, flags.Timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Do(c.Context, args...)
	if err != nil {
		return err
	}

	if err := output.NewFormatter(flags.Output).Format(c.App.Writer, reply); err != nil {
		return err
	}
	if reply.IsError() {
		return ErrReplyError
	}
	return nil
}

// splitTrailingPX accepts "--px N" or "--px=N" after the positional
// arguments, which the flag parser stops reading at the first argument.
func splitTrailingPX(args []string) (rest []string, px int64, ok bool, err error) {
	n := len(args)
	var raw string
	switch {
	case n >= 2 && (args[n-2] == "--px" || args[n-2] == "-px"):
		raw, rest = args[n-1], args[:n-2]
	case n >= 1 && strings.HasPrefix(args[n-1], "--px="):
		raw, rest = strings.TrimPrefix(args[n-1], "--px="), args[:n-1]
	default:
		return args, 0, false, nil
	}
	px, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, 0, false, fmt.Errorf("%w: invalid --px value %q", ErrUsage, raw)
	}
	return rest, px, true, nil
}

func usageError(c *cli.Context) error {
	return fmt.Errorf("%w: %s %s %s", ErrUsage, c.App.Name, c.Command.Name, c.Command.ArgsUsage)
}
