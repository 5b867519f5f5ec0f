package redisserver

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/minikv/internal/telemetry/metric"
	"github.com/yndnr/minikv/pkg/resp"
)

// Command errors. All of them are reported to the client as the generic
// error reply and leave the connection open.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrWrongArity     = errors.New("wrong number of arguments")
	ErrSyntax         = errors.New("syntax error")
)

// Store is the storage the dispatcher executes against.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
}

// Command is a parsed client command: one of Ping, Echo, Get or Set.
type Command interface {
	Name() string
}

// Ping replies +PONG.
type Ping struct{}

// Echo replies with Message as a bulk string.
type Echo struct {
	Message string
}

// Get reads Key.
type Get struct {
	Key string
}

// Set writes Key. A zero TTL stores the value without expiry.
type Set struct {
	Key   string
	Value string
	TTL   time.Duration
}

func (Ping) Name() string { return "PING" }
func (Echo) Name() string { return "ECHO" }
func (Get) Name() string  { return "GET" }
func (Set) Name() string  { return "SET" }

// ParseCommand validates a decoded request array and converts it into a
// typed Command. The command name is matched case-insensitively.
func ParseCommand(args [][]byte) (Command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrUnknownCommand)
	}
	for i, a := range args {
		if a == nil {
			return nil, fmt.Errorf("%w: null argument at position %d", ErrSyntax, i)
		}
	}

	name := normalizeCommandName(args[0])
	switch name {
	case "PING":
		if len(args) != 1 {
			return nil, arityError(name)
		}
		return Ping{}, nil
	case "ECHO":
		if len(args) != 2 {
			return nil, arityError(name)
		}
		return Echo{Message: string(args[1])}, nil
	case "GET":
		if len(args) != 2 {
			return nil, arityError(name)
		}
		return Get{Key: string(args[1])}, nil
	case "SET":
		return parseSet(args)
	default:
		return nil, fmt.Errorf("%w '%s'", ErrUnknownCommand, name)
	}
}

// SET key value [PX milliseconds]
func parseSet(args [][]byte) (Command, error) {
	switch len(args) {
	case 3:
		return Set{Key: string(args[1]), Value: string(args[2])}, nil
	case 5:
		if !strings.EqualFold(string(args[3]), "PX") {
			return nil, fmt.Errorf("%w: unsupported SET option %q", ErrSyntax, args[3])
		}
		ms, err := strconv.ParseInt(string(args[4]), 10, 64)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("%w: invalid expire time %q", ErrSyntax, args[4])
		}
		if ms > math.MaxInt64/int64(time.Millisecond) {
			return nil, fmt.Errorf("%w: expire time %d out of range", ErrSyntax, ms)
		}
		return Set{
			Key:   string(args[1]),
			Value: string(args[2]),
			TTL:   time.Duration(ms) * time.Millisecond,
		}, nil
	default:
		return nil, arityError("SET")
	}
}

func arityError(name string) error {
	return fmt.Errorf("%w for '%s' command", ErrWrongArity, name)
}

// normalizeCommandName upper-cases an ASCII command name.
func normalizeCommandName(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// CommandHandler executes commands against a Store.
type CommandHandler struct {
	store   Store
	logger  *slog.Logger
	metrics *metric.Registry
}

// NewCommandHandler creates a new CommandHandler. logger and metrics may be nil.
func NewCommandHandler(store Store, logger *slog.Logger, metrics *metric.Registry) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Handle parses and executes one decoded request array.
func (h *CommandHandler) Handle(args [][]byte) resp.Reply {
	start := time.Now()

	cmd, err := ParseCommand(args)
	if err != nil {
		h.logger.Debug("command rejected", "args", args, "error", err)
		h.metrics.ObserveCommand(metricLabel(args), false, time.Since(start))
		return resp.Err()
	}

	reply := h.Execute(cmd)
	h.metrics.ObserveCommand(cmd.Name(), !reply.IsError(), time.Since(start))
	return reply
}

// Execute runs a parsed command.
func (h *CommandHandler) Execute(cmd Command) resp.Reply {
	switch c := cmd.(type) {
	case Ping:
		return resp.Status("PONG")
	case Echo:
		return resp.Bulk(c.Message)
	case Get:
		value, ok := h.store.Get(c.Key)
		if !ok {
			return resp.NullBulk()
		}
		return resp.Bulk(value)
	case Set:
		h.store.Set(c.Key, c.Value, c.TTL)
		return resp.Status("OK")
	default:
		return resp.Err()
	}
}

// metricLabel keeps the command label set bounded for rejected requests.
func metricLabel(args [][]byte) string {
	if len(args) == 0 || args[0] == nil {
		return "unknown"
	}
	switch name := normalizeCommandName(args[0]); name {
	case "PING", "ECHO", "GET", "SET":
		return name
	default:
		return "unknown"
	}
}
