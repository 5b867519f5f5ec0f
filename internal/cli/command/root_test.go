package command

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/minikv/internal/server/redisserver"
	"github.com/yndnr/minikv/internal/storage/memory"
)

func startServer(t *testing.T) string {
	t.Helper()
	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	srv := redisserver.New(cfg, memory.New(), nil, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// run executes the CLI with args against addr and returns its stdout.
func run(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &out

	full := append([]string{"minikv-cli", "--server", addr}, args...)
	err := app.Run(full)
	return out.String(), err
}

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "minikv-cli" {
		t.Errorf("Name = %q, want %q", app.Name, "minikv-cli")
	}
	if app.Version == "" {
		t.Error("Version should not be empty")
	}

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, name := range []string{"ping", "echo", "get", "set"} {
		if !names[name] {
			t.Errorf("missing command: %s", name)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	names := make(map[string]bool)
	for _, f := range globalFlags() {
		names[f.Names()[0]] = true
	}
	for _, name := range []string{"server", "timeout", "output"} {
		if !names[name] {
			t.Errorf("missing global flag: %s", name)
		}
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, "dial %s", "127.0.0.1:1")
	if got := buf.String(); got != "error: dial 127.0.0.1:1\n" {
		t.Errorf("PrintError() wrote %q", got)
	}
}

func TestApp_InvalidOutputFormat(t *testing.T) {
	if _, err := run(t, "127.0.0.1:1", "--output", "yaml", "ping"); err == nil {
		t.Error("unknown --output should fail")
	}
}

func TestApp_ConnectionRefused(t *testing.T) {
	_, err := run(t, "127.0.0.1:1", "--timeout", "200ms", "ping")
	if err == nil {
		t.Fatal("ping against a closed port should fail")
	}
	if errors.Is(err, ErrReplyError) {
		t.Errorf("transport failure reported as reply error: %v", err)
	}
}

func TestApp_UsageErrors(t *testing.T) {
	addr := startServer(t)

	tests := [][]string{
		{"ping", "extra"},
		{"echo"},
		{"get"},
		{"get", "a", "b"},
		{"set", "k"},
		{"set", "k", "v", "--px", "soon"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if _, err := run(t, addr, args...); !errors.Is(err, ErrUsage) {
				t.Errorf("error = %v, want ErrUsage", err)
			}
		})
	}
}
