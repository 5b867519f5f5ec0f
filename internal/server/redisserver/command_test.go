package redisserver

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/minikv/internal/storage/memory"
	"github.com/yndnr/minikv/internal/telemetry/metric"
	"github.com/yndnr/minikv/pkg/resp"
)

func args(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = append([]byte{}, s...)
	}
	return out
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args [][]byte
		want Command
	}{
		{"ping", args("PING"), Ping{}},
		{"ping lower case", args("ping"), Ping{}},
		{"echo", args("ECHO", "hi"), Echo{Message: "hi"}},
		{"echo empty", args("echo", ""), Echo{Message: ""}},
		{"get", args("GET", "k"), Get{Key: "k"}},
		{"set", args("SET", "k", "v"), Set{Key: "k", Value: "v"}},
		{"set mixed case", args("sEt", "k", "v"), Set{Key: "k", Value: "v"}},
		{"set px", args("SET", "k", "v", "PX", "100"), Set{Key: "k", Value: "v", TTL: 100 * time.Millisecond}},
		{"set px lower case", args("set", "k", "v", "px", "2500"), Set{Key: "k", Value: "v", TTL: 2500 * time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args [][]byte
		want error
	}{
		{"empty", [][]byte{}, ErrUnknownCommand},
		{"nil", nil, ErrUnknownCommand},
		{"unknown", args("FLUSHALL"), ErrUnknownCommand},
		{"ping with arg", args("PING", "x"), ErrWrongArity},
		{"echo no arg", args("ECHO"), ErrWrongArity},
		{"echo two args", args("ECHO", "a", "b"), ErrWrongArity},
		{"get no key", args("GET"), ErrWrongArity},
		{"get two keys", args("GET", "a", "b"), ErrWrongArity},
		{"set no value", args("SET", "k"), ErrWrongArity},
		{"set four args", args("SET", "k", "v", "PX"), ErrWrongArity},
		{"set six args", args("SET", "k", "v", "PX", "1", "NX"), ErrWrongArity},
		{"set wrong marker", args("SET", "k", "v", "EX", "10"), ErrSyntax},
		{"set zero ttl", args("SET", "k", "v", "PX", "0"), ErrSyntax},
		{"set negative ttl", args("SET", "k", "v", "PX", "-5"), ErrSyntax},
		{"set non-integer ttl", args("SET", "k", "v", "PX", "1.5"), ErrSyntax},
		{"set ttl overflow", args("SET", "k", "v", "PX", "99999999999999999999"), ErrSyntax},
		{"set huge ttl", args("SET", "k", "v", "PX", "9223372036854775807"), ErrSyntax},
		{"null name", [][]byte{nil}, ErrSyntax},
		{"null key", [][]byte{[]byte("GET"), nil}, ErrSyntax},
		{"null value", [][]byte{[]byte("SET"), []byte("k"), nil}, ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.args)
			assert.Nil(t, cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCommand_Name(t *testing.T) {
	assert.Equal(t, "PING", Ping{}.Name())
	assert.Equal(t, "ECHO", Echo{}.Name())
	assert.Equal(t, "GET", Get{}.Name())
	assert.Equal(t, "SET", Set{}.Name())
}

func TestCommandHandler_Execute(t *testing.T) {
	store := memory.New()
	h := NewCommandHandler(store, nil, nil)

	assert.Equal(t, resp.Status("PONG"), h.Execute(Ping{}))
	assert.Equal(t, resp.Bulk("hi"), h.Execute(Echo{Message: "hi"}))
	assert.Equal(t, resp.NullBulk(), h.Execute(Get{Key: "zz"}))
	assert.Equal(t, resp.Status("OK"), h.Execute(Set{Key: "k", Value: "v"}))
	assert.Equal(t, resp.Bulk("v"), h.Execute(Get{Key: "k"}))
}

func TestCommandHandler_Execute_EmptyValue(t *testing.T) {
	h := NewCommandHandler(memory.New(), nil, nil)

	require.Equal(t, resp.Status("OK"), h.Execute(Set{Key: "k", Value: ""}))
	reply := h.Execute(Get{Key: "k"})
	assert.Equal(t, resp.KindBulk, reply.Kind())
	assert.Equal(t, "$0\r\n\r\n", string(reply.AppendTo(nil)))
}

func TestCommandHandler_Handle_TTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := memory.New(memory.WithClock(func() time.Time { return now }))
	h := NewCommandHandler(store, nil, nil)

	require.Equal(t, resp.Status("OK"), h.Handle(args("SET", "k", "v", "PX", "100")))

	now = now.Add(50 * time.Millisecond)
	assert.Equal(t, resp.Bulk("v"), h.Handle(args("GET", "k")))

	now = now.Add(100 * time.Millisecond)
	assert.Equal(t, resp.NullBulk(), h.Handle(args("GET", "k")))
	assert.Equal(t, 0, store.Len())
}

func TestCommandHandler_Handle_Errors(t *testing.T) {
	store := memory.New()
	h := NewCommandHandler(store, nil, nil)

	for _, a := range [][][]byte{
		{},
		args("NOPE"),
		args("SET", "k"),
		args("SET", "k", "v", "XX", "10"),
		{[]byte("ECHO"), nil},
	} {
		assert.Equal(t, resp.Err(), h.Handle(a))
	}
	assert.Equal(t, 0, store.Len(), "rejected commands must not touch the store")
}

func TestCommandHandler_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	h := NewCommandHandler(memory.New(), nil, reg)

	h.Handle(args("PING"))
	h.Handle(args("PING"))
	h.Handle(args("SET", "k", "v", "PX", "abc"))
	h.Handle(args("BOGUS"))

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.CommandsTotal.WithLabelValues("PING", metric.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CommandsTotal.WithLabelValues("SET", metric.ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CommandsTotal.WithLabelValues("unknown", metric.ResultError)))
}

func TestNormalizeCommandName(t *testing.T) {
	assert.Equal(t, "GET", normalizeCommandName([]byte("get")))
	assert.Equal(t, "SET", normalizeCommandName([]byte("SeT")))
	assert.Equal(t, "", normalizeCommandName([]byte{}))
	assert.Equal(t, "X-1", normalizeCommandName([]byte("x-1")))
}
