package output

import (
	"encoding/json"
	"io"

	"github.com/yndnr/minikv/pkg/resp"
)

// JSONFormatter formats replies as JSON objects.
type JSONFormatter struct{}

type jsonReply struct {
	Kind  string  `json:"kind"`
	Value *string `json:"value"`
}

// Format writes {"kind": ..., "value": ...}. value is null for a null bulk reply.
func (f *JSONFormatter) Format(w io.Writer, r resp.Reply) error {
	out := jsonReply{Kind: r.Kind().String()}
	if r.Kind() != resp.KindNullBulk {
		text := r.Text()
		out.Value = &text
	}
	return json.NewEncoder(w).Encode(out)
}
