package output

import (
	"bytes"
	"testing"

	"github.com/yndnr/minikv/pkg/resp"
)

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("NewFormatter(json) should return *JSONFormatter")
	}
	if _, ok := NewFormatter(FormatText).(*TextFormatter); !ok {
		t.Error("NewFormatter(text) should return *TextFormatter")
	}
	if _, ok := NewFormatter("table").(*TextFormatter); !ok {
		t.Error("NewFormatter(unknown) should fall back to *TextFormatter")
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "json"} {
		if f, err := ParseFormat(s); err != nil || string(f) != s {
			t.Errorf("ParseFormat(%q) = %q, %v", s, f, err)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("ParseFormat(yaml) should fail")
	}
}

func TestTextFormatter_Format(t *testing.T) {
	tests := []struct {
		name  string
		reply resp.Reply
		want  string
	}{
		{"status", resp.Status("PONG"), "PONG\n"},
		{"bulk", resp.Bulk("hello"), "\"hello\"\n"},
		{"empty bulk", resp.Bulk(""), "\"\"\n"},
		{"bulk with newline", resp.Bulk("a\nb"), "\"a\\nb\"\n"},
		{"null", resp.NullBulk(), "(nil)\n"},
		{"error", resp.Err(), "(error) ERR\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&TextFormatter{}).Format(&buf, tt.reply); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestTextFormatter_ZeroReply(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextFormatter{}).Format(&buf, resp.Reply{}); err == nil {
		t.Error("Format() of a zero Reply should fail")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	tests := []struct {
		name  string
		reply resp.Reply
		want  string
	}{
		{"status", resp.Status("OK"), `{"kind":"status","value":"OK"}` + "\n"},
		{"bulk", resp.Bulk("v"), `{"kind":"bulk","value":"v"}` + "\n"},
		{"null", resp.NullBulk(), `{"kind":"null","value":null}` + "\n"},
		{"error", resp.Err(), `{"kind":"error","value":"ERR"}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&JSONFormatter{}).Format(&buf, tt.reply); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
