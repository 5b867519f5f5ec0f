package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/yndnr/minikv/pkg/resp"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter writes a reply to w.
type Formatter interface {
	Format(w io.Writer, r resp.Reply) error
}

// NewFormatter creates a formatter for the given format. Unknown formats
// get the text formatter.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	default:
		return &TextFormatter{}
	}
}

// ParseFormat validates a --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// TextFormatter prints replies the way redis-cli does: status text bare,
// bulk strings quoted, null as (nil) and errors prefixed with (error).
type TextFormatter struct{}

func (f *TextFormatter) Format(w io.Writer, r resp.Reply) error {
	var line string
	switch r.Kind() {
	case resp.KindStatus:
		line = r.Text()
	case resp.KindBulk:
		line = strconv.Quote(r.Text())
	case resp.KindNullBulk:
		line = "(nil)"
	case resp.KindError:
		line = "(error) " + r.Text()
	default:
		return fmt.Errorf("output: cannot format reply kind %s", r.Kind())
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
