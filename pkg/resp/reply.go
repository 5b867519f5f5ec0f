package resp

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
)

// Kind identifies the shape of a Reply.
type Kind uint8

const (
	KindStatus Kind = iota + 1
	KindBulk
	KindNullBulk
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindBulk:
		return "bulk"
	case KindNullBulk:
		return "null"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Reply is a server reply. The zero value is not a valid reply; use the
// constructors.
type Reply struct {
	kind Kind
	text string
}

// Status returns a simple status reply (+text).
func Status(text string) Reply {
	return Reply{kind: KindStatus, text: text}
}

// Bulk returns a bulk string reply.
func Bulk(text string) Reply {
	return Reply{kind: KindBulk, text: text}
}

// NullBulk returns the null bulk string reply ($-1).
func NullBulk() Reply {
	return Reply{kind: KindNullBulk}
}

// Err returns the generic error reply (-ERR).
func Err() Reply {
	return Reply{kind: KindError, text: "ERR"}
}

// Kind returns the reply shape.
func (r Reply) Kind() Kind {
	return r.kind
}

// Text returns the status text, bulk payload or error line.
// It is empty for a null bulk string.
func (r Reply) Text() string {
	return r.text
}

// IsError reports whether r is an error reply.
func (r Reply) IsError() bool {
	return r.kind == KindError
}

// AppendTo appends the wire form of r to dst.
func (r Reply) AppendTo(dst []byte) []byte {
	switch r.kind {
	case KindStatus:
		dst = append(dst, '+')
		dst = append(dst, r.text...)
		return append(dst, crlf...)
	case KindBulk:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(r.text)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, r.text...)
		return append(dst, crlf...)
	case KindNullBulk:
		return append(dst, "$-1\r\n"...)
	default:
		dst = append(dst, '-')
		if r.text == "" {
			dst = append(dst, "ERR"...)
		} else {
			dst = append(dst, r.text...)
		}
		return append(dst, crlf...)
	}
}

// WriteReply buffers the wire form of r on w. The caller flushes.
func WriteReply(w *bufio.Writer, r Reply) error {
	_, err := w.Write(r.AppendTo(w.AvailableBuffer()))
	return err
}

// DecodeReply decodes one reply from the front of buf and returns it with
// the offset of the first byte after it.
func DecodeReply(buf []byte) (Reply, int, error) {
	if len(buf) == 0 {
		return Reply{}, 0, ErrIncomplete
	}

	switch buf[0] {
	case '+', '-':
		idx := bytes.Index(buf, crlf)
		if idx < 0 {
			return Reply{}, 0, fmt.Errorf("%w: missing CRLF", ErrIncomplete)
		}
		kind := KindStatus
		if buf[0] == '-' {
			kind = KindError
		}
		return Reply{kind: kind, text: string(buf[1:idx])}, idx + len(crlf), nil
	case '$':
		b, next, err := decodeBulk(buf, 0)
		if err != nil {
			return Reply{}, 0, err
		}
		if b == nil {
			return NullBulk(), next, nil
		}
		return Bulk(string(b)), next, nil
	default:
		return Reply{}, 0, fmt.Errorf("%w: unsupported reply type %q", ErrProtocol, buf[0])
	}
}
