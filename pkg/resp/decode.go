package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Protocol limits to prevent DoS attacks.
const (
	// MaxArrayLen limits the number of elements in a request array.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk string (512KB).
	MaxBulkLen = 512 * 1024

	// maxHeaderLen bounds "*<n>" and "$<n>" header lines.
	maxHeaderLen = 32
)

var (
	ErrProtocol      = errors.New("resp: protocol error")
	ErrIncomplete    = fmt.Errorf("%w: incomplete frame", ErrProtocol)
	ErrLimitExceeded = fmt.Errorf("%w: limit exceeded", ErrProtocol)
)

var crlf = []byte("\r\n")

// DecodeCommand decodes one request array from the front of buf.
//
// It returns the decoded elements (nil for a null bulk string) and the
// offset of the first byte after the array. An empty array decodes to an
// empty, non-nil slice.
func DecodeCommand(buf []byte) ([][]byte, int, error) {
	if len(buf) == 0 {
		return nil, 0, ErrIncomplete
	}
	if buf[0] != '*' {
		return nil, 0, fmt.Errorf("%w: expected array, got %q", ErrProtocol, buf[0])
	}

	line, pos, err := readLine(buf, 1)
	if err != nil {
		return nil, 0, err
	}
	n, ok := parseLength(line, false)
	if !ok {
		return nil, 0, fmt.Errorf("%w: invalid array length %q", ErrProtocol, line)
	}
	if n > MaxArrayLen {
		return nil, 0, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, n, MaxArrayLen)
	}

	args := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if pos >= len(buf) {
			return nil, 0, fmt.Errorf("%w: array declares %d elements, got %d", ErrIncomplete, n, i)
		}
		arg, next, err := decodeBulk(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		args = append(args, arg)
		pos = next
	}
	return args, pos, nil
}

// decodeBulk decodes the bulk string starting at buf[pos]. The payload is
// copied so callers may reuse buf.
func decodeBulk(buf []byte, pos int) ([]byte, int, error) {
	if buf[pos] != '$' {
		return nil, 0, fmt.Errorf("%w: expected bulk string, got %q", ErrProtocol, buf[pos])
	}

	line, start, err := readLine(buf, pos+1)
	if err != nil {
		return nil, 0, err
	}
	n, ok := parseLength(line, true)
	if !ok {
		return nil, 0, fmt.Errorf("%w: invalid bulk length %q", ErrProtocol, line)
	}
	if n == -1 {
		return nil, start, nil
	}
	if n > MaxBulkLen {
		return nil, 0, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, n, MaxBulkLen)
	}

	end := start + n
	if end+len(crlf) > len(buf) {
		return nil, 0, fmt.Errorf("%w: bulk payload short by %d bytes", ErrIncomplete, end+len(crlf)-len(buf))
	}
	if !bytes.Equal(buf[end:end+len(crlf)], crlf) {
		return nil, 0, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}

	out := make([]byte, n)
	copy(out, buf[start:end])
	return out, end + len(crlf), nil
}

// parseLength parses a length header. Only plain base-10 digits are
// accepted, plus exactly "-1" when allowNull is set.
func parseLength(line []byte, allowNull bool) (int, bool) {
	if allowNull && string(line) == "-1" {
		return -1, true
	}
	if len(line) == 0 {
		return 0, false
	}
	for _, c := range line {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(string(line))
	return n, err == nil
}

// readLine returns the bytes between buf[pos] and the next CRLF, and the
// offset just past that CRLF.
func readLine(buf []byte, pos int) ([]byte, int, error) {
	if pos > len(buf) {
		return nil, 0, ErrIncomplete
	}
	idx := bytes.Index(buf[pos:], crlf)
	if idx < 0 {
		if len(buf)-pos > maxHeaderLen {
			return nil, 0, fmt.Errorf("%w: header exceeds %d bytes", ErrLimitExceeded, maxHeaderLen)
		}
		return nil, 0, fmt.Errorf("%w: missing CRLF", ErrIncomplete)
	}
	if idx > maxHeaderLen {
		return nil, 0, fmt.Errorf("%w: header exceeds %d bytes", ErrLimitExceeded, maxHeaderLen)
	}
	return buf[pos : pos+idx], pos + idx + len(crlf), nil
}
