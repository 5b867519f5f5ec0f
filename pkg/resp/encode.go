package resp

import "strconv"

// AppendCommand appends args encoded as a request array to dst.
// A nil element is encoded as a null bulk string.
func AppendCommand(dst []byte, args ...[]byte) []byte {
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(len(args)), 10)
	dst = append(dst, crlf...)
	for _, arg := range args {
		dst = appendBulk(dst, arg)
	}
	return dst
}

// AppendCommandStrings is AppendCommand for string arguments.
func AppendCommandStrings(dst []byte, args ...string) []byte {
	raw := make([][]byte, len(args))
	for i, a := range args {
		raw[i] = append([]byte{}, a...)
	}
	return AppendCommand(dst, raw...)
}

func appendBulk(dst, b []byte) []byte {
	if b == nil {
		return append(dst, "$-1\r\n"...)
	}
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(b)), 10)
	dst = append(dst, crlf...)
	dst = append(dst, b...)
	return append(dst, crlf...)
}
