package resp

import (
	"bytes"
	"strconv"
)

// Decode parses a single RESP frame starting at buf[0]. On success it
// returns the frame and the number of bytes consumed. It returns
// ErrIncomplete if buf holds a valid prefix of a frame (more bytes
// needed) and ErrMalformed/ErrOversize on frames that can never be
// completed. In both error cases no bytes are considered consumed.
func Decode(buf []byte) (Value, int, error) {
	v, n, err := decodeAt(buf, 0)
	if err != nil {
		return Value{}, 0, err
	}
	return v, n, nil
}

// decodeAt parses one frame starting at offset pos in buf, returning the
// value and the offset immediately after it.
func decodeAt(buf []byte, pos int) (Value, int, error) {
	if pos >= len(buf) {
		return Value{}, pos, ErrIncomplete
	}

	switch buf[pos] {
	case '+':
		line, next, err := readLine(buf, pos+1)
		if err != nil {
			return Value{}, pos, err
		}
		return NewSimpleString(string(line)), next, nil

	case '-':
		line, next, err := readLine(buf, pos+1)
		if err != nil {
			return Value{}, pos, err
		}
		return NewError(string(line)), next, nil

	case ':':
		line, next, err := readLine(buf, pos+1)
		if err != nil {
			return Value{}, pos, err
		}
		i, err := parseStrictInt(line)
		if err != nil {
			return Value{}, pos, ErrMalformed
		}
		return NewInteger(i), next, nil

	case '$':
		return decodeBulk(buf, pos)

	case '*':
		return decodeArray(buf, pos)

	default:
		return Value{}, pos, ErrMalformed
	}
}

// readLine returns the bytes up to (not including) the next CRLF found
// at or after start, and the offset immediately after that CRLF.
func readLine(buf []byte, start int) ([]byte, int, error) {
	if start > len(buf) {
		return nil, 0, ErrIncomplete
	}
	idx := bytes.Index(buf[start:], []byte("\r\n"))
	if idx == -1 {
		return nil, 0, ErrIncomplete
	}
	return buf[start : start+idx], start + idx + 2, nil
}

// parseStrictInt accepts an optional leading '-' followed by decimal
// digits only; no leading '+', no whitespace.
func parseStrictInt(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, ErrMalformed
	}
	neg := false
	i := 0
	if b[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(b) {
		return 0, ErrMalformed
	}
	for _, c := range b[i:] {
		if c < '0' || c > '9' {
			return 0, ErrMalformed
		}
	}
	n, err := strconv.ParseInt(string(b[i:]), 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	if neg {
		n = -n
	}
	return n, nil
}

func decodeBulk(buf []byte, pos int) (Value, int, error) {
	line, next, err := readLine(buf, pos+1)
	if err != nil {
		return Value{}, pos, err
	}
	length, err := parseStrictInt(line)
	if err != nil {
		return Value{}, pos, ErrMalformed
	}
	if length == -1 {
		return NewNullBulk(), next, nil
	}
	if length < -1 {
		return Value{}, pos, ErrMalformed
	}
	if length > maxFrameSize {
		return Value{}, pos, ErrOversize
	}
	end := next + int(length)
	if end+2 > len(buf) {
		return Value{}, pos, ErrIncomplete
	}
	if buf[end] != '\r' || buf[end+1] != '\n' {
		return Value{}, pos, ErrMalformed
	}
	data := make([]byte, length)
	copy(data, buf[next:end])
	return NewBulkString(data), end + 2, nil
}

func decodeArray(buf []byte, pos int) (Value, int, error) {
	line, next, err := readLine(buf, pos+1)
	if err != nil {
		return Value{}, pos, err
	}
	count, err := parseStrictInt(line)
	if err != nil {
		return Value{}, pos, ErrMalformed
	}
	if count == -1 {
		return NewNullArray(), next, nil
	}
	if count < -1 {
		return Value{}, pos, ErrMalformed
	}
	if count > maxFrameSize {
		return Value{}, pos, ErrOversize
	}
	items := make([]Value, 0, count)
	cur := next
	for i := int64(0); i < count; i++ {
		v, after, err := decodeAt(buf, cur)
		if err != nil {
			return Value{}, pos, err
		}
		items = append(items, v)
		cur = after
	}
	return NewArray(items), cur, nil
}

// DecodeRDBBulk parses the "$<len>\r\n<len bytes>" framing the master
// sends for the RDB snapshot right after FULLRESYNC, which — unlike a
// normal bulk string — has no trailing CRLF. It returns the payload and
// the offset immediately after it.
func DecodeRDBBulk(buf []byte) ([]byte, int, error) {
	if len(buf) == 0 || buf[0] != '$' {
		return nil, 0, ErrMalformed
	}
	line, next, err := readLine(buf, 1)
	if err != nil {
		return nil, 0, err
	}
	length, err := parseStrictInt(line)
	if err != nil || length < 0 {
		return nil, 0, ErrMalformed
	}
	if length > maxFrameSize {
		return nil, 0, ErrOversize
	}
	end := next + int(length)
	if end > len(buf) {
		return nil, 0, ErrIncomplete
	}
	payload := make([]byte, length)
	copy(payload, buf[next:end])
	return payload, end, nil
}
