package resp

import "strconv"

// Encode renders v in RESP wire format. It is the inverse of Decode for
// every non-null variant.
func Encode(v Value) []byte {
	switch v.Type {
	case SimpleString:
		return encodeLine('+', v.Str)
	case Error:
		return encodeLine('-', v.Str)
	case Integer:
		return encodeLine(':', strconv.FormatInt(v.Int, 10))
	case BulkString:
		return encodeBulk(v.Bulk)
	case NullBulk:
		return []byte("$-1\r\n")
	case NullArray:
		return []byte("*-1\r\n")
	case Array:
		return encodeArray(v.Array)
	default:
		return nil
	}
}

func encodeLine(tag byte, s string) []byte {
	out := make([]byte, 0, len(s)+3)
	out = append(out, tag)
	out = append(out, s...)
	out = append(out, '\r', '\n')
	return out
}

func encodeBulk(b []byte) []byte {
	header := "$" + strconv.Itoa(len(b)) + "\r\n"
	out := make([]byte, 0, len(header)+len(b)+2)
	out = append(out, header...)
	out = append(out, b...)
	out = append(out, '\r', '\n')
	return out
}

func encodeArray(items []Value) []byte {
	header := "*" + strconv.Itoa(len(items)) + "\r\n"
	out := make([]byte, 0, len(header))
	out = append(out, header...)
	for _, item := range items {
		out = append(out, Encode(item)...)
	}
	return out
}

// EncodeSimpleString is a convenience wrapper for the common reply shape.
func EncodeSimpleString(s string) []byte { return Encode(NewSimpleString(s)) }

// EncodeError is a convenience wrapper for the common reply shape.
func EncodeError(s string) []byte { return Encode(NewError(s)) }

// EncodeBulkString is a convenience wrapper for the common reply shape.
func EncodeBulkString(s string) []byte { return Encode(NewBulkString([]byte(s))) }

// EncodeNullBulk is a convenience wrapper for the common reply shape.
func EncodeNullBulk() []byte { return Encode(NewNullBulk()) }
