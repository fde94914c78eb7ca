// Package resp implements the RESP wire protocol: decoding frames from a
// byte buffer with partial-message semantics, encoding replies, and
// decoding the subset of Redis commands this server understands.
package resp

import (
	"fmt"
	"strings"
)

// ValueType tags the variant held by a Value.
type ValueType int

const (
	SimpleString ValueType = iota
	Error
	Integer
	BulkString
	NullBulk
	Array
	NullArray
)

// Value is a parsed or constructed RESP frame.
type Value struct {
	Type  ValueType
	Str   string  // SimpleString, Error
	Int   int64   // Integer
	Bulk  []byte  // BulkString
	Array []Value // Array
}

func NewSimpleString(s string) Value { return Value{Type: SimpleString, Str: s} }
func NewError(s string) Value        { return Value{Type: Error, Str: s} }
func NewInteger(i int64) Value       { return Value{Type: Integer, Int: i} }
func NewBulkString(b []byte) Value   { return Value{Type: BulkString, Bulk: b} }
func NewNullBulk() Value             { return Value{Type: NullBulk} }
func NewArray(items []Value) Value   { return Value{Type: Array, Array: items} }
func NewNullArray() Value            { return Value{Type: NullArray} }

// ToDisplay renders a Value for human-readable logging only; it is not
// used anywhere on the wire.
func ToDisplay(v Value) string {
	switch v.Type {
	case SimpleString:
		return "+" + v.Str
	case Error:
		return "-" + v.Str
	case Integer:
		return fmt.Sprintf(":%d", v.Int)
	case BulkString:
		return fmt.Sprintf("$%q", string(v.Bulk))
	case NullBulk:
		return "$-1"
	case NullArray:
		return "*-1"
	case Array:
		parts := make([]string, len(v.Array))
		for i, e := range v.Array {
			parts[i] = ToDisplay(e)
		}
		return "*[" + strings.Join(parts, " ") + "]"
	default:
		return "?"
	}
}
