package value

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindFloat
	KindText
	KindBlob
)

var kindNames = [...]string{
	KindNull:  "null",
	KindBool:  "bool",
	KindInt32: "int32",
	KindInt64: "int64",
	KindFloat: "float",
	KindText:  "text",
	KindBlob:  "blob",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsInteger reports whether k is one of the integer widths.
func (k Kind) IsInteger() bool { return k == KindInt32 || k == KindInt64 }

// Value is a SQLite parameter or cell value. The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
}

// Null returns the SQL NULL value.
func Null() Value { return Value{} }

// Bool returns a boolean value. The engine has no boolean storage class, so
// it is bound as the integer 0 or 1.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.i = 1
	}
	return v
}

// Int returns an integer value using the narrowest width that holds i:
// Int32 when it fits, Int64 otherwise.
func Int(i int64) Value {
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return Int32(int32(i))
	}
	return Int64(i)
}

func Int32(i int32) Value { return Value{kind: KindInt32, i: int64(i)} }

func Int64(i int64) Value { return Value{kind: KindInt64, i: i} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Number maps a script number onto the engine: integral values within the
// int64 range go through Int, anything else is bound as a double.
func Number(f float64) Value {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && f >= math.MinInt64 && f < math.MaxInt64 {
		return Int(int64(f))
	}
	return Float(f)
}

func Text(s string) Value { return Value{kind: KindText, s: s} }

// Blob returns a binary value. A nil slice is an empty blob, not NULL.
func Blob(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindBlob, b: b}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Int64 returns the integer form of v. Bools give 0/1, floats are
// truncated, other kinds give 0.
func (v Value) Int64() int64 {
	switch v.kind {
	case KindBool, KindInt32, KindInt64:
		return v.i
	case KindFloat:
		return int64(v.f)
	}
	return 0
}

// Float64 returns the floating point form of v; non-numeric kinds give 0.
func (v Value) Float64() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindBool, KindInt32, KindInt64:
		return float64(v.i)
	}
	return 0
}

func (v Value) Bool() bool {
	switch v.kind {
	case KindBool, KindInt32, KindInt64:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	}
	return false
}

// Text returns the string held by a Text value or the bytes of a Blob.
// Other kinds give "".
func (v Value) Text() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindBlob:
		return string(v.b)
	}
	return ""
}

// Bytes returns the bytes held by a Blob or the UTF-8 of a Text value.
// Other kinds give nil.
func (v Value) Bytes() []byte {
	switch v.kind {
	case KindBlob:
		return v.b
	case KindText:
		return []byte(v.s)
	}
	return nil
}

// Interface returns v as one of nil, bool, int64, float64, string or []byte.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.i != 0
	case KindInt32, KindInt64:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBlob:
		return v.b
	}
	return nil
}

// Equal reports whether v and o hold the same value. Integer widths compare
// by value, so Int32(7) equals Int64(7).
func (v Value) Equal(o Value) bool {
	if v.kind.IsInteger() && o.kind.IsInteger() {
		return v.i == o.i
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindText:
		return v.s == o.s
	case KindBlob:
		return bytes.Equal(v.b, o.b)
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(v.i != 0)
	case KindInt32, KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return strconv.Quote(v.s)
	case KindBlob:
		return fmt.Sprintf("x'%x'", v.b)
	}
	return v.kind.String()
}
