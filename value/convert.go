package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// FromAny converts a dynamically typed script value into a Value. It is the
// one place where the runtime type of a caller's argument is inspected;
// everything past it works on Kind.
func FromAny(x interface{}) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int32(v), nil
	case int64:
		return Int(v), nil
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return fromUint(v)
	case float32:
		return Number(float64(v)), nil
	case float64:
		return Number(v), nil
	case json.Number:
		return fromJSONNumber(v)
	case string:
		return Text(v), nil
	case []byte:
		return Blob(v), nil
	case []float32:
		return Float32s(v), nil
	}
	return Value{}, fmt.Errorf("value: unsupported type %T", x)
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("value: unsigned integer %d overflows int64", u)
	}
	return Int(int64(u)), nil
}

func fromJSONNumber(n json.Number) (Value, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return Value{}, fmt.Errorf("value: invalid number %q: %w", string(n), err)
	}
	return Number(f), nil
}
