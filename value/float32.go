package value

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Float32s encodes a float32 array as a Blob: little-endian IEEE 754 values
// without a length prefix, the layout of a Float32Array's backing buffer.
func Float32s(vec []float32) Value {
	b := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return Blob(b)
}

// Float32s decodes a Blob produced by Float32s. The blob length must be a
// multiple of 4.
func (v Value) Float32s() ([]float32, error) {
	if v.kind != KindBlob {
		return nil, fmt.Errorf("value: cannot decode %s as float32 array", v.kind)
	}
	if len(v.b)%4 != 0 {
		return nil, fmt.Errorf("value: invalid float32 blob length %d (not multiple of 4)", len(v.b))
	}
	out := make([]float32, len(v.b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(v.b[i*4:]))
	}
	return out, nil
}
