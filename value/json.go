package value

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// blobJSON is the wire form of a blob; JSON has no binary type.
type blobJSON struct {
	Blob *string `json:"blob"`
}

// MarshalJSON encodes v as null, a boolean, a number, a string, or
// {"blob":"<base64>"}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBlob:
		enc := base64.StdEncoding.EncodeToString(v.b)
		return json.Marshal(blobJSON{Blob: &enc})
	case KindFloat:
		b, err := json.Marshal(v.f)
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		return b, nil
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes the form produced by MarshalJSON. Numbers are
// resolved with Number semantics: integral values become integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var b blobJSON
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("value: invalid blob: %w", err)
		}
		if b.Blob == nil {
			return fmt.Errorf("value: object without \"blob\" field")
		}
		raw, err := base64.StdEncoding.DecodeString(*b.Blob)
		if err != nil {
			return fmt.Errorf("value: invalid blob encoding: %w", err)
		}
		*v = Blob(raw)
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var x interface{}
	if err := dec.Decode(&x); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	if _, ok := x.([]interface{}); ok {
		return fmt.Errorf("value: arrays are not supported")
	}
	parsed, err := FromAny(x)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
