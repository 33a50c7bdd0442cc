package cgt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// jsonObjectWriter builds a JSON object with its fields in insertion order, so
// that ledger and cache lines are written in a canonical form.
// Its zero value is ready to use. The first error sticks and is returned by
// MarshalJSON.
type jsonObjectWriter struct {
	bytes.Buffer
	err error
}

// zeroer is implemented by Money, Quantity, Fees, date.Date and decimal.Decimal.
type zeroer interface{ IsZero() bool }

func (w *jsonObjectWriter) field(key string, raw []byte) {
	w.WriteString(strconv.Quote(key))
	w.WriteByte(':')
	w.Write(raw)
	w.WriteByte(',')
}

// Embed copies the fields of a raw JSON object.
func (w *jsonObjectWriter) Embed(raw []byte) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	fields := bytes.TrimSpace(raw)
	if len(fields) < 2 || fields[0] != '{' || fields[len(fields)-1] != '}' {
		w.err = fmt.Errorf("cannot embed %q: not a JSON object", raw)
		return w
	}
	if fields = bytes.TrimSpace(fields[1 : len(fields)-1]); len(fields) > 0 {
		w.Write(fields)
		w.WriteByte(',')
	}
	return w
}

// EmbedFrom marshals v, which must marshal to an object, and embeds its fields.
func (w *jsonObjectWriter) EmbedFrom(v any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	raw, err := json.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("cannot embed %T: %w", v, err)
		return w
	}
	return w.Embed(raw)
}

// Append adds key with the JSON value of value.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	raw, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("cannot marshal %q: %w", key, err)
		return w
	}
	w.field(key, raw)
	return w
}

// Optional appends key only when value is not zero, either by its IsZero
// method or by its type's zero value.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	if z, ok := value.(zeroer); ok {
		if z.IsZero() {
			return w
		}
		return w.Append(key, value)
	}
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// MarshalJSON returns the object built so far.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	fields := bytes.TrimSuffix(w.Bytes(), []byte(","))
	out := make([]byte, 0, len(fields)+2)
	out = append(out, '{')
	out = append(out, fields...)
	return append(out, '}'), nil
}
