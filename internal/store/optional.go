package store

import (
	"bytes"
	"encoding/json"
)

// Optional is one field of a partial update. The zero value is "absent";
// a JSON null sets Null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a present null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Present reports a non-null value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		o.Null, o.Value = true, zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// assign copies a present value into a non-nullable field.
func assign[T any](field string, dst *T, o Optional[T]) error {
	if !o.Set {
		return nil
	}
	if o.Null {
		return invalidf(field, "must not be null")
	}
	*dst = o.Value
	return nil
}

// assignPtr copies a present value, or clears the field on null.
func assignPtr[T any](dst **T, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Null {
		*dst = nil
		return
	}
	v := o.Value
	*dst = &v
}
