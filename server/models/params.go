package models

import "encoding/json"

// OptionalString tells apart a JSON field that was absent, explicitly null,
// or carried a string value.
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

// NewOptionalString returns a set, non-null OptionalString.
func NewOptionalString(value string) OptionalString {
	return OptionalString{Set: true, Value: value}
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		o.Value = ""
		return nil
	}

	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o OptionalString) applyTo(field *string) {
	if !o.Set {
		return
	}
	*field = o.Value
}

func (o OptionalString) applyToOptional(field **string) {
	if !o.Set {
		return
	}

	if o.Null {
		*field = nil
		return
	}

	value := o.Value
	*field = &value
}

// OptionalBool is the boolean counterpart of OptionalString.
type OptionalBool struct {
	Set   bool
	Null  bool
	Value bool
}

func NewOptionalBool(value bool) OptionalBool {
	return OptionalBool{Set: true, Value: value}
}

func (o *OptionalBool) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		o.Value = false
		return nil
	}

	o.Null = false
	return json.Unmarshal(data, &o.Value)
}
