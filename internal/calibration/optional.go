package calibration

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Optional is a measurement that may not have been taken. The zero value is
// "not measured", which stays distinct from a measured zero.
type Optional struct {
	value float64
	ok    bool
}

// Some wraps a measured value.
func Some(v float64) Optional {
	return Optional{value: v, ok: true}
}

// None is the "not measured" value.
func None() Optional {
	return Optional{}
}

// Get returns the value and whether it was measured.
func (o Optional) Get() (float64, bool) {
	return o.value, o.ok
}

// Present reports whether the value was measured.
func (o Optional) Present() bool {
	return o.ok
}

// Ptr returns a pointer to a copy of the value, or nil.
func (o Optional) Ptr() *float64 {
	if !o.ok {
		return nil
	}
	v := o.value
	return &v
}

// FromPtr converts a nullable value.
func FromPtr(p *float64) Optional {
	if p == nil {
		return None()
	}
	return Some(*p)
}

func (o Optional) String() string {
	if !o.ok {
		return "not measured"
	}
	return fmt.Sprintf("%g", o.value)
}

// MarshalJSON encodes "not measured" as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as "not measured".
func (o *Optional) UnmarshalJSON(data []byte) error {
	var p *float64
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = FromPtr(p)
	return nil
}

// MarshalYAML encodes "not measured" as null.
func (o Optional) MarshalYAML() (interface{}, error) {
	if !o.ok {
		return nil, nil
	}
	return o.value, nil
}

// UnmarshalYAML decodes null as "not measured".
func (o *Optional) UnmarshalYAML(node *yaml.Node) error {
	var p *float64
	if err := node.Decode(&p); err != nil {
		return err
	}
	*o = FromPtr(p)
	return nil
}
