package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/argentdb/argent"
	"github.com/argentdb/argent/compiler/gen"
)

// Decode converts a structured value into an instance of the named model.
// Read-only properties are rejected in input; unknown keys are ignored
// unless Strict is requested. On any error no instance is returned.
func (r *Registry) Decode(name string, data map[string]any, opts ...DecodeOption) (*Instance, error) {
	cfg := &decodeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	typ, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("model: unknown model %q", name)
	}
	return r.decode(typ, data, "", cfg)
}

// FromJSON decodes a JSON document into an instance of the named model.
func (r *Registry) FromJSON(name string, data []byte, opts ...DecodeOption) (*Instance, error) {
	var value map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("model: decode json: %w", err)
	}
	return r.Decode(name, value, opts...)
}

func (r *Registry) decode(typ *gen.Type, data map[string]any, path string, cfg *decodeConfig) (*Instance, error) {
	inst := New(typ)
	for key, value := range data {
		fieldPath := joinPath(path, key)
		switch {
		case fieldByName(typ, key) != nil:
			f := fieldByName(typ, key)
			if f.ReadOnly {
				return nil, argent.NewReadOnlyViolationError(typ.Name, fieldPath)
			}
			v, err := validateValue(typ.Name, fieldPath, f, value)
			if err != nil {
				return nil, err
			}
			inst.fields[f.Name] = v
		case typ.EdgeByName(key) != nil:
			e := typ.EdgeByName(key)
			if e.ReadOnly {
				return nil, argent.NewReadOnlyViolationError(typ.Name, fieldPath)
			}
			if err := r.decodeEdge(inst, e, value, fieldPath, cfg); err != nil {
				return nil, err
			}
		case cfg.strict:
			return nil, argent.NewUnknownFieldError(typ.Name, fieldPath)
		}
	}
	for _, f := range typ.AllFields() {
		if f.Required && !f.ReadOnly {
			if _, ok := inst.fields[f.Name]; !ok {
				return nil, argent.NewValidationError(typ.Name, joinPath(path, f.Name), nil, "missing required field")
			}
		}
	}
	for _, e := range typ.AllEdges() {
		if e.Optional || e.ReadOnly {
			continue
		}
		if _, ok := inst.edges[e.Name]; ok {
			continue
		}
		// A required to-one relationship may be supplied through its
		// foreign-key column instead of a nested object.
		if e.OwnFK() {
			if fk, err := e.ForeignKey(); err == nil {
				if _, ok := inst.fields[fk.Field.Name]; ok {
					continue
				}
			}
		}
		return nil, argent.NewValidationError(typ.Name, joinPath(path, e.Name), nil, "missing required field")
	}
	return inst, nil
}

func (r *Registry) decodeEdge(inst *Instance, e *gen.Edge, value any, path string, cfg *decodeConfig) error {
	if e.Unique {
		nested, ok := value.(map[string]any)
		if !ok {
			return argent.NewValidationError(inst.model.Name, path, value, "expected a nested object")
		}
		related, err := r.decode(e.Type, nested, path, cfg)
		if err != nil {
			return err
		}
		inst.edges[e.Name] = related
		return nil
	}
	list, ok := value.([]any)
	if !ok {
		return argent.NewValidationError(inst.model.Name, path, value, "expected an array of nested objects")
	}
	related := make([]*Instance, 0, len(list))
	for idx, item := range list {
		nested, ok := item.(map[string]any)
		if !ok {
			return argent.NewValidationError(inst.model.Name, fmt.Sprintf("%s[%d]", path, idx), item, "expected a nested object")
		}
		ri, err := r.decode(e.Type, nested, fmt.Sprintf("%s[%d]", path, idx), cfg)
		if err != nil {
			return err
		}
		related = append(related, ri)
	}
	inst.edges[e.Name] = related
	return nil
}

// validateValue checks a scalar value against its field's schema and
// returns the normalized form: int64 for integers, float64 for floats.
func validateValue(model, path string, f *gen.Field, value any) (any, error) {
	if value == nil {
		if !f.Nillable {
			return nil, argent.NewValidationError(model, path, nil, "null is not allowed")
		}
		return nil, nil
	}
	var (
		v   any
		err error
	)
	switch {
	case f.IsEnum():
		v, err = validateEnum(model, path, f, value)
	case f.Type.Integer():
		v, err = validateInt(model, path, value)
	case f.Type == gen.TypeFloat || f.Type == gen.TypeDouble:
		v, err = validateFloat(model, path, value)
	case f.Type == gen.TypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, argent.NewValidationError(model, path, value, "expected a boolean")
		}
		v = b
	case f.Type == gen.TypeBytes:
		switch value.(type) {
		case string, []byte:
			v = value
		default:
			return nil, argent.NewValidationError(model, path, value, "expected a byte sequence")
		}
	default:
		v, err = validateString(model, path, f, value)
	}
	if err != nil {
		return nil, err
	}
	if f.Minimum != nil || f.Maximum != nil {
		if err := validateRange(model, path, f, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func validateInt(model, path string, value any) (int64, error) {
	switch n := value.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, argent.NewValidationError(model, path, value, "expected an integer")
		}
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, argent.NewValidationError(model, path, value, "expected an integer")
		}
		return i, nil
	default:
		return 0, argent.NewValidationError(model, path, value, "expected an integer")
	}
}

func validateFloat(model, path string, value any) (float64, error) {
	switch n := value.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, argent.NewValidationError(model, path, value, "expected a number")
		}
		return f, nil
	default:
		return 0, argent.NewValidationError(model, path, value, "expected a number")
	}
}

func validateString(model, path string, f *gen.Field, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", argent.NewValidationError(model, path, value, "expected a string")
	}
	switch f.Type {
	case gen.TypeDate:
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return "", argent.NewValidationError(model, path, value, "expected a date (YYYY-MM-DD)")
		}
	case gen.TypeDateTime:
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return "", argent.NewValidationError(model, path, value, "expected an RFC 3339 date-time")
		}
	case gen.TypeUUID:
		if _, err := uuid.Parse(s); err != nil {
			return "", argent.NewValidationError(model, path, value, "expected a UUID")
		}
	}
	if f.Size != nil && len(s) > *f.Size {
		return "", argent.NewValidationError(model, path, value,
			fmt.Sprintf("length exceeds maximum of %d", *f.Size))
	}
	if f.Pattern != "" {
		re, err := regexp.Compile(f.Pattern)
		if err == nil && !re.MatchString(s) {
			return "", argent.NewValidationError(model, path, value,
				fmt.Sprintf("does not match pattern %q", f.Pattern))
		}
	}
	return s, nil
}

func validateEnum(model, path string, f *gen.Field, value any) (any, error) {
	var v any
	switch value.(type) {
	case string:
		v = value
	default:
		i, err := validateInt(model, path, value)
		if err != nil {
			return nil, argent.NewValidationError(model, path, value, "expected an enum value")
		}
		v = i
	}
	for _, allowed := range f.EnumValues() {
		if scalarEqual(v, allowed) {
			return v, nil
		}
	}
	return nil, argent.NewValidationError(model, path, value, "value is not one of the allowed enum values")
}

func validateRange(model, path string, f *gen.Field, v any) error {
	var n float64
	switch x := v.(type) {
	case int64:
		n = float64(x)
	case float64:
		n = x
	default:
		return nil
	}
	if f.Minimum != nil && n < *f.Minimum {
		return argent.NewValidationError(model, path, v, fmt.Sprintf("below minimum %v", *f.Minimum))
	}
	if f.Maximum != nil && n > *f.Maximum {
		return argent.NewValidationError(model, path, v, fmt.Sprintf("above maximum %v", *f.Maximum))
	}
	return nil
}

// scalarEqual compares two scalar values, tolerating the numeric type
// variance between decoded documents and schema literals.
func scalarEqual(a, b any) bool {
	if a == b {
		return true
	}
	an, aok := toFloat(a)
	bn, bok := toFloat(b)
	return aok && bok && an == bn
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
