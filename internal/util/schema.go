package util

import (
	"reflect"
	"strings"
)

// CreateSchema derives a JSON schema object from a struct value or pointer.
// Nested structs become nested objects. Recognized tags:
//
//	json:"name,omitempty"      property name; omitempty or a pointer field is optional
//	description:"..."          property description
//	enum:"a,b,c"               string enumeration
//
// Anything other than a struct yields an empty object schema.
func CreateSchema(v any) map[string]any {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return emptyObject()
	}
	return objectSchema(t)
}

func emptyObject() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

// field is the schema-relevant view of one struct field.
type field struct {
	name     string
	optional bool
	skip     bool
}

func parseField(f reflect.StructField) field {
	if !f.IsExported() {
		return field{skip: true}
	}
	tag, hasTag := f.Tag.Lookup("json")
	if tag == "-" {
		return field{skip: true}
	}

	out := field{name: f.Name, optional: f.Type.Kind() == reflect.Pointer}
	if !hasTag {
		return out
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name != "" {
		out.name = name
	}
	for _, opt := range strings.Split(opts, ",") {
		if strings.TrimSpace(opt) == "omitempty" {
			out.optional = true
		}
	}
	return out
}

func objectSchema(t reflect.Type) map[string]any {
	props := map[string]any{}
	var required []string

	for i := range t.NumField() {
		sf := t.Field(i)
		f := parseField(sf)
		if f.skip {
			continue
		}

		s := typeSchema(sf.Type)
		if d := sf.Tag.Get("description"); d != "" {
			s["description"] = d
		}
		if e := sf.Tag.Get("enum"); e != "" {
			s["enum"] = strings.Split(e, ",")
		}
		props[f.name] = s

		if !f.optional {
			required = append(required, f.name)
		}
	}

	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func typeSchema(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		return objectSchema(t)
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": typeSchema(t.Elem())}
	case reflect.Map:
		return map[string]any{"type": "object"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	default:
		return map[string]any{"type": "string"}
	}
}
