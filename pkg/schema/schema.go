// Package schema provides an explicit structural schema for tool inputs and
// outputs. A Definition is built once from field declarations, validated at
// construction, and consumed both for raw-argument validation and for
// provider function-calling schema emission. No runtime reflection over
// user types is involved.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Type is the JSON type of a field.
type Type string

const (
	String  Type = "string"
	Integer Type = "integer"
	Number  Type = "number"
	Boolean Type = "boolean"
	Array   Type = "array"
	Object  Type = "object"
)

// Policy controls how fields not declared in the Definition are treated.
type Policy int

const (
	// PolicyReject fails validation on unknown fields.
	PolicyReject Policy = iota
	// PolicyIgnore drops unknown fields silently.
	PolicyIgnore
)

// Field declares one named value of a Definition.
type Field struct {
	Name        string
	Type        Type
	Description string
	Required    bool

	// Enum restricts a string field to a fixed set of values.
	Enum []string
	// Minimum and Maximum bound integer and number fields, inclusive.
	Minimum *float64
	Maximum *float64

	// Items describes the element type of an array field. The element's
	// Name and Required are ignored.
	Items *Field
	// Properties describe the fields of an object field.
	Properties []Field
}

// Float is a helper for bound declarations.
func Float(v float64) *float64 {
	return &v
}

// Definition is an immutable, ordered set of field declarations.
// It is pure data and safe for concurrent use.
type Definition struct {
	fields []Field
	doc    *jsonschema.Schema
}

// NewDefinition builds a Definition, rejecting declarations that cannot be
// represented as a function-calling schema.
func NewDefinition(fields ...Field) (*Definition, error) {
	if err := validateFields(fields, ""); err != nil {
		return nil, err
	}
	d := &Definition{fields: fields}
	d.doc = buildObjectSchema(fields)
	return d, nil
}

// MustDefinition is NewDefinition that panics on invalid declarations.
// Intended for package-level tool schema construction.
func MustDefinition(fields ...Field) *Definition {
	d, err := NewDefinition(fields...)
	if err != nil {
		panic(err)
	}
	return d
}

// Fields returns the declared fields in declaration order.
func (d *Definition) Fields() []Field {
	return d.fields
}

// JSONSchema returns the schema as a JSON-Schema document with ordered
// properties. The same Definition always yields an identical document.
func (d *Definition) JSONSchema() *jsonschema.Schema {
	return d.doc
}

func validateFields(fields []Field, path string) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		name := joinPath(path, f.Name)
		if f.Name == "" {
			return errors.Newf("schema: field name is required at %q", path)
		}
		if seen[strings.ToLower(f.Name)] {
			return errors.Newf("schema: duplicate field %q", name)
		}
		seen[strings.ToLower(f.Name)] = true

		switch f.Type {
		case String, Integer, Number, Boolean, Array, Object:
		default:
			return errors.Newf("schema: field %q has unsupported type %q", name, f.Type)
		}
		if len(f.Enum) > 0 && f.Type != String {
			return errors.Newf("schema: field %q: enum requires string type", name)
		}
		if (f.Minimum != nil || f.Maximum != nil) && f.Type != Integer && f.Type != Number {
			return errors.Newf("schema: field %q: bounds require numeric type", name)
		}
		if f.Minimum != nil && f.Maximum != nil && *f.Minimum > *f.Maximum {
			return errors.Newf("schema: field %q: minimum exceeds maximum", name)
		}
		if f.Type == Array {
			if f.Items == nil {
				return errors.Newf("schema: field %q: array requires items", name)
			}
			if err := validateFields([]Field{{Name: "items", Type: f.Items.Type, Enum: f.Items.Enum,
				Minimum: f.Items.Minimum, Maximum: f.Items.Maximum,
				Items: f.Items.Items, Properties: f.Items.Properties}}, name); err != nil {
				return err
			}
		}
		if f.Type == Object {
			if err := validateFields(f.Properties, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildObjectSchema(fields []Field) *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	var required []string
	for _, f := range fields {
		props.Set(f.Name, buildFieldSchema(f))
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func buildFieldSchema(f Field) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:        string(f.Type),
		Description: f.Description,
	}
	for _, e := range f.Enum {
		s.Enum = append(s.Enum, e)
	}
	if f.Minimum != nil {
		s.Minimum = formatBound(*f.Minimum)
	}
	if f.Maximum != nil {
		s.Maximum = formatBound(*f.Maximum)
	}
	if f.Type == Array && f.Items != nil {
		s.Items = buildFieldSchema(*f.Items)
	}
	if f.Type == Object {
		obj := buildObjectSchema(f.Properties)
		s.Properties = obj.Properties
		s.Required = obj.Required
	}
	return s
}

func formatBound(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
}

var vd = validator.New(validator.WithRequiredStructEnabled())

// Check validates raw arguments against the Definition: required fields
// present, types conforming, bounds and enums honored, and unknown fields
// handled per policy. The returned error message lists all problems in a
// stable order.
func (d *Definition) Check(args map[string]any, policy Policy) error {
	var problems []string
	checkObject(d.fields, args, "", policy, &problems)
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errors.Newf("invalid arguments: %s", strings.Join(problems, "; "))
}

func checkObject(fields []Field, value map[string]any, path string, policy Policy, problems *[]string) {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	if policy == PolicyReject {
		for name := range value {
			if _, ok := byName[name]; !ok {
				*problems = append(*problems, fmt.Sprintf("unknown field %q", joinPath(path, name)))
			}
		}
	}
	for _, f := range fields {
		v, present := value[f.Name]
		name := joinPath(path, f.Name)
		if !present {
			if f.Required {
				*problems = append(*problems, fmt.Sprintf("missing required field %q", name))
			}
			continue
		}
		checkValue(f, v, name, policy, problems)
	}
}

func checkValue(f Field, v any, path string, policy Policy, problems *[]string) {
	switch f.Type {
	case String:
		s, ok := v.(string)
		if !ok {
			*problems = append(*problems, fmt.Sprintf("field %q must be a string", path))
			return
		}
		// membership is compared directly: enum values may contain spaces
		// or commas, which a validator tag cannot carry
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, s) {
			*problems = append(*problems, fmt.Sprintf("field %q must be one of [%s]", path, strings.Join(f.Enum, ", ")))
		}
	case Boolean:
		if _, ok := v.(bool); !ok {
			*problems = append(*problems, fmt.Sprintf("field %q must be a boolean", path))
		}
	case Integer:
		n, ok := asNumber(v)
		if !ok || n != math.Trunc(n) {
			*problems = append(*problems, fmt.Sprintf("field %q must be an integer", path))
			return
		}
		checkBounds(f, n, path, problems)
	case Number:
		n, ok := asNumber(v)
		if !ok {
			*problems = append(*problems, fmt.Sprintf("field %q must be a number", path))
			return
		}
		checkBounds(f, n, path, problems)
	case Array:
		list, ok := v.([]any)
		if !ok {
			*problems = append(*problems, fmt.Sprintf("field %q must be an array", path))
			return
		}
		if f.Items == nil {
			return
		}
		for i, item := range list {
			checkValue(*f.Items, item, fmt.Sprintf("%s[%d]", path, i), policy, problems)
		}
	case Object:
		obj, ok := v.(map[string]any)
		if !ok {
			*problems = append(*problems, fmt.Sprintf("field %q must be an object", path))
			return
		}
		checkObject(f.Properties, obj, path, policy, problems)
	}
}

func checkBounds(f Field, n float64, path string, problems *[]string) {
	if tag := constraintTag(f); tag != "" {
		if err := vd.Var(n, tag); err != nil {
			*problems = append(*problems, fmt.Sprintf("field %q must be in range [%s, %s]",
				path, boundString(f.Minimum), boundString(f.Maximum)))
		}
	}
}

func constraintTag(f Field) string {
	var parts []string
	if f.Minimum != nil {
		parts = append(parts, "gte="+strconv.FormatFloat(*f.Minimum, 'f', -1, 64))
	}
	if f.Maximum != nil {
		parts = append(parts, "lte="+strconv.FormatFloat(*f.Maximum, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

func boundString(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Filter returns a copy of args restricted to declared fields, recursing
// into object fields and array elements. Used with PolicyIgnore so
// undeclared fields never reach a capability at any depth.
func (d *Definition) Filter(args map[string]any) map[string]any {
	return filterObject(d.fields, args)
}

func filterObject(fields []Field, args map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := args[f.Name]; ok {
			out[f.Name] = filterValue(f, v)
		}
	}
	return out
}

func filterValue(f Field, v any) any {
	switch f.Type {
	case Object:
		if obj, ok := v.(map[string]any); ok {
			return filterObject(f.Properties, obj)
		}
	case Array:
		if list, ok := v.([]any); ok && f.Items != nil {
			out := make([]any, len(list))
			for i, item := range list {
				out[i] = filterValue(*f.Items, item)
			}
			return out
		}
	}
	return v
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
