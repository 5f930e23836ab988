package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
)

// Kind is the JSON Schema type keyword of a property.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	KindInteger Kind = "integer"
)

// Editor format hints understood by the admin UI.
const (
	FormatCheckbox = "checkbox"
	FormatSchema   = "schema"
)

// Property is one property descriptor of a schema. The concrete types
// (String, Number, Boolean, Array, Object) each carry only the attributes
// that make sense for their kind.
type Property interface {
	Kind() Kind
	Validate() error
	json.Marshaler
}

// String describes a string property.
type String struct {
	Description string
	Enum        []string
	Format      string
	Pattern     string
	MinLength   *int
	MaxLength   *int
	Default     *string
}

// Kind returns KindString.
func (String) Kind() Kind { return KindString }

// Validate checks the enum, pattern and length bounds, and the default
// against them.
func (s String) Validate() error {
	if s.Default != nil && len(s.Enum) > 0 && !slices.Contains(s.Enum, *s.Default) {
		return fmt.Errorf("default %q is not one of %v", *s.Default, s.Enum)
	}
	if s.MinLength != nil && *s.MinLength < 0 {
		return fmt.Errorf("minLength %d is negative", *s.MinLength)
	}
	if s.MaxLength != nil && *s.MaxLength < 0 {
		return fmt.Errorf("maxLength %d is negative", *s.MaxLength)
	}
	if s.MinLength != nil && s.MaxLength != nil && *s.MinLength > *s.MaxLength {
		return fmt.Errorf("minLength %d exceeds maxLength %d", *s.MinLength, *s.MaxLength)
	}
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("pattern: %w", err)
		}
		if s.Default != nil && !re.MatchString(*s.Default) {
			return fmt.Errorf("default %q does not match pattern %q", *s.Default, s.Pattern)
		}
	}
	seen := make(map[string]bool, len(s.Enum))
	for _, v := range s.Enum {
		if seen[v] {
			return fmt.Errorf("duplicate enum value %q", v)
		}
		seen[v] = true
	}
	return nil
}

// MarshalJSON encodes the property as a JSON Schema object.
func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        Kind     `json:"type"`
		Description string   `json:"description,omitempty"`
		Enum        []string `json:"enum,omitempty"`
		Format      string   `json:"format,omitempty"`
		Pattern     string   `json:"pattern,omitempty"`
		MinLength   *int     `json:"minLength,omitempty"`
		MaxLength   *int     `json:"maxLength,omitempty"`
		Default     *string  `json:"default,omitempty"`
	}{KindString, s.Description, s.Enum, s.Format, s.Pattern, s.MinLength, s.MaxLength, s.Default})
}

// Number describes a numeric property. Integer restricts values to whole
// numbers and encodes the type as "integer".
type Number struct {
	Description string
	Integer     bool
	Default     *float64
	Minimum     *float64
	Maximum     *float64
}

// Kind returns KindInteger for integer properties and KindNumber otherwise.
func (n Number) Kind() Kind {
	if n.Integer {
		return KindInteger
	}
	return KindNumber
}

// Validate checks the bounds and the default against them.
func (n Number) Validate() error {
	if n.Integer {
		for _, v := range []struct {
			name string
			val  *float64
		}{{"default", n.Default}, {"minimum", n.Minimum}, {"maximum", n.Maximum}} {
			if v.val != nil && *v.val != math.Trunc(*v.val) {
				return fmt.Errorf("%s %v is not an integer", v.name, *v.val)
			}
		}
	}
	if n.Minimum != nil && n.Maximum != nil && *n.Minimum > *n.Maximum {
		return fmt.Errorf("minimum %v exceeds maximum %v", *n.Minimum, *n.Maximum)
	}
	if n.Default != nil {
		if n.Minimum != nil && *n.Default < *n.Minimum {
			return fmt.Errorf("default %v below minimum %v", *n.Default, *n.Minimum)
		}
		if n.Maximum != nil && *n.Default > *n.Maximum {
			return fmt.Errorf("default %v above maximum %v", *n.Default, *n.Maximum)
		}
	}
	return nil
}

// MarshalJSON encodes the property as a JSON Schema object.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        Kind     `json:"type"`
		Description string   `json:"description,omitempty"`
		Default     *float64 `json:"default,omitempty"`
		Minimum     *float64 `json:"minimum,omitempty"`
		Maximum     *float64 `json:"maximum,omitempty"`
	}{n.Kind(), n.Description, n.Default, n.Minimum, n.Maximum})
}

// Boolean describes a boolean property.
type Boolean struct {
	Description string
	Format      string
	Default     *bool
}

// Kind returns KindBoolean.
func (Boolean) Kind() Kind { return KindBoolean }

// Validate always succeeds; every attribute combination is well formed.
func (Boolean) Validate() error { return nil }

// MarshalJSON encodes the property as a JSON Schema object.
func (b Boolean) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        Kind   `json:"type"`
		Description string `json:"description,omitempty"`
		Format      string `json:"format,omitempty"`
		Default     *bool  `json:"default,omitempty"`
	}{KindBoolean, b.Description, b.Format, b.Default})
}

// Array describes an array property. Items is required.
type Array struct {
	Description string
	Items       Property
	UniqueItems bool
	Format      string
}

// Kind returns KindArray.
func (Array) Kind() Kind { return KindArray }

// Validate requires an item descriptor and validates it.
func (a Array) Validate() error {
	if a.Items == nil {
		return errors.New("array property requires items")
	}
	if err := a.Items.Validate(); err != nil {
		return fmt.Errorf("items: %w", err)
	}
	return nil
}

// MarshalJSON encodes the property as a JSON Schema object.
func (a Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        Kind     `json:"type"`
		Description string   `json:"description,omitempty"`
		Items       Property `json:"items,omitempty"`
		UniqueItems bool     `json:"uniqueItems,omitempty"`
		Format      string   `json:"format,omitempty"`
	}{KindArray, a.Description, a.Items, a.UniqueItems, a.Format})
}

// Object describes an object property, and doubles as the root schema of a
// collection. A nil AdditionalProperties leaves the keyword out.
type Object struct {
	Description          string
	Format               string
	Properties           *Fragment
	Required             []string
	AdditionalProperties *bool
}

// Kind returns KindObject.
func (Object) Kind() Kind { return KindObject }

// Validate checks nested properties and that every required name is declared.
// Objects with the schema format hold arbitrary schemas, so their required
// names are not checked against the (empty) property list.
func (o Object) Validate() error {
	var errs []error
	for name, p := range o.Properties.All() {
		if p == nil {
			errs = append(errs, fmt.Errorf("property %q: missing descriptor", name))
			continue
		}
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("property %q: %w", name, err))
		}
	}
	if o.Format != FormatSchema {
		for _, name := range o.Required {
			if !o.Properties.Has(name) {
				errs = append(errs, fmt.Errorf("required property %q is not declared", name))
			}
		}
	}
	return errors.Join(errs...)
}

// MarshalJSON encodes the property as a JSON Schema object. Properties is
// always emitted, as an empty object when there are none.
func (o Object) MarshalJSON() ([]byte, error) {
	props := o.Properties
	if props == nil {
		props = NewFragment()
	}
	return json.Marshal(struct {
		Type                 Kind      `json:"type"`
		Description          string    `json:"description,omitempty"`
		Format               string    `json:"format,omitempty"`
		AdditionalProperties *bool     `json:"additionalProperties,omitempty"`
		Properties           *Fragment `json:"properties"`
		Required             []string  `json:"required,omitempty"`
	}{KindObject, o.Description, o.Format, o.AdditionalProperties, props, o.Required})
}

// Closed returns a pointer to false, for AdditionalProperties.
func Closed() *bool {
	f := false
	return &f
}

// Str returns a pointer to s, for defaults.
func Str(s string) *string { return &s }

// Bool returns a pointer to b, for defaults.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i, for length bounds.
func Int(i int) *int { return &i }

// Float returns a pointer to f, for defaults and bounds.
func Float(f float64) *float64 { return &f }
