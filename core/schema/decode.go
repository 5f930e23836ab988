package schema

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// rawProperty mirrors the JSON Schema keywords a property may carry in a
// module file. Nested schemas and defaults stay as nodes until the kind is
// known; a zero Kind means the keyword was absent.
type rawProperty struct {
	Type                 Kind      `yaml:"type"`
	Description          string    `yaml:"description"`
	Enum                 []string  `yaml:"enum"`
	Format               string    `yaml:"format"`
	Pattern              string    `yaml:"pattern"`
	MinLength            *int      `yaml:"minLength"`
	MaxLength            *int      `yaml:"maxLength"`
	Default              yaml.Node `yaml:"default"`
	Minimum              *float64  `yaml:"minimum"`
	Maximum              *float64  `yaml:"maximum"`
	Items                yaml.Node `yaml:"items"`
	UniqueItems          bool      `yaml:"uniqueItems"`
	Properties           *Fragment `yaml:"properties"`
	Required             []string  `yaml:"required"`
	AdditionalProperties *bool     `yaml:"additionalProperties"`
}

// keywords lists the keywords each kind accepts besides type and
// description.
var keywords = map[Kind][]string{
	KindString:  {"enum", "format", "pattern", "minLength", "maxLength", "default"},
	KindNumber:  {"default", "minimum", "maximum"},
	KindInteger: {"default", "minimum", "maximum"},
	KindBoolean: {"format", "default"},
	KindArray:   {"items", "uniqueItems", "format"},
	KindObject:  {"format", "properties", "required", "additionalProperties"},
}

// checkKeywords rejects any keyword the kind does not carry, so a
// constraint is never dropped silently.
func checkKeywords(node *yaml.Node, kind Kind) error {
	allowed := keywords[kind]
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if key.Value == "type" || key.Value == "description" {
			continue
		}
		if !slices.Contains(allowed, key.Value) {
			return fmt.Errorf("line %d: keyword %q is not supported for type %s", key.Line, key.Value, kind)
		}
	}
	return nil
}

func mappingValue(node *yaml.Node, key string) string {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1].Value
		}
	}
	return ""
}

// UnmarshalYAML decodes a mapping of property name to descriptor,
// keeping the document order.
func (f *Fragment) UnmarshalYAML(node *yaml.Node) error {
	f.init()
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: properties must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		p, err := DecodeProperty(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		f.Set(name, p)
	}
	return nil
}

// DecodeProperty decodes a single descriptor node into its concrete kind
// and validates it.
func DecodeProperty(node *yaml.Node) (Property, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: property descriptor must be a mapping", node.Line)
	}

	kind := Kind(mappingValue(node, "type"))
	if kind == "" {
		return nil, fmt.Errorf("line %d: type is required", node.Line)
	}
	if _, ok := keywords[kind]; !ok {
		return nil, fmt.Errorf("line %d: unsupported type %q", node.Line, kind)
	}
	if err := checkKeywords(node, kind); err != nil {
		return nil, err
	}

	var raw rawProperty
	if err := node.Decode(&raw); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}

	var p Property
	switch kind {
	case KindString:
		s := String{
			Description: raw.Description,
			Enum:        raw.Enum,
			Format:      raw.Format,
			Pattern:     raw.Pattern,
			MinLength:   raw.MinLength,
			MaxLength:   raw.MaxLength,
		}
		if raw.Default.Kind != 0 {
			var d string
			if err := raw.Default.Decode(&d); err != nil {
				return nil, fmt.Errorf("default: %w", err)
			}
			s.Default = &d
		}
		p = s
	case KindNumber, KindInteger:
		n := Number{
			Description: raw.Description,
			Integer:     kind == KindInteger,
			Minimum:     raw.Minimum,
			Maximum:     raw.Maximum,
		}
		if raw.Default.Kind != 0 {
			var d float64
			if err := raw.Default.Decode(&d); err != nil {
				return nil, fmt.Errorf("default: %w", err)
			}
			n.Default = &d
		}
		p = n
	case KindBoolean:
		b := Boolean{Description: raw.Description, Format: raw.Format}
		if raw.Default.Kind != 0 {
			var d bool
			if err := raw.Default.Decode(&d); err != nil {
				return nil, fmt.Errorf("default: %w", err)
			}
			b.Default = &d
		}
		p = b
	case KindArray:
		a := Array{Description: raw.Description, UniqueItems: raw.UniqueItems, Format: raw.Format}
		if raw.Items.Kind != 0 {
			items, err := DecodeProperty(&raw.Items)
			if err != nil {
				return nil, fmt.Errorf("items: %w", err)
			}
			a.Items = items
		}
		p = a
	case KindObject:
		p = Object{
			Description:          raw.Description,
			Format:               raw.Format,
			Properties:           raw.Properties,
			Required:             raw.Required,
			AdditionalProperties: raw.AdditionalProperties,
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
