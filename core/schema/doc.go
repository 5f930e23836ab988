/*
Package schema defines the property descriptors that make up collection
schemas and module settings fragments.

A descriptor is one of five kinds, each with its own attribute set:

  - String:  description, enum, format, pattern, minLength, maxLength, default
  - Number:  description, default, minimum, maximum (integer when Integer is set)
  - Boolean: description, format, default
  - Array:   description, items (required), uniqueItems, format
  - Object:  description, format, properties, required, additionalProperties

Descriptors validate themselves, so a malformed schema is caught when it is
declared rather than when a document is first checked against it. Module
files are held to the same rule: a keyword the kind does not carry is an
error, not silently dropped.

# Fragments

A Fragment is an ordered property map. Modules contribute fragments to the
settings schema, and Object descriptors hold one as their property list:

	frag := schema.NewFragment(
		schema.P("plan", schema.String{Enum: []string{"free", "pro"}}),
		schema.P("seats", schema.Number{Minimum: schema.Float(1)}),
	)

Fragments encode to JSON in insertion order, and decode from YAML module
files:

	settings:
	  plan:  { type: string, enum: [free, pro] }
	  seats: { type: number, minimum: 1 }
*/
package schema
