// Package validation checks collection descriptors against the schema
// carried by the collection meta-collection. It runs once, when the
// catalog is built, before any descriptor reaches a storage backend.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/artpar/docbase/core/catalog"
	"github.com/google/jsonschema-go/jsonschema"
)

// DescriptorError reports a collection descriptor that does not satisfy
// the meta-schema.
type DescriptorError struct {
	ID  string
	Err error
}

// Error returns the validation message.
func (e *DescriptorError) Error() string {
	return fmt.Sprintf("collection %q: %v", e.ID, e.Err)
}

// Unwrap returns the underlying schema error.
func (e *DescriptorError) Unwrap() error {
	return e.Err
}

// Validator validates descriptors against a compiled meta-schema.
type Validator struct {
	resolved *jsonschema.Resolved
}

// NewValidator compiles the schema of the given meta-collection descriptor.
func NewValidator(meta catalog.Collection) (*Validator, error) {
	raw, err := json.Marshal(meta.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal meta schema: %w", err)
	}

	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse meta schema: %w", err)
	}

	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve meta schema: %w", err)
	}

	return &Validator{resolved: resolved}, nil
}

// ValidateDescriptor checks one descriptor.
func (v *Validator) ValidateDescriptor(c catalog.Collection) error {
	instance, err := toInstance(c)
	if err != nil {
		return &DescriptorError{ID: c.ID, Err: err}
	}
	if err := v.resolved.Validate(instance); err != nil {
		return &DescriptorError{ID: c.ID, Err: err}
	}
	return nil
}

// ValidateCatalog checks every descriptor and reports all failures.
func (v *Validator) ValidateCatalog(cat catalog.Catalog) error {
	var errs []error
	for _, c := range cat {
		if err := v.ValidateDescriptor(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateCatalog validates cat against its own collection descriptor.
func ValidateCatalog(cat catalog.Catalog) error {
	meta, err := cat.Get(catalog.CollectionID)
	if err != nil {
		return err
	}
	v, err := NewValidator(meta)
	if err != nil {
		return err
	}
	return v.ValidateCatalog(cat)
}

// toInstance converts a descriptor to the generic JSON value the
// validator expects.
func toInstance(c catalog.Collection) (map[string]any, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal descriptor: %w", err)
	}
	var instance map[string]any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}
	return instance, nil
}
