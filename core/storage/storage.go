// Package storage persists documents for the bootstrap collections.
// Every backend stores schemaless JSON documents keyed by collection and id.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// IDField is the document key holding the document id.
const IDField = "_id"

// Document is a schemaless JSON document.
type Document map[string]any

// ID returns the document id, or "" if it has none.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Store provides document persistence for any collection.
type Store interface {
	// Put inserts or replaces a document and returns its id.
	// Documents without an id are assigned a new uuid.
	Put(ctx context.Context, collection string, doc Document) (string, error)

	// Get retrieves a document by id.
	Get(ctx context.Context, collection, id string) (Document, error)

	// List retrieves all documents of a collection, ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)

	// Close releases the backend.
	Close() error
}

// prepare copies doc, assigning an id when missing, and checks names
// used as keys or path segments.
func prepare(collection string, doc Document) (Document, string, error) {
	if err := checkName("collection", collection); err != nil {
		return nil, "", err
	}

	out := maps.Clone(doc)
	if out == nil {
		out = Document{}
	}

	id := out.ID()
	if _, present := out[IDField]; present && id == "" {
		return nil, "", errors.New("document id must be a non-empty string")
	}
	if id == "" {
		id = uuid.NewString()
		out[IDField] = id
	}
	if err := checkName("document id", id); err != nil {
		return nil, "", err
	}
	return out, id, nil
}

func checkKey(collection, id string) error {
	if err := checkName("collection", collection); err != nil {
		return err
	}
	return checkName("document id", id)
}

// checkName rejects empty names, path separators and leading dots, so
// every backend accepts the same names the file layout can list.
func checkName(what, name string) error {
	if name == "" {
		return fmt.Errorf("%s is required", what)
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid %s %q", what, name)
	}
	return nil
}

// FromValue converts any JSON-encodable value into a Document.
func FromValue(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func notFound(collection, id string) error {
	return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
}
