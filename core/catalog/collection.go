// Package catalog declares the bootstrap collections every docbase
// application starts with: settings, users and the collection
// meta-collection that describes all collections, itself included.
package catalog

import (
	"errors"
	"fmt"

	"github.com/artpar/docbase/core/schema"
)

// Canonical collection ids.
const (
	SettingsID   = "settings"
	UsersID      = "users"
	CollectionID = "collection"
)

// ErrUnknownCollection is returned by Catalog.Get for an id not in the catalog.
var ErrUnknownCollection = errors.New("unknown collection")

// Storage selects the backend that persists a collection.
type Storage string

const (
	StorageFile     Storage = "file"
	StoragePostgres Storage = "postgres"
	StorageMongo    Storage = "mongo"
	StorageMemory   Storage = "memory"
)

// Storages lists every backend in declaration order.
func Storages() []Storage {
	return []Storage{StorageFile, StoragePostgres, StorageMongo, StorageMemory}
}

// AuthRoutes are the routes a collection serves when its documents are
// used for authentication. Changing them requires a server restart.
type AuthRoutes struct {
	Login    string `json:"login,omitempty"`
	Register string `json:"register,omitempty"`
	Me       string `json:"me,omitempty"`
}

// Admin holds admin UI rendering hints.
type Admin struct {
	Columns []string `json:"columns"`
}

// Collection describes one collection: its document schema, its backend
// and how the framework treats its documents.
type Collection struct {
	ID                  string        `json:"_id"`
	Schema              schema.Object `json:"schema"`
	Storage             Storage       `json:"storage"`
	DocumentsHaveOwners bool          `json:"documentsHaveOwners"`
	CacheInMemory       *bool         `json:"cacheInMemory,omitempty"`
	AllowHTTPCaching    *bool         `json:"allowHTTPCaching,omitempty"`
	PlainStringIDs      *bool         `json:"plainStringIds,omitempty"`
	AuthRoutes          *AuthRoutes   `json:"authRoutes,omitempty"`
	Admin               *Admin        `json:"admin,omitempty"`
}

// Catalog is the ordered list of bootstrap collections.
type Catalog []Collection

// IDs returns the collection ids in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i, col := range c {
		ids[i] = col.ID
	}
	return ids
}

// Get returns the collection with the given id.
func (c Catalog) Get(id string) (Collection, error) {
	for _, col := range c {
		if col.ID == id {
			return col, nil
		}
	}
	return Collection{}, fmt.Errorf("%w: %q", ErrUnknownCollection, id)
}
