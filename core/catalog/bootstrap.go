package catalog

import (
	"context"

	"github.com/artpar/docbase/core/compose"
	"github.com/artpar/docbase/core/resolve"
	"github.com/artpar/docbase/core/schema"
)

// Build composes the settings schema from mods and returns the bootstrap
// catalog: settings, users and collection, in that order. If composition
// fails the error is returned as is and no catalog is produced.
func Build(ctx context.Context, mods compose.Modules, host resolve.Host, opts ...compose.Option) (Catalog, error) {
	props, err := compose.SettingsProperties(ctx, mods, host, opts...)
	if err != nil {
		return nil, err
	}

	return Catalog{Settings(props), Users(), Meta()}, nil
}

// Settings returns the descriptor of the singleton settings document.
// Keys not contributed by some module are rejected.
func Settings(props *schema.Fragment) Collection {
	return Collection{
		ID: SettingsID,
		Schema: schema.Object{
			AdditionalProperties: schema.Closed(),
			Properties:           props,
		},
		Storage:             StorageFile,
		DocumentsHaveOwners: false,
	}
}

// Roles lists the user roles known to the framework.
func Roles() []string {
	return []string{"Admin", "Anonymous", "Authenticated", "Test"}
}

// Users returns the users collection descriptor.
func Users() Collection {
	return Collection{
		ID: UsersID,
		Schema: schema.Object{
			AdditionalProperties: schema.Closed(),
			Properties: schema.NewFragment(
				schema.P("email", schema.String{}),
				schema.P("password", schema.String{Description: "hashed password and salt"}),
				schema.P("fullName", schema.String{}),
				schema.P("roles", schema.Array{
					Items:       schema.String{Enum: Roles()},
					UniqueItems: true,
					Format:      schema.FormatCheckbox,
				}),
			),
			Required: []string{"email", "password"},
		},
		Admin:               &Admin{Columns: []string{"email", "roles"}},
		Storage:             StorageFile,
		DocumentsHaveOwners: true,
	}
}

// Meta returns the descriptor of the collection meta-collection. Its schema
// validates every collection descriptor, including this one.
func Meta() Collection {
	storages := Storages()
	storageNames := make([]string, len(storages))
	for i, s := range storages {
		storageNames[i] = string(s)
	}

	restartNote := " - if this value is set or changed, server must be restarted"

	return Collection{
		ID: CollectionID,
		Schema: schema.Object{
			AdditionalProperties: schema.Closed(),
			Properties: schema.NewFragment(
				schema.P("_id", schema.String{}),
				schema.P("schema", schema.Object{
					Format:      schema.FormatSchema,
					Description: "JSON Schema used for validating the data and generating the admin editor.",
				}),
				schema.P("storage", schema.String{
					Enum:        storageNames,
					Description: "Method for persisting the data in this collection.",
				}),
				schema.P("documentsHaveOwners", schema.Boolean{Format: schema.FormatCheckbox}),
				schema.P("cacheInMemory", schema.Boolean{
					Format:      schema.FormatCheckbox,
					Description: "If set, a full copy of this collection will be stored in memory.",
				}),
				schema.P("allowHTTPCaching", schema.Boolean{
					Format:      schema.FormatCheckbox,
					Description: "If unset, headers will be sent to prevent caching",
				}),
				schema.P("plainStringIds", schema.Boolean{
					Format:      schema.FormatCheckbox,
					Description: "If set, collection will use a string id instead of PostgreSQL uuid",
				}),
				schema.P("authRoutes", schema.Object{
					AdditionalProperties: schema.Closed(),
					Description:          "if collection is to allow authentication using its docs, all of these routes need to have value",
					Properties: schema.NewFragment(
						schema.P("login", schema.String{Description: "route for login POST" + restartNote}),
						schema.P("register", schema.String{Description: "route for register POST" + restartNote}),
						schema.P("me", schema.String{Description: "route for me GET" + restartNote}),
					),
				}),
				schema.P("admin", schema.Object{
					AdditionalProperties: schema.Closed(),
					Properties: schema.NewFragment(
						schema.P("columns", schema.Array{Items: schema.String{}}),
					),
					Required: []string{"columns"},
				}),
			),
			Required: []string{"_id", "storage", "documentsHaveOwners", "schema"},
		},
		Admin:               &Admin{Columns: []string{"_id", "storage", "documentsHaveOwners"}},
		Storage:             StorageFile,
		CacheInMemory:       schema.Bool(false),
		DocumentsHaveOwners: false,
	}
}
