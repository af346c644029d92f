// Package catalogs holds the release upgrade catalogs shipped with catalogup.
package catalogs

import (
	"github.com/loykin/catalogup/internal/catalog"
	"github.com/loykin/catalogup/internal/registry"
	"github.com/loykin/catalogup/internal/schema"
)

// All returns every shipped catalog bound to acc, in release order.
func All(acc schema.Accessor) []catalog.Catalog {
	return []catalog.Catalog{
		NewCatalog270(acc),
		NewCatalog271(acc),
		NewCatalog272(acc),
	}
}

// Register adds every shipped catalog bound to acc to r.
func Register(r *registry.Registry, acc schema.Accessor) error {
	for _, c := range All(acc) {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a registry holding every shipped catalog.
func Default(acc schema.Accessor) *registry.Registry {
	return registry.New().MustRegister(All(acc)...)
}
