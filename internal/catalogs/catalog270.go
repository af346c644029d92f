package catalogs

import (
	"context"

	"github.com/loykin/catalogup/internal/catalog"
	"github.com/loykin/catalogup/internal/guard"
	"github.com/loykin/catalogup/internal/schema"
)

const (
	AmbariConfigurationTable = "ambari_configuration"

	createAmbariConfigurationSQL = "CREATE TABLE " + AmbariConfigurationTable + " (" +
		"category_name VARCHAR(100) NOT NULL, " +
		"property_name VARCHAR(100) NOT NULL, " +
		"property_value VARCHAR(2048), " +
		"CONSTRAINT PK_ambari_configuration PRIMARY KEY (category_name, property_name))"
)

// Catalog270 introduces the ambari_configuration table.
type Catalog270 struct {
	catalog.Base
}

func NewCatalog270(acc schema.Accessor) *Catalog270 {
	return &Catalog270{Base: catalog.NewBase("2.7.0", "create ambari_configuration", acc)}
}

func (c *Catalog270) ExecuteDDLUpdates(ctx context.Context) (int64, error) {
	return guard.IfTableMissing(AmbariConfigurationTable, createAmbariConfigurationSQL).Apply(ctx, c.Accessor)
}
