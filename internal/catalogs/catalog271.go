package catalogs

import (
	"context"

	"github.com/loykin/catalogup/internal/catalog"
	"github.com/loykin/catalogup/internal/guard"
	"github.com/loykin/catalogup/internal/schema"
)

const (
	ConfigGroupTable          = "configgroup"
	PropertyDescriptionColumn = "property_description"

	addPropertyDescriptionSQL = "ALTER TABLE " + AmbariConfigurationTable + " ADD " + PropertyDescriptionColumn + " VARCHAR(255)"

	RenameInfraConfigGroupTagSQL = "UPDATE " + ConfigGroupTable + " SET tag = 'AMBARI_INFRA_SOLR' WHERE tag = 'AMBARI_INFRA'"
)

// Catalog271 documents configuration properties and follows the AMBARI_INFRA service
// rename in config groups.
type Catalog271 struct {
	catalog.Base
}

func NewCatalog271(acc schema.Accessor) *Catalog271 {
	return &Catalog271{Base: catalog.NewBase("2.7.1", "property descriptions, infra solr config groups", acc)}
}

func (c *Catalog271) ExecuteDDLUpdates(ctx context.Context) (int64, error) {
	return guard.IfColumnMissing(AmbariConfigurationTable, PropertyDescriptionColumn, addPropertyDescriptionSQL).
		Apply(ctx, c.Accessor)
}

func (c *Catalog271) ExecuteDMLUpdates(ctx context.Context) (int64, error) {
	return guard.IfTableExists(ConfigGroupTable, RenameInfraConfigGroupTagSQL).
		Named("rename AMBARI_INFRA config group tag").
		Apply(ctx, c.Accessor)
}
