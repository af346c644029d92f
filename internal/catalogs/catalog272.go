package catalogs

import (
	"context"

	"github.com/loykin/catalogup/internal/catalog"
	"github.com/loykin/catalogup/internal/guard"
	"github.com/loykin/catalogup/internal/schema"
)

const (
	LdapConfigurationCategory = "ldap-configuration"

	oldCollisionBehaviorProperty = "ambari.ldap.advance.collision_behavior"
	newCollisionBehaviorProperty = "ambari.ldap.advanced.collision_behavior"

	// RenameCollisionBehaviorPropertySQL fixes the misspelled LDAP collision behavior key.
	RenameCollisionBehaviorPropertySQL = "UPDATE " + AmbariConfigurationTable +
		" SET property_name = '" + newCollisionBehaviorProperty + "'" +
		" WHERE property_name = '" + oldCollisionBehaviorProperty + "'" +
		" AND category_name = '" + LdapConfigurationCategory + "'"
)

// Catalog272 renames the LDAP sync collision behavior property.
type Catalog272 struct {
	catalog.Base

	// renameCollisionBehavior is the rename step run by ExecuteDMLUpdates; tests replace it.
	renameCollisionBehavior func(ctx context.Context) (int64, error)
}

func NewCatalog272(acc schema.Accessor) *Catalog272 {
	c := &Catalog272{Base: catalog.NewBase("2.7.2", "rename ldap collision behavior property", acc)}
	c.renameCollisionBehavior = c.RenameLdapSynchCollisionBehaviorValue
	return c
}

func (c *Catalog272) ExecuteDMLUpdates(ctx context.Context) (int64, error) {
	return c.renameCollisionBehavior(ctx)
}

// RenameLdapSynchCollisionBehaviorValue renames the property when ambari_configuration
// exists and returns the number of rows changed. A database without the table is left
// untouched.
func (c *Catalog272) RenameLdapSynchCollisionBehaviorValue(ctx context.Context) (int64, error) {
	return guard.IfTableExists(AmbariConfigurationTable, RenameCollisionBehaviorPropertySQL).
		Named("rename ldap collision behavior property").
		Apply(ctx, c.Accessor)
}
