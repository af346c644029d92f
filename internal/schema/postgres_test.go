package schema

import (
	"context"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway PostgreSQL container, skipping when Docker is unavailable.
func startPostgres(t *testing.T) Config {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	req := tc.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "ambari",
			"POSTGRES_PASSWORD": "bigdata",
			"POSTGRES_DB":       "ambari",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		),
	}
	pg, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("skipping Postgres container test: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return Config{
		Driver: "postgres",
		DSN:    fmt.Sprintf("postgres://ambari:bigdata@%s:%s/ambari?sslmode=disable", host, port.Port()),
	}
}

func TestPostgresAccessor_EndToEnd(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	acc, err := OpenAccessor(ctx, cfg)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer func() { _ = acc.DB().Close() }()

	ok, err := acc.TableExists(ctx, "ambari_configuration")
	if err != nil || ok {
		t.Fatalf("TableExists before create = %v, %v", ok, err)
	}
	if _, err := acc.ExecuteUpdate(ctx, "CREATE TABLE ambari_configuration (category_name VARCHAR(100) NOT NULL, property_name VARCHAR(100) NOT NULL, property_value VARCHAR(2048))"); err != nil {
		t.Fatalf("create: %v", err)
	}
	ok, err = acc.TableExists(ctx, "AMBARI_CONFIGURATION")
	if err != nil || !ok {
		t.Fatalf("TableExists is expected to fold case: %v, %v", ok, err)
	}
	ok, err = acc.ColumnExists(ctx, "ambari_configuration", "property_name")
	if err != nil || !ok {
		t.Fatalf("ColumnExists = %v, %v", ok, err)
	}
	if _, err := acc.ExecuteUpdate(ctx, "INSERT INTO ambari_configuration VALUES ($1, $2, $3), ($1, $4, $3)", "ldap-configuration", "a", "x", "b"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	n, err := acc.ExecuteUpdate(ctx, "UPDATE ambari_configuration SET property_value = 'y'")
	if err != nil || n != 2 {
		t.Fatalf("update = %d, %v; want 2, nil", n, err)
	}
}
