package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/loykin/catalogup/internal/common"
	"github.com/loykin/catalogup/internal/constants"
	"github.com/loykin/catalogup/internal/schema"
)

// Embed the bookkeeping migrations for both backends
//
//go:embed migrations/*/*.sql
var migrationFS embed.FS

// goose keeps its settings in package globals
var gooseMu sync.Mutex

// gooseLogger routes goose output through the structured logger.
type gooseLogger struct {
	logger *common.Logger
}

func (g gooseLogger) Fatal(v ...interface{}) {
	g.logger.Error(fmt.Sprint(v...))
	os.Exit(1)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

func (g gooseLogger) Print(v ...interface{})   { g.logger.Debug(fmt.Sprint(v...)) }
func (g gooseLogger) Println(v ...interface{}) { g.logger.Debug(fmt.Sprint(v...)) }
func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Debug(fmt.Sprintf(format, v...))
}

// runMigrations applies the embedded migrations for dialect.
func runMigrations(db *sql.DB, dialect schema.Dialect) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationFS)
	goose.SetTableName(constants.GooseVersionTable)
	goose.SetLogger(gooseLogger{logger: common.GetLogger().WithComponent("goose").WithStore(dialect.Name())})

	var dir string
	switch dialect.Name() {
	case schema.DriverPostgres:
		if err := goose.SetDialect("postgres"); err != nil {
			return err
		}
		dir = "migrations/postgres"
	case schema.DriverSqlite:
		if err := goose.SetDialect("sqlite3"); err != nil {
			return err
		}
		dir = "migrations/sqlite"
	default:
		return fmt.Errorf("unsupported dialect for migrations: %s", dialect.Name())
	}
	return goose.Up(db, dir)
}
