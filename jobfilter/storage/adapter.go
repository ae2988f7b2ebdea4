package storage

import (
	"context"
	"database/sql"

	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// MetaMagic marks a database created by this package
const (
	MetaMagicKey   = "jobfilter_magic"
	MetaMagic      = "jobfilter"
	MetaVersionKey = "jobfilter_version"
	MetaVersion    = "1"
)

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	Dialect() sqlbuilder.Dialect
	ID() string

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	// CreateSchema creates every table the filter reads and writes
	CreateSchema(ctx context.Context, db *sql.DB) error
	// OpenSchema checks that db was created by CreateSchema
	OpenSchema(ctx context.Context, db *sql.DB) error

	SQL() SQL
}

// SQL holds the fixed statements that are not built per request
type SQL struct {
	GetMeta string
	SetMeta string
}
