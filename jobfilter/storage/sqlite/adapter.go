package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jobboard/jobfilter/jobfilter/storage"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlbuilder"
)

// Driver names this adapter knows how to open. The caller imports the driver.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite
	DriverCGO     = "sqlite3" // github.com/mattn/go-sqlite3
)

type Adapter struct {
	Path       string
	DriverName string
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: DriverModernc}
}

func NewWithDriver(path, driver string) *Adapter {
	if driver == "" {
		driver = DriverModernc
	}
	return &Adapter{Path: path, DriverName: driver}
}

func (a *Adapter) Backend() storage.Backend    { return storage.BackendSQLite }
func (a *Adapter) Dialect() sqlbuilder.Dialect { return sqlbuilder.SQLite }
func (a *Adapter) ID() string                  { return a.Path }
func (a *Adapter) Close() error                { return nil }
func (a *Adapter) SQL() storage.SQL            { return SQLTemplates }

// dsn adds the busy timeout and foreign key pragmas in the spelling the
// selected driver understands.
func (a *Adapter) dsn() string {
	var params string
	switch a.DriverName {
	case DriverCGO:
		params = "_busy_timeout=5000&_foreign_keys=on"
	default:
		params = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	if strings.Contains(a.Path, "?") {
		return a.Path + "&" + params
	}
	return a.Path + "?" + params
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(a.DriverName, a.dsn())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return err
	}
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode=WAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")
	return storage.WriteMeta(ctx, db, a.SQL())
}

func (a *Adapter) OpenSchema(ctx context.Context, db *sql.DB) error {
	return storage.CheckMeta(ctx, db, a.SQL())
}
