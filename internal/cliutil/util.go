package cliutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jobboard/jobfilter/internal/cliopt"
	"github.com/jobboard/jobfilter/internal/config"
	"github.com/jobboard/jobfilter/internal/logging"
	"github.com/jobboard/jobfilter/jobfilter"
	"github.com/jobboard/jobfilter/jobfilter/storage"
	"github.com/jobboard/jobfilter/jobfilter/storage/postgres"
	"github.com/jobboard/jobfilter/jobfilter/storage/sqlite"
)

type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatJSON   OutputFormat = "json"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(s) {
	case FormatPretty, FormatJSON:
		return OutputFormat(s)
	default:
		return FormatPretty
	}
}

func PrintJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// NewAdapter picks the storage backend named by the configuration.
func NewAdapter(db config.Database) storage.Adapter {
	switch db.Backend {
	case "postgres":
		return postgres.New(db.DSN, db.Schema)
	default:
		return sqlite.NewWithDriver(db.Path, db.Driver)
	}
}

// OpenStore resolves the configuration and opens the job database. With
// create set the tables are created first.
func OpenStore(ctx context.Context, g cliopt.GlobalOptions, logOut io.Writer, create bool) (*jobfilter.Store, *logrus.Logger, error) {
	cfg, err := g.Config()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, nil, jobfilter.Wrap(jobfilter.ErrConfig, "logging", err)
	}

	adapter := NewAdapter(cfg.Database)
	opts := cfg.Options(log)
	log.WithFields(logrus.Fields{"backend": adapter.Backend(), "database": adapter.ID()}).Debug("opening store")

	var st *jobfilter.Store
	if create {
		st, err = jobfilter.Create(ctx, adapter, opts)
	} else {
		st, err = jobfilter.Open(ctx, adapter, opts)
	}
	if err != nil {
		return nil, nil, err
	}
	return st, log, nil
}
