package cliopt

import (
	"github.com/urfave/cli/v2"

	"github.com/jobboard/jobfilter/internal/config"
)

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
// Flags left empty keep the value from the config file or environment.
//
// This is a separate package to avoid import cycles between the root
// command and per-command code.
type GlobalOptions struct {
	ConfigPath string
	Backend    string
	DBPath     string
	Driver     string
	DSN        string
	Schema     string
	LogLevel   string
	LogFormat  string
}

func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "directory holding jobfilter.yaml", Value: "."},
		&cli.StringFlag{Name: "backend", Usage: "backend: sqlite|postgres"},
		&cli.StringFlag{Name: "db", Aliases: []string{"d"}, Usage: "sqlite database file"},
		&cli.StringFlag{Name: "driver", Usage: "sqlite driver: sqlite (pure Go) or sqlite3 (cgo)"},
		&cli.StringFlag{Name: "dsn", Usage: "postgres connection string"},
		&cli.StringFlag{Name: "schema-name", Usage: "postgres schema holding the job tables"},
		&cli.StringFlag{Name: "log-level", Usage: "log level: debug|info|warn|error"},
		&cli.StringFlag{Name: "log-format", Usage: "log format: text|json"},
	}
}

func FromContext(c *cli.Context) GlobalOptions {
	return GlobalOptions{
		ConfigPath: c.String("config"),
		Backend:    c.String("backend"),
		DBPath:     c.String("db"),
		Driver:     c.String("driver"),
		DSN:        c.String("dsn"),
		Schema:     c.String("schema-name"),
		LogLevel:   c.String("log-level"),
		LogFormat:  c.String("log-format"),
	}
}

// Config loads the configuration and applies the flags over it.
func (g GlobalOptions) Config() (config.Config, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	override(&cfg.Database.Backend, g.Backend)
	override(&cfg.Database.Path, g.DBPath)
	override(&cfg.Database.Driver, g.Driver)
	override(&cfg.Database.DSN, g.DSN)
	override(&cfg.Database.Schema, g.Schema)
	override(&cfg.Log.Level, g.LogLevel)
	override(&cfg.Log.Format, g.LogFormat)
	return cfg, cfg.Validate()
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
