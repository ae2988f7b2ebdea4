package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/jobboard/jobfilter/jobfilter"
)

// EnvPrefix maps database.path to JOBFILTER_DATABASE_PATH and so on
const EnvPrefix = "JOBFILTER"

type Database struct {
	Backend string
	Path    string
	Driver  string
	DSN     string
	Schema  string
}

type Log struct {
	Level  string
	Format string
}

type Filter struct {
	MaxDepth   int
	PerPage    int
	MaxPerPage int
}

type AttributeCache struct {
	Enabled bool
	Size    int
	TTL     time.Duration
}

type Config struct {
	Database       Database
	Log            Log
	Filter         Filter
	AttributeCache AttributeCache
}

func Default() Config {
	return Config{
		Database: Database{
			Backend: "sqlite",
			Path:    "jobfilter.db",
			Driver:  "sqlite",
			Schema:  "jobfilter",
		},
		Log: Log{Level: "info", Format: "text"},
		Filter: Filter{
			MaxDepth:   jobfilter.DefaultMaxDepth,
			PerPage:    jobfilter.DefaultPerPage,
			MaxPerPage: jobfilter.DefaultMaxPerPage,
		},
		AttributeCache: AttributeCache{
			Enabled: true,
			Size:    jobfilter.DefaultAttributeCacheSize,
			TTL:     jobfilter.DefaultAttributeCacheTTL,
		},
	}
}

// Load reads jobfilter.yaml from configPath when present, then applies
// JOBFILTER_* environment overrides on top of the defaults.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("jobfilter")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.backend", cfg.Database.Backend)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.driver", cfg.Database.Driver)
	v.SetDefault("database.dsn", cfg.Database.DSN)
	v.SetDefault("database.schema", cfg.Database.Schema)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("filter.max_depth", cfg.Filter.MaxDepth)
	v.SetDefault("filter.per_page", cfg.Filter.PerPage)
	v.SetDefault("filter.max_per_page", cfg.Filter.MaxPerPage)
	v.SetDefault("attribute_cache.enabled", cfg.AttributeCache.Enabled)
	v.SetDefault("attribute_cache.size", cfg.AttributeCache.Size)
	v.SetDefault("attribute_cache.ttl", cfg.AttributeCache.TTL)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, jobfilter.Wrap(jobfilter.ErrConfig, "read config", err)
		}
	}

	cfg.Database = Database{
		Backend: v.GetString("database.backend"),
		Path:    v.GetString("database.path"),
		Driver:  v.GetString("database.driver"),
		DSN:     v.GetString("database.dsn"),
		Schema:  v.GetString("database.schema"),
	}
	cfg.Log = Log{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Filter = Filter{
		MaxDepth:   v.GetInt("filter.max_depth"),
		PerPage:    v.GetInt("filter.per_page"),
		MaxPerPage: v.GetInt("filter.max_per_page"),
	}
	cfg.AttributeCache = AttributeCache{
		Enabled: v.GetBool("attribute_cache.enabled"),
		Size:    v.GetInt("attribute_cache.size"),
		TTL:     v.GetDuration("attribute_cache.ttl"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Database.Backend {
	case "sqlite":
		if c.Database.Path == "" {
			return jobfilter.New(jobfilter.ErrConfig, "database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return jobfilter.New(jobfilter.ErrConfig, "database.dsn is required for postgres")
		}
	default:
		return jobfilter.New(jobfilter.ErrConfig, fmt.Sprintf("unknown database.backend %q", c.Database.Backend))
	}
	if c.Filter.PerPage > c.Filter.MaxPerPage {
		return jobfilter.New(jobfilter.ErrConfig, "filter.per_page exceeds filter.max_per_page")
	}
	return nil
}

// Options converts the filter and cache settings for jobfilter.Create/Open.
func (c Config) Options(log logrus.FieldLogger) jobfilter.Options {
	opts := jobfilter.DefaultOptions()
	opts.MaxDepth = c.Filter.MaxDepth
	opts.DefaultPerPage = c.Filter.PerPage
	opts.MaxPerPage = c.Filter.MaxPerPage
	opts.Logger = log
	opts.AttributeCacheSize = 0
	if c.AttributeCache.Enabled {
		opts.AttributeCacheSize = c.AttributeCache.Size
		opts.AttributeCacheTTL = c.AttributeCache.TTL
	}
	return opts
}
