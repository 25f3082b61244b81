package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config groups application settings read through Viper from flags,
// environment variables and an optional config.env file, in that order.
type Config struct {
	App    AppConfig
	Store  StoreConfig
	Report ReportConfig
}

// AppConfig general settings.
type AppConfig struct {
	Env      string // development or production
	LogLevel string
}

// StoreConfig selects the backing store.
type StoreConfig struct {
	Backend          string // sqlite, postgres or csv
	SQLitePath       string
	DatabaseURL      string
	DataDir          string // csv backend directory
	OnCustomerDelete string // restrict, cascade or orphan
}

// ReportConfig report output.
type ReportConfig struct {
	Dir string
}

// Backends accepted by StoreConfig.Backend.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendCSV      = "csv"
)

// DefaultConfigFile is read from the working directory when --config is not given.
const DefaultConfigFile = "config.env"

// flag name -> config key (also the environment variable, upper-cased)
var flagKeys = map[string]string{
	"env":                "app_env",
	"log-level":          "log_level",
	"backend":            "store_backend",
	"sqlite-path":        "sqlite_path",
	"database-url":       "database_url",
	"data-dir":           "data_dir",
	"on-customer-delete": "on_customer_delete",
	"report-dir":         "report_dir",
}

// RegisterFlags adds the persistent flags Load understands.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (KEY=value lines)")
	flags.String("env", "", "environment: development or production")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("backend", "", "backing store: sqlite, postgres or csv")
	flags.String("sqlite-path", "", "SQLite database file")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("data-dir", "", "directory of the csv backend")
	flags.String("on-customer-delete", "", "orders of a deleted customer: restrict, cascade or orphan")
	flags.String("report-dir", "", "directory reports are written to")
}

// Load resolves the configuration. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("env")
	configFile := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigFile(DefaultConfigFile)
		if err := v.ReadInConfig(); err != nil && !missing(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("app_env"),
			LogLevel: v.GetString("log_level"),
		},
		Store: StoreConfig{
			Backend:          strings.ToLower(v.GetString("store_backend")),
			SQLitePath:       v.GetString("sqlite_path"),
			DatabaseURL:      v.GetString("database_url"),
			DataDir:          v.GetString("data_dir"),
			OnCustomerDelete: v.GetString("on_customer_delete"),
		},
		Report: ReportConfig{
			Dir: v.GetString("report_dir"),
		},
	}
	switch cfg.Store.Backend {
	case BackendSQLite, BackendPostgres, BackendCSV:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	return cfg, nil
}

func missing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "production")
	v.SetDefault("log_level", "warn")
	v.SetDefault("store_backend", BackendSQLite)
	v.SetDefault("sqlite_path", "clientbook.db")
	v.SetDefault("database_url", "")
	v.SetDefault("data_dir", ".")
	v.SetDefault("on_customer_delete", "restrict")
	v.SetDefault("report_dir", ".")
}
