package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"clientbook/model"
	"clientbook/tracker"
)

// Config selects and addresses the relational backend.
type Config struct {
	Driver      string // sqlite or postgres
	SQLitePath  string
	DatabaseURL string
	Verbose     bool // log every SQL statement
}

// Open connects to the configured database and migrates the customer and
// order tables. Foreign keys are not created: referential rules are applied
// by the records package so every backend behaves the same.
func Open(cfg Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if cfg.Verbose {
		gcfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		gdb, err = openSQLite(cfg.SQLitePath, gcfg)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend needs a database URL")
		}
		gdb, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gcfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := tracker.New(gdb).AutoMigrate(&model.Customer{}, &model.Order{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return gdb, nil
}

func openSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite backend needs a file path")
	}
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps writers serialized on the file
	sqlDB.SetMaxOpenConns(1)
	if err = sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return gorm.Open(sqlite.Dialector{Conn: sqlDB}, gcfg)
}

// Close releases the pool behind gdb.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
