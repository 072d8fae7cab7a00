// Command migrate applies or rolls back the SQLite schema.
//
// Usage:
//
//	migrate [up|down|version]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"bilancio/internal/cli"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|version]\n", os.Args[0])
		flag.PrintDefaults()
	}
	dbPath := flag.String("db", "", "SQLite database path (defaults to SQLITE_DB_PATH)")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentMigrate)

	path := cfg.SQLiteDBPath
	if *dbPath != "" {
		path = *dbPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("Failed to create database directory", log.FieldError, err, "path", path)
		os.Exit(1)
	}
	dsn := storage.DSN(path, cfg.SQLiteBusyTimeout)

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	switch cmd {
	case "up":
		if err := storage.RunMigrations(dsn); err != nil {
			logger.Error("Migration failed", log.FieldError, err, "path", path)
			os.Exit(1)
		}
	case "down":
		if err := storage.MigrateDown(dsn); err != nil {
			logger.Error("Rollback failed", log.FieldError, err, "path", path)
			os.Exit(1)
		}
	case "version":
	default:
		flag.Usage()
		os.Exit(2)
	}

	version, dirty, err := storage.MigrationVersion(dsn)
	if err != nil {
		logger.Error("Failed to read migration version", log.FieldError, err, "path", path)
		os.Exit(1)
	}
	logger.Info("Schema version", "command", cmd, "version", version, "dirty", dirty, "path", path)
}
