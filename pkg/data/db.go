package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"
)

const (
	CatalogFileName string = "catalog.db"

	schemaVersion = 1
)

var (
	//go:embed sql/*
	f embed.FS
)

// Init creates the catalogue database schema when the file is new.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	_, statErr := os.Stat(dbFilePath)
	isNew := errors.Is(statErr, os.ErrNotExist)

	db, err := GetDB(dbFilePath)
	if err != nil {
		return fmt.Errorf("error opening database: %s: %w", dbFilePath, err)
	}
	defer db.Close()

	var version int
	if !isNew {
		// a missing schema_version table means the file predates the catalogue
		if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
			version = 0
		}
	}

	if version >= schemaVersion {
		return nil
	}

	slog.Debug("creating catalog schema", "path", dbFilePath)
	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		return fmt.Errorf("failed to read the schema creation file: %w", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("failed to create database schema in: %s: %w", dbFilePath, err)
	}
	if _, err := db.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	slog.Debug("catalog schema created", "version", schemaVersion)

	return nil
}

func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %s: %w", path, err)
	}
	return conn, nil
}
