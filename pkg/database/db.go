package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const (
	driverName   = "postgres"
	maxOpenConns = 2
)

// DB is a plain database/sql handle for one-shot tooling such as schema
// setup. The service itself talks to Postgres through pgx.
type DB struct {
	*sql.DB
}

func Connect(dsn string) (*DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)

	return &DB{db}, nil
}

// TableExists reports whether a table exists in the public schema.
func (db *DB) TableExists(table string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_name = $1
	)`, table).Scan(&exists)
	return exists, err
}
