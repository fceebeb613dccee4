package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver for hosted setups.
)

// mysqlSchema mirrors the SQLite blob table for MySQL-compatible
// servers (including Dolt), letting several devices share one store.
const mysqlSchema = `
CREATE TABLE IF NOT EXISTS blobs (
    blob_key   VARCHAR(255) PRIMARY KEY,
    data       LONGBLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

// MySQL implements Provider against a MySQL-compatible server.
type MySQL struct {
	db *sql.DB
}

// OpenMySQL connects using the given DSN and creates the blob table if
// it does not exist.
func OpenMySQL(ctx context.Context, dsn string) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping mysql: %w", err)
	}
	if _, err := db.ExecContext(ctx, mysqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create mysql schema: %w", err)
	}
	return &MySQL{db: db}, nil
}

// Load returns the blob for key, or nil bytes if the key is absent.
func (m *MySQL) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := m.db.QueryRowContext(ctx, "SELECT data FROM blobs WHERE blob_key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %q: %w", key, err)
	}
	return data, nil
}

// Save upserts the blob under key.
func (m *MySQL) Save(ctx context.Context, key string, data []byte) error {
	const q = `
		INSERT INTO blobs (blob_key, data)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data)`
	if _, err := m.db.ExecContext(ctx, q, key, data); err != nil {
		return fmt.Errorf("store: save %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (m *MySQL) Close() error {
	if err := m.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
