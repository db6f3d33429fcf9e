package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage persists visitor keys in a single SQLite table.
type SQLiteStorage struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the storage table exists.
func OpenSQLite(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Printf("warning: failed to enable WAL mode: %v", err)
	}

	createTableSQL := `
    CREATE TABLE IF NOT EXISTS storage (
        visitor TEXT NOT NULL,
        key TEXT NOT NULL,
        value TEXT NOT NULL,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (visitor, key)
    );`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create storage table: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Get(ctx context.Context, visitor, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM storage WHERE visitor = ? AND key = ?", visitor, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStorage) Set(ctx context.Context, visitor, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO storage (visitor, key, value) VALUES (?, ?, ?)
        ON CONFLICT(visitor, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		visitor, key, value)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
