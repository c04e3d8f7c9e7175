package db

import (
	"database/sql"
	_ "embed"
	"errors"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// TokenKey is the single settings key holding the bearer token
const TokenKey = "token"

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// New opens (or creates) the database in dataDir and initializes the schema
func New(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	return Open(filepath.Join(dataDir, "eventdesk.db"))
}

// Open opens the database at path; ":memory:" is accepted
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// GetSetting retrieves a setting value by key
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// DeleteSetting removes a setting
func (db *DB) DeleteSetting(key string) error {
	_, err := db.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}

// Token returns the stored bearer token, empty when signed out
func (db *DB) Token() (string, error) {
	return db.GetSetting(TokenKey)
}

// SetToken persists the bearer token
func (db *DB) SetToken(token string) error {
	return db.SetSetting(TokenKey, token)
}

// ClearToken erases the bearer token
func (db *DB) ClearToken() error {
	return db.DeleteSetting(TokenKey)
}
