// Package duckdb wraps the embedded DuckDB database used as the
// service's single file-backed relational store.
package duckdb

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

// Client manages the DuckDB connection. path may be a file path for
// persistent storage or empty for an in-memory database. The driver
// parses the DSN as a URL, so ":memory:" is not a valid spelling here.
type Client struct {
	db   *sql.DB
	path string
}

// NewClient opens the database and verifies the connection.
func NewClient(path string) (*Client, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	// Writes must serialize through one connection so check-then-act
	// statements keep their ordering against the same file.
	db.SetMaxOpenConns(1)
	return &Client{db: db, path: path}, nil
}

// DB returns the underlying sql.DB.
func (c *Client) DB() *sql.DB { return c.db }

// Path returns the backing file path.
func (c *Client) Path() string { return c.path }

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
