// Package sqlitestore implements store.Store on top of SQLite.
//
// WHY SQLITE FOR A FLAT-COLLECTION STORE?
// The contract is still load-all / rewrite-all — SQLite is not used for row
// level updates here. What it buys over a flat file is a real transactional
// replace (the whole rewrite commits or nothing does) and a single database
// file shared by both collections instead of one JSON file each.
//
// Each entity is stored as a JSON document in a `doc` column, keyed by
// collection name and position. Keeping the JSON form means the snake_case
// field convention is identical across both backends, and an entity can be
// moved between them by copy-paste.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// SQLite — works everywhere Go works.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" in its init function.
	_ "modernc.org/sqlite"

	"github.com/sakif/railbook/internal/store"
)

// DB wraps the sql.DB connection pool shared by all collections in one
// database file.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and prepares the
// collections table. Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: opening database: %w", err)
	}

	// Ping forces a real connection now, so a bad path surfaces here rather
	// than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlitestore: pinging database: %w", err)
	}

	// WAL keeps readers unblocked during the full-collection rewrite.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlitestore: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlitestore: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool. Defer this wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the collections table. CREATE TABLE IF NOT EXISTS is
// idempotent, so this is safe to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT    NOT NULL,
			pos  INTEGER NOT NULL,
			doc  TEXT    NOT NULL,
			PRIMARY KEY (name, pos)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating collections table: %w", err)
	}
	return nil
}

// Collection is one named collection inside the database, e.g. "users".
// It satisfies store.Store[T].
type Collection[T any] struct {
	db   *DB
	name string
}

var _ store.Store[struct{}] = (*Collection[struct{}])(nil)

// NewCollection binds a typed collection to its name in the database.
func NewCollection[T any](db *DB, name string) *Collection[T] {
	return &Collection[T]{db: db, name: name}
}

// Load reads every document of the collection in stored order. An empty or
// never-written collection yields an empty slice, not an error.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	rows, err := c.db.conn.QueryContext(ctx,
		`SELECT doc FROM collections WHERE name = ? ORDER BY pos`,
		c.name,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: loading %s: %w", c.name, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("sqlitestore: scanning %s row: %w", c.name, err)
		}
		var item T
		if err := json.Unmarshal([]byte(doc), &item); err != nil {
			return nil, fmt.Errorf("sqlitestore: decoding %s document: %w", c.name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore: iterating %s: %w", c.name, err)
	}
	return items, nil
}

// Save replaces the entire collection in one transaction: delete everything
// under the name, reinsert in order, commit. A failure at any point rolls the
// transaction back, so the previous snapshot survives intact.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	tx, err := c.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: beginning %s rewrite: %w", c.name, err)
	}
	// Rollback is a no-op after a successful Commit.
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM collections WHERE name = ?`, c.name,
	); err != nil {
		return fmt.Errorf("sqlitestore: clearing %s: %w", c.name, err)
	}

	for pos, item := range items {
		doc, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("sqlitestore: encoding %s document %d: %w", c.name, pos, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collections (name, pos, doc) VALUES (?, ?, ?)`,
			c.name, pos, string(doc),
		); err != nil {
			return fmt.Errorf("sqlitestore: inserting %s document %d: %w", c.name, pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore: committing %s rewrite: %w", c.name, err)
	}
	return nil
}
