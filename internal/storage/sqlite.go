// ABOUTME: SQLite storage implementation for field documents
// ABOUTME: Provides local-only persistence using pure Go SQLite driver

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/harper/cropfit/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements Repository with a local SQLite database.
// Documents are stored as JSON bodies keyed by (user_id, id).
type SQLiteDB struct {
	db   *sql.DB
	path string
}

// Compile-time check that SQLiteDB implements Repository.
var _ Repository = (*SQLiteDB)(nil)

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "cropfit", "cropfit.db")
}

// NewSQLiteDB creates a new SQLite database at the given path.
// Creates the directory and database file if they don't exist.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteDB{db: db, path: path}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// migrate creates or updates the database schema.
func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS field_documents (
			user_id TEXT NOT NULL,
			id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, id)
		);

		CREATE INDEX IF NOT EXISTS idx_field_documents_user ON field_documents(user_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteDB) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Sync is a no-op for local SQLite (no cloud sync).
func (s *SQLiteDB) Sync() error {
	return nil
}

// Reset deletes every document of the user.
func (s *SQLiteDB) Reset(ctx context.Context, userID string) error {
	if err := RequireUser(userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM field_documents WHERE user_id = ?", userID)
	return err
}

// CreateField writes a new document with a generated id.
func (s *SQLiteDB) CreateField(ctx context.Context, userID, name string, center models.Coordinate, boundary []models.Coordinate) (*models.Field, error) {
	if err := RequireUser(userID); err != nil {
		return nil, err
	}

	doc := NewDocument(name, center, boundary)
	id := uuid.NewString()
	if err := s.put(ctx, userID, id, doc); err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	return doc.Field(id), nil
}

// ImportField writes a record keeping its id, timestamp and favourite flag.
func (s *SQLiteDB) ImportField(ctx context.Context, userID string, field *models.Field) error {
	if err := RequireUser(userID); err != nil {
		return err
	}
	id := field.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := s.put(ctx, userID, id, DocumentFromField(field)); err != nil {
		return fmt.Errorf("import field: %w", err)
	}
	return nil
}

func (s *SQLiteDB) put(ctx context.Context, userID, id string, doc Document) error {
	body, err := doc.Encode()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO field_documents (user_id, id, body, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, id) DO UPDATE SET body = excluded.body, created_at = excluded.created_at`,
		userID, id, string(body), doc.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetField retrieves one field by id.
func (s *SQLiteDB) GetField(ctx context.Context, userID, id string) (*models.Field, error) {
	if err := RequireUser(userID); err != nil {
		return nil, err
	}

	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM field_documents WHERE user_id = ? AND id = ?",
		userID, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get field: %w", err)
	}

	field, _ := DecodeDocument(id, []byte(body))
	return field, nil
}

// ListFields returns every field of the user, oldest first.
func (s *SQLiteDB) ListFields(ctx context.Context, userID string) ([]*models.Field, error) {
	if err := RequireUser(userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, body FROM field_documents WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query fields: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := map[string][]byte{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		docs[id] = []byte(body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query fields: %w", err)
	}

	return DecodeFields(docs), nil
}

// UpdateFavorite overwrites only the favourite key of the document.
func (s *SQLiteDB) UpdateFavorite(ctx context.Context, userID, id string, favorite bool) error {
	if err := RequireUser(userID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var body string
	err = tx.QueryRowContext(ctx,
		"SELECT body FROM field_documents WHERE user_id = ? AND id = ?",
		userID, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get field: %w", err)
	}

	patched, err := PatchFavourite([]byte(body), favorite)
	if err != nil {
		return fmt.Errorf("update favourite: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE field_documents SET body = ? WHERE user_id = ? AND id = ?",
		string(patched), userID, id,
	); err != nil {
		return fmt.Errorf("update favourite: %w", err)
	}

	return tx.Commit()
}

// DeleteField removes one document.
func (s *SQLiteDB) DeleteField(ctx context.Context, userID, id string) error {
	if err := RequireUser(userID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM field_documents WHERE user_id = ? AND id = ?",
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("delete field: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete field: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
