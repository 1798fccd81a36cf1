// Package sqlite provides a SQLite-backed RecordStore.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ttpunch/blog/store"
)

// SqliteRecordStore implements store.RecordStore using SQLite.
type SqliteRecordStore struct {
	db        *sql.DB
	tableName string
}

var _ store.RecordStore = (*SqliteRecordStore)(nil)

// SqliteOptions configures the SQLite connection.
type SqliteOptions struct {
	Path      string
	TableName string // Default "content_records"
}

// NewSqliteRecordStore opens the database and initializes the schema.
func NewSqliteRecordStore(opts SqliteOptions) (*SqliteRecordStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "content_records"
	}

	s := &SqliteRecordStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// InitSchema creates the records table if it doesn't exist.
func (s *SqliteRecordStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			status TEXT NOT NULL,
			outline TEXT,
			pipeline_state TEXT,
			title TEXT,
			slug TEXT,
			content TEXT,
			excerpt TEXT,
			cover_image TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_status ON %s (status);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SqliteRecordStore) Close() error {
	return s.db.Close()
}

// Save upserts the record.
func (s *SqliteRecordStore) Save(ctx context.Context, record *store.Record) error {
	now := time.Now()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query, args, err := sq.Insert(s.tableName).
		Columns("id", "topic", "status", "outline", "pipeline_state",
			"title", "slug", "content", "excerpt", "cover_image",
			"created_at", "updated_at").
		Values(record.ID, record.Topic, string(record.Status),
			nullableBlob(record.Outline), nullableBlob(record.PipelineState),
			record.Title, record.Slug, record.Content, record.Excerpt, record.CoverImage,
			createdAt, now).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			topic = excluded.topic,
			status = excluded.status,
			outline = excluded.outline,
			pipeline_state = excluded.pipeline_state,
			title = excluded.title,
			slug = excluded.slug,
			content = excluded.content,
			excerpt = excluded.excerpt,
			cover_image = excluded.cover_image,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Load retrieves a record by id.
func (s *SqliteRecordStore) Load(ctx context.Context, id string) (*store.Record, error) {
	query, args, err := recordSelect(s.tableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build load query: %w", err)
	}

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return record, nil
}

// List returns all records, newest first.
func (s *SqliteRecordStore) List(ctx context.Context) ([]*store.Record, error) {
	query, args, err := recordSelect(s.tableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*store.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Delete removes a record.
func (s *SqliteRecordStore) Delete(ctx context.Context, id string) error {
	query, args, err := sq.Delete(s.tableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// TransitionStatus moves the record between statuses atomically.
func (s *SqliteRecordStore) TransitionStatus(ctx context.Context, id string, from, to store.Status) error {
	query, args, err := sq.Update(s.tableName).
		Set("status", string(to)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build transition query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to transition status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a missing record from a status mismatch.
	if _, err := s.Load(ctx, id); errors.Is(err, store.ErrNotFound) {
		return store.ErrNotFound
	} else if err != nil {
		return err
	}
	return store.ErrStatusConflict
}

func recordSelect(table string) sq.SelectBuilder {
	return sq.Select("id", "topic", "status", "outline", "pipeline_state",
		"title", "slug", "content", "excerpt", "cover_image",
		"created_at", "updated_at").
		From(table)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*store.Record, error) {
	var record store.Record
	var status string
	var outline, pipelineState sql.NullString

	err := row.Scan(&record.ID, &record.Topic, &status, &outline, &pipelineState,
		&record.Title, &record.Slug, &record.Content, &record.Excerpt, &record.CoverImage,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	record.Status = store.Status(status)
	if outline.Valid {
		record.Outline = []byte(outline.String)
	}
	if pipelineState.Valid {
		record.PipelineState = []byte(pipelineState.String)
	}
	return &record, nil
}

func nullableBlob(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
