// Package postgres provides a PostgreSQL-backed RecordStore.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ttpunch/blog/store"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresRecordStore implements store.RecordStore using PostgreSQL.
type PostgresRecordStore struct {
	pool      DBPool
	tableName string
}

var _ store.RecordStore = (*PostgresRecordStore)(nil)

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "content_records"
}

// NewPostgresRecordStore creates a new Postgres record store.
func NewPostgresRecordStore(ctx context.Context, opts PostgresOptions) (*PostgresRecordStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "content_records"
	}

	return &PostgresRecordStore{
		pool:      pool,
		tableName: tableName,
	}, nil
}

// NewPostgresRecordStoreWithPool creates a new Postgres record store with an
// existing pool. Useful for testing with mocks.
func NewPostgresRecordStoreWithPool(pool DBPool, tableName string) *PostgresRecordStore {
	if tableName == "" {
		tableName = "content_records"
	}
	return &PostgresRecordStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *PostgresRecordStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			status TEXT NOT NULL,
			outline JSONB,
			pipeline_state JSONB,
			title TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			excerpt TEXT NOT NULL DEFAULT '',
			cover_image TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_status ON %s (status);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresRecordStore) Close() {
	s.pool.Close()
}

func (s *PostgresRecordStore) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// Save upserts the record.
func (s *PostgresRecordStore) Save(ctx context.Context, record *store.Record) error {
	now := time.Now()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query, args, err := s.builder().
		Insert(s.tableName).
		Columns("id", "topic", "status", "outline", "pipeline_state",
			"title", "slug", "content", "excerpt", "cover_image",
			"created_at", "updated_at").
		Values(record.ID, record.Topic, string(record.Status),
			nullableJSON(record.Outline), nullableJSON(record.PipelineState),
			record.Title, record.Slug, record.Content, record.Excerpt, record.CoverImage,
			createdAt, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			topic = EXCLUDED.topic,
			status = EXCLUDED.status,
			outline = EXCLUDED.outline,
			pipeline_state = EXCLUDED.pipeline_state,
			title = EXCLUDED.title,
			slug = EXCLUDED.slug,
			content = EXCLUDED.content,
			excerpt = EXCLUDED.excerpt,
			cover_image = EXCLUDED.cover_image,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save query: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Load retrieves a record by id.
func (s *PostgresRecordStore) Load(ctx context.Context, id string) (*store.Record, error) {
	query, args, err := s.recordSelect().
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build load query: %w", err)
	}

	record, err := scanRecord(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return record, nil
}

// List returns all records, newest first.
func (s *PostgresRecordStore) List(ctx context.Context) ([]*store.Record, error) {
	query, args, err := s.recordSelect().
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*store.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}
	return records, nil
}

// Delete removes a record.
func (s *PostgresRecordStore) Delete(ctx context.Context, id string) error {
	query, args, err := s.builder().
		Delete(s.tableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// TransitionStatus moves the record between statuses atomically.
func (s *PostgresRecordStore) TransitionStatus(ctx context.Context, id string, from, to store.Status) error {
	query, args, err := s.builder().
		Update(s.tableName).
		Set("status", string(to)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build transition query: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to transition status: %w", err)
	}
	if tag.RowsAffected() > 0 {
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

func (s *PostgresRecordStore) recordSelect() sq.SelectBuilder {
	return s.builder().
		Select("id", "topic", "status", "outline", "pipeline_state",
			"title", "slug", "content", "excerpt", "cover_image",
			"created_at", "updated_at").
		From(s.tableName)
}

func scanRecord(row pgx.Row) (*store.Record, error) {
	var record store.Record
	var status string
	var outline, pipelineState []byte

	err := row.Scan(&record.ID, &record.Topic, &status, &outline, &pipelineState,
		&record.Title, &record.Slug, &record.Content, &record.Excerpt, &record.CoverImage,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	record.Status = store.Status(status)
	record.Outline = outline
	record.PipelineState = pipelineState
	return &record, nil
}

func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return data
}
