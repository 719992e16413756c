package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps entries in a single local SQLite file.
// All operations share one connection.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize(ctx context.Context) error {
	ctx, span := startSpan(ctx, "initialize", DriverSQLite)
	defer span.End()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS memories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic TEXT,
			content TEXT,
			tags TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_memories_timestamp ON memories(timestamp);`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return endSpan(span, fmt.Errorf("failed to init schema: %w", err))
		}
	}
	return nil
}

func (s *SQLiteStore) Store(ctx context.Context, topic, content string, tags []string) (int64, error) {
	ctx, span := startSpan(ctx, "store", DriverSQLite)
	defer span.End()

	tagsText, err := encodeTags(tags)
	if err != nil {
		return 0, endSpan(span, err)
	}

	query := `INSERT INTO memories (topic, content, tags) VALUES (?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query, topic, content, tagsText)
	if err != nil {
		return 0, endSpan(span, fmt.Errorf("failed to store memory: %w", err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, endSpan(span, fmt.Errorf("failed to read memory id: %w", err))
	}
	span.SetAttributes(attribute.Int64("memlog.entry_id", id))
	return id, nil
}

func (s *SQLiteStore) Search(ctx context.Context, query string) ([]Entry, error) {
	ctx, span := startSpan(ctx, "search", DriverSQLite)
	defer span.End()
	span.SetAttributes(attribute.Int("memlog.query_length", len(query)))

	pattern := likePattern(query)
	stmt := `SELECT id, topic, content, tags, timestamp FROM memories
		WHERE topic LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\'
		ORDER BY timestamp DESC, id DESC`

	entries, err := s.query(ctx, stmt, pattern, pattern, pattern)
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("failed to search memories: %w", err))
	}
	span.SetAttributes(attribute.Int("memlog.results", len(entries)))
	return entries, nil
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]Entry, error) {
	ctx, span := startSpan(ctx, "list_all", DriverSQLite)
	defer span.End()

	stmt := `SELECT id, topic, content, tags, timestamp FROM memories ORDER BY timestamp DESC, id DESC`
	entries, err := s.query(ctx, stmt)
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("failed to list memories: %w", err))
	}
	span.SetAttributes(attribute.Int("memlog.results", len(entries)))
	return entries, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, stmt string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			id                  int64
			topic, content, tag sql.NullString
			ts                  sql.NullString
		)
		if err := rows.Scan(&id, &topic, &content, &tag, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}

		entry, err := formatEntry(id, topic, content, tag)
		if err != nil {
			return nil, err
		}
		if ts.Valid {
			// Legacy rows with an unparseable timestamp keep the zero time.
			entry.Timestamp, _ = parseTimestamp(ts.String)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memories: %w", err)
	}
	return entries, nil
}
