// Package store persists memory entries in a single relational table.
//
// Two backends share the same schema and statements: SQLite for the local
// single-file case and PostgreSQL for a shared server. Tags are kept as a
// JSON array in one text column and decoded on every read.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/memlog/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var tracer = otel.Tracer("github.com/felixgeelhaar/memlog/internal/store")

// Open constructs the backend named by cfg.Driver and initializes its schema.
// dsn is the already unsealed connection string for postgres.
func Open(ctx context.Context, cfg config.Storage, dsn string) (Storage, error) {
	var (
		s   Storage
		err error
	)

	switch cfg.Driver {
	case DriverSQLite, "":
		s, err = NewSQLiteStore(ctx, cfg.Path)
	case DriverPostgres:
		s, err = NewPostgresStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func formatEntry(id int64, topic, content, tags sql.NullString) (Entry, error) {
	decoded, err := decodeTags(tags)
	if err != nil {
		return Entry{}, fmt.Errorf("memory %d: %w", id, err)
	}
	return Entry{
		ID:      id,
		Topic:   topic.String,
		Content: content.String,
		Tags:    decoded,
	}, nil
}

func startSpan(ctx context.Context, op, driver string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "store."+op, trace.WithAttributes(
		attribute.String("db.system", driver),
		attribute.String("db.sql.table", "memories"),
	))
}

// endSpan marks span as failed and hands err back for returning.
func endSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
