package store

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
)

// newPostgresTestStore connects to MEMLOG_TEST_POSTGRES_DSN and empties the
// memories table. Tests are skipped when the variable is unset.
func newPostgresTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("MEMLOG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MEMLOG_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to create postgres store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	if err := s.exec(ctx, `TRUNCATE memories RESTART IDENTITY`); err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
	return s
}

func TestPostgresStore_RoundTripAndSearch(t *testing.T) {
	ctx := context.Background()
	s := newPostgresTestStore(t)

	mustStore(t, s, "Paris trip", "saw the tower", []string{"travel"})
	mustStore(t, s, "Recipe", "pasta with basil", nil)

	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if !reflect.DeepEqual(topics(all), []string{"Recipe", "Paris trip"}) {
		t.Errorf("unexpected order: %v", topics(all))
	}
	if all[0].Tags == nil || len(all[0].Tags) != 0 {
		t.Errorf("expected empty tags, got %v", all[0].Tags)
	}

	testCases := []struct {
		query string
		want  []string
	}{
		{"trip", []string{"Paris trip"}},
		{"a", []string{"Recipe", "Paris trip"}},
		{"xyz123", []string{}},
		// LIKE is case-sensitive on PostgreSQL.
		{"PARIS", []string{}},
	}
	for _, tc := range testCases {
		got, err := s.Search(ctx, tc.query)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", tc.query, err)
		}
		if !reflect.DeepEqual(topics(got), tc.want) {
			t.Errorf("Search(%q) = %v, want %v", tc.query, topics(got), tc.want)
		}
	}
}

func TestPostgresStore_TiesAndMalformed(t *testing.T) {
	ctx := context.Background()
	s := newPostgresTestStore(t)

	for _, topic := range []string{"first", "second"} {
		if err := s.exec(ctx, `INSERT INTO memories (topic, content, tags, "timestamp") VALUES ($1, '', '[]', '2024-05-05 12:00:00+00')`, topic); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if !reflect.DeepEqual(topics(all), []string{"second", "first"}) {
		t.Errorf("expected descending id order, got %v", topics(all))
	}

	if err := s.exec(ctx, `INSERT INTO memories (topic, content, tags) VALUES ('bad', '', '{')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.ListAll(ctx); !errors.Is(err, ErrMalformedTags) {
		t.Errorf("expected ErrMalformedTags, got %v", err)
	}
}
