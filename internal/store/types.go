package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMalformedTags is returned when a stored tags value cannot be decoded.
	ErrMalformedTags = errors.New("malformed stored tags")
	// ErrUnknownDriver is returned by Open for an unsupported backend.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Entry represents a single stored memory.
type Entry struct {
	ID        int64     `json:"id"`
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Timestamp time.Time `json:"timestamp"`
}

// Storage defines the interface for persistence
type Storage interface {
	// Initialize creates the backing table if it does not exist.
	// Existing rows are never touched.
	Initialize(ctx context.Context) error

	// Store appends a new entry and returns its id. A nil tags slice is
	// stored as an empty list.
	Store(ctx context.Context, topic, content string, tags []string) (int64, error)

	// Search returns every entry whose topic, content or serialized tags
	// contain query, most recent first.
	Search(ctx context.Context, query string) ([]Entry, error)

	// ListAll returns every entry, most recent first.
	ListAll(ctx context.Context) ([]Entry, error)

	Close() error
}
