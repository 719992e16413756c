package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// encodeTags serializes tags into the stored text form. A nil or empty
// slice becomes "[]". HTML characters are kept as typed so they stay
// searchable.
func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tags); err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// decodeTags parses the stored text form back into a slice. The result is
// never nil. A NULL column reads as an empty list.
func decodeTags(raw sql.NullString) ([]string, error) {
	if !raw.Valid {
		return []string{}, nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTags, err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// likePattern wraps query for a LIKE ... ESCAPE '\' substring match.
// Wildcard characters in the query match literally.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}

// parseTimestamp parses the timestamp layouts SQLite and the driver may hand back.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		"2006-01-02T15:04:05.000",
		"2006-01-02 15:04:05.999999999-07:00",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}
