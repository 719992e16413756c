package store

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"
)

func TestEncodeTags(t *testing.T) {
	testCases := []struct {
		name string
		in   []string
		want string
	}{
		{"nil", nil, "[]"},
		{"empty", []string{}, "[]"},
		{"single", []string{"travel"}, `["travel"]`},
		{"html kept", []string{"<b>&"}, `["<b>&"]`},
		{"quotes escaped", []string{`a"b`}, `["a\"b"]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := encodeTags(tc.in)
			if err != nil {
				t.Fatalf("encodeTags failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("encodeTags(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDecodeTags(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		got, err := decodeTags(sql.NullString{String: `["a","b"]`, Valid: true})
		if err != nil {
			t.Fatalf("decodeTags failed: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("unexpected tags %q", got)
		}
	})

	t.Run("Empty array and null are non-nil", func(t *testing.T) {
		for _, raw := range []sql.NullString{
			{String: "[]", Valid: true},
			{String: "null", Valid: true},
			{Valid: false},
		} {
			got, err := decodeTags(raw)
			if err != nil {
				t.Fatalf("decodeTags(%v) failed: %v", raw, err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("decodeTags(%v) = %v, want empty non-nil", raw, got)
			}
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, raw := range []string{"", "not json", `{"a":1}`, `[1, 2]`} {
			if _, err := decodeTags(sql.NullString{String: raw, Valid: true}); !errors.Is(err, ErrMalformedTags) {
				t.Errorf("decodeTags(%q) error = %v, want ErrMalformedTags", raw, err)
			}
		}
	})
}

func TestLikePattern(t *testing.T) {
	testCases := map[string]string{
		"":       "%%",
		"trip":   "%trip%",
		"100%":   `%100\%%`,
		"a_b":    `%a\_b%`,
		`C:\tmp`: `%C:\\tmp%`,
	}
	for in, want := range testCases {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{"2024-01-02 03:04:05", "2024-01-02T03:04:05Z", "2024-01-02T03:04:05.123456789Z"} {
		ts, err := parseTimestamp(s)
		if err != nil {
			t.Errorf("parseTimestamp(%q) failed: %v", s, err)
			continue
		}
		if ts.Year() != 2024 || ts.Hour() != 3 {
			t.Errorf("parseTimestamp(%q) = %v", s, ts)
		}
	}

	if _, err := parseTimestamp("yesterday"); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}
