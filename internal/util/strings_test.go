package util

import "testing"

func TestTrimWithDefault(t *testing.T) {
	if got := TrimWithDefault("  db.internal ", "localhost"); got != "db.internal" {
		t.Errorf("TrimWithDefault = %q", got)
	}
	if got := TrimWithDefault("", "localhost"); got != "localhost" {
		t.Errorf("TrimWithDefault = %q", got)
	}
}

func TestQuoteList(t *testing.T) {
	got := QuoteList([]string{"agent_id", "type", "o'brien"})
	want := `'agent_id', 'type', 'o''brien'`
	if got != want {
		t.Errorf("QuoteList = %q, want %q", got, want)
	}
}

func TestFirstKeyword(t *testing.T) {
	tests := map[string]string{
		"SELECT 1":                             "SELECT",
		"  show columns from clients":          "SHOW",
		"-- comment\nDESCRIBE property_leads":  "DESCRIBE",
		"/* header */ ALTER TABLE properties":  "ALTER",
		"# mysql comment\n(select 1)":          "SELECT",
		"":                                     "",
		"-- only a comment":                    "",
		"WITH x AS (SELECT 1) SELECT * FROM x": "WITH",
	}
	for in, want := range tests {
		if got := FirstKeyword(in); got != want {
			t.Errorf("FirstKeyword(%q) = %q, want %q", in, got, want)
		}
	}
}
