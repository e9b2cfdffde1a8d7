package repository

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// decodeJSON unmarshals a JSON column into dst.  NULL and empty columns
// leave dst untouched.
func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// encodeJSON marshals v for a JSON column, writing [] for nil slices.
func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "[]", nil
	}
	return string(b), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching s anywhere, lower-cased
// and with LIKE wildcards escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// FuzzyPattern turns a search term into a regular expression that matches
// its characters in order with optional whitespace between them, so that
// "vadapav" matches "Vada Pav".  Every character is quoted.
func FuzzyPattern(term string) string {
	parts := make([]string, 0, len(term))
	for _, r := range term {
		if unicode.IsSpace(r) {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return strings.Join(parts, `\s*`)
}

// Terms splits a multi-word search into lower-cased words.
func Terms(s string) []string {
	return strings.Fields(strings.ToLower(s))
}
