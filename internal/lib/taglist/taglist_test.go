package taglist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		expected []string
	}{
		{"nil", nil, []string{}},
		{"native list", []string{" Drama ", "Action", ""}, []string{"Drama", "Action"}},
		{"decoded json list", []any{"Drama", 1990.0, true, nil}, []string{"Drama", "1990", "true"}},
		{"json string", `["France", " Italy", "data"]`, []string{"France", "Italy"}},
		{"comma string", "English, French ,,German", []string{"English", "French", "German"}},
		{"json scalar falls back to comma split", `"a,b"`, []string{`"a`, `b"`}},
		{"duplicates", "Drama,Drama, Drama", []string{"Drama"}},
		{"placeholder only", []string{"data"}, []string{}},
		{"blank string", "   ", []string{}},
		{"raw message", json.RawMessage(`["Sci-Fi","Sci-Fi"]`), []string{"Sci-Fi"}},
		{"name objects", []any{map[string]any{"name": "A24"}, map[string]any{"name": " Pixar "}}, []string{"A24", "Pixar"}},
		{"unsupported type", 42, []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Parse(tc.input))
		})
	}
}

func TestCleanKeepsOrder(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Clean([]string{"b", "a", "b", "c", "a"}))
}
