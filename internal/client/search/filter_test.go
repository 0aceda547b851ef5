package search

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func questions() []models.Question {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Question{
		{ID: 1, Title: "How to sort in Go?", Tag: "golang", FirstName: "Ann", CreatedAt: at},
		{ID: 2, Title: "React hooks", Tag: "react", FirstName: "Bob", Description: "useEffect runs twice", CreatedAt: at},
		{ID: 3, Title: "SQL joins", Tag: "sql", FirstName: "Gopher", CreatedAt: at},
	}
}

func questionIDs(qs []models.Question) []int64 {
	out := make([]int64, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"empty query keeps all", "", []int64{1, 2, 3}},
		{"whitespace query keeps all", "   ", []int64{1, 2, 3}},
		{"title is case insensitive", "REACT", []int64{2}},
		{"tag", "sql", []int64{3}},
		{"author first name", "bob", []int64{2}},
		{"description", "useeffect", []int64{2}},
		{"matches across fields", "go", []int64{1, 3}},
		{"no match", "rust", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := questionIDs(Filter(questions(), tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Filter(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	items := questions()
	once := Filter(items, "go")
	twice := Filter(once, "go")
	assert.Equal(t, once, twice)
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	items := questions()
	_ = Filter(items, "react")
	assert.Equal(t, questions(), items)
}

func TestFilter_Answers(t *testing.T) {
	answers := []models.Answer{
		{ID: 1, Text: "Use sort.Slice", Username: "ann"},
		{ID: 2, Text: "Try a map", FirstName: "Slice", LastName: "Fan"},
		{ID: 3, Text: "No idea"},
	}
	got := Filter(answers, "slice")
	assert.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestHighlight(t *testing.T) {
	mark := func(s string) string { return "[" + s + "]" }

	tests := []struct {
		text, query, want string
	}{
		{"Go is great, go!", "go", "[Go] is great, [go]!"},
		{"nothing here", "zzz", "nothing here"},
		{"any text", "", "any text"},
		{"a.b.c", ".", "a[.]b[.]c"},
		{"(x+y)*2", "x+y", "([x+y])*2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Highlight(tt.text, tt.query, mark), tt.text)
	}
}

func TestHighlight_OffsetChangingCaseFolding(t *testing.T) {
	// "İ" lowercases to a longer byte sequence.
	text := "İstanbul go"
	got := Highlight(text, "go", strings.ToUpper)
	assert.Equal(t, text, got)
}
