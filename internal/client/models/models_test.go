package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnedBy(t *testing.T) {
	q := Question{ID: 1, UserID: 7}

	assert.True(t, OwnedBy(q, 7))
	assert.False(t, OwnedBy(q, 8))
	assert.False(t, OwnedBy(Question{}, 0), "anonymous user never owns anything")
}

func TestAuthorName(t *testing.T) {
	assert.Equal(t, "Abe Lincoln", Question{FirstName: "Abe", LastName: "Lincoln"}.AuthorName())
	assert.Equal(t, "abe", Answer{Username: "abe"}.AuthorName())
	assert.Equal(t, "Abe", Answer{FirstName: "Abe", Username: "abe"}.AuthorName())
}

func TestQuestionPayload_AddTag(t *testing.T) {
	var p QuestionPayload

	assert.True(t, p.AddTag("go"))
	assert.False(t, p.AddTag(" go "), "duplicates are ignored")
	assert.False(t, p.AddTag("   "), "blank tags are ignored")
	assert.True(t, p.AddTag("sql"))

	assert.Equal(t, []string{"go", "sql"}, p.Tags)
}
