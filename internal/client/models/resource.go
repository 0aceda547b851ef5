// Package models defines client-side data models used by the qaforum client.
package models

import "time"

// Resource is the capability set shared by questions and answers: a stable
// identity, an author, a creation time used for ordering, and the text the
// search filter matches against.
type Resource interface {
	ResourceID() int64
	AuthorID() int64
	CreatedTime() time.Time
	SearchFields() []string
}

// OwnedBy reports whether r was authored by the user with the given id.
// It only decides whether edit/delete affordances are offered; the server
// enforces authorship on its own.
func OwnedBy(r Resource, userID int64) bool {
	return userID != 0 && r.AuthorID() == userID
}

// Identity is what the server echoes back for a valid credential.
type Identity struct {
	Username string `json:"username"`
	UserID   int64  `json:"id"`
}
