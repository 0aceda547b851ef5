package models

import (
	"strings"
	"time"
)

// Question is a forum question as returned by the list and get endpoints.
// Author names are denormalized by the server.
type Question struct {
	ID          int64     `json:"questionid"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tag         string    `json:"tag"`
	Username    string    `json:"username"`
	FirstName   string    `json:"firstname"`
	LastName    string    `json:"lastname"`
	CreatedAt   time.Time `json:"created_at"`
}

func (q Question) ResourceID() int64      { return q.ID }
func (q Question) AuthorID() int64        { return q.UserID }
func (q Question) CreatedTime() time.Time { return q.CreatedAt }

func (q Question) SearchFields() []string {
	return []string{q.Title, q.Tag, q.FirstName, q.LastName, q.Username, q.Description}
}

// AuthorName is the display name of the asker.
func (q Question) AuthorName() string {
	return displayName(q.FirstName, q.LastName, q.Username)
}

// QuestionPayload is the body of the post and edit question calls.
type QuestionPayload struct {
	Title       string   `validate:"required,max=200"`
	Description string   `validate:"required"`
	Tags        []string `validate:"dive,required,max=50"`
}

// AddTag appends tag unless it is blank or already present.
func (p *QuestionPayload) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range p.Tags {
		if t == tag {
			return false
		}
	}
	p.Tags = append(p.Tags, tag)
	return true
}

func displayName(first, last, username string) string {
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		return username
	}
	return name
}
