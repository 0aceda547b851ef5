package models

import "time"

// Answer is a reply to a question.
type Answer struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"questionid"`
	UserID     int64     `json:"user_id"`
	Text       string    `json:"answer"`
	Username   string    `json:"username"`
	FirstName  string    `json:"firstname"`
	LastName   string    `json:"lastname"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a Answer) ResourceID() int64      { return a.ID }
func (a Answer) AuthorID() int64        { return a.UserID }
func (a Answer) CreatedTime() time.Time { return a.CreatedAt }

func (a Answer) SearchFields() []string {
	return []string{a.Text, a.FirstName, a.LastName, a.Username}
}

// AuthorName is the display name of the person who answered.
func (a Answer) AuthorName() string {
	return displayName(a.FirstName, a.LastName, a.Username)
}

// AnswerPayload is the body of the post and edit answer calls. QuestionID is
// ignored on edit.
type AnswerPayload struct {
	QuestionID int64  `validate:"gte=0"`
	Text       string `validate:"required"`
}
