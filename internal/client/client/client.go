package client

import (
	"context"

	"github.com/dmitrijs2005/qaforum/internal/client/models"
)

// Client is the forum API boundary. Calls marked as authenticated in the
// API attach the current credential; the others are anonymous.
type Client interface {
	// CheckUser verifies token and returns the identity it belongs to.
	CheckUser(ctx context.Context, token string) (*models.Identity, error)
	SignIn(ctx context.Context, creds models.Credentials) (string, error)
	Register(ctx context.Context, reg models.Registration) (string, error)

	ListQuestions(ctx context.Context) ([]models.Question, error)
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
	PostQuestion(ctx context.Context, p models.QuestionPayload) error
	EditQuestion(ctx context.Context, id int64, p models.QuestionPayload) error
	DeleteQuestion(ctx context.Context, id int64) error

	ListAnswers(ctx context.Context, questionID int64) ([]models.Answer, error)
	GetAnswer(ctx context.Context, id int64) (*models.Answer, error)
	PostAnswer(ctx context.Context, p models.AnswerPayload) error
	EditAnswer(ctx context.Context, id int64, p models.AnswerPayload) error
	DeleteAnswer(ctx context.Context, id int64) error
}

// CredentialSource yields the credential attached to authenticated calls.
// The session store is the only implementation outside tests.
type CredentialSource interface {
	Credential() (string, bool)
}

// CredentialFunc adapts an ordinary function to CredentialSource.
type CredentialFunc func() (string, bool)

func (f CredentialFunc) Credential() (string, bool) { return f() }
