package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/dmitrijs2005/qaforum/internal/client/session"
)

// ---- fake client ----

type fakeClient struct {
	mu sync.Mutex

	SignInToken   string
	SignInErr     error
	RegisterToken string
	RegisterErr   error

	Questions   []models.Question
	Question    *models.Question
	QuestionErr error
	Answers     map[int64][]models.Answer
	AnswersErr  error
	Answer      *models.Answer
	MutateErr   error

	LastCreds     models.Credentials
	LastReg       models.Registration
	Posted        []models.QuestionPayload
	Edited        map[int64]models.QuestionPayload
	Deleted       []int64
	PostedAnswers []models.AnswerPayload
	EditedAnswers map[int64]models.AnswerPayload
	DeletedAnswer []int64
	Calls         int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		Answers:       map[int64][]models.Answer{},
		Edited:        map[int64]models.QuestionPayload{},
		EditedAnswers: map[int64]models.AnswerPayload{},
	}
}

func (f *fakeClient) call() {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

func (f *fakeClient) CheckUser(context.Context, string) (*models.Identity, error) {
	f.call()
	return &models.Identity{Username: "abe", UserID: 7}, nil
}

func (f *fakeClient) SignIn(_ context.Context, creds models.Credentials) (string, error) {
	f.call()
	f.LastCreds = creds
	return f.SignInToken, f.SignInErr
}

func (f *fakeClient) Register(_ context.Context, reg models.Registration) (string, error) {
	f.call()
	f.LastReg = reg
	return f.RegisterToken, f.RegisterErr
}

func (f *fakeClient) ListQuestions(context.Context) ([]models.Question, error) {
	f.call()
	return append([]models.Question(nil), f.Questions...), nil
}

func (f *fakeClient) GetQuestion(context.Context, int64) (*models.Question, error) {
	f.call()
	return f.Question, f.QuestionErr
}

func (f *fakeClient) PostQuestion(_ context.Context, p models.QuestionPayload) error {
	f.call()
	if f.MutateErr != nil {
		return f.MutateErr
	}
	f.Posted = append(f.Posted, p)
	return nil
}

func (f *fakeClient) EditQuestion(_ context.Context, id int64, p models.QuestionPayload) error {
	f.call()
	if f.MutateErr != nil {
		return f.MutateErr
	}
	f.Edited[id] = p
	return nil
}

func (f *fakeClient) DeleteQuestion(_ context.Context, id int64) error {
	f.call()
	if f.MutateErr != nil {
		return f.MutateErr
	}
	f.Deleted = append(f.Deleted, id)
	return nil
}

func (f *fakeClient) ListAnswers(_ context.Context, questionID int64) ([]models.Answer, error) {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AnswersErr != nil {
		return nil, f.AnswersErr
	}
	return append([]models.Answer(nil), f.Answers[questionID]...), nil
}

func (f *fakeClient) GetAnswer(context.Context, int64) (*models.Answer, error) {
	f.call()
	if f.MutateErr != nil {
		return nil, f.MutateErr
	}
	return f.Answer, nil
}

func (f *fakeClient) PostAnswer(_ context.Context, p models.AnswerPayload) error {
	f.call()
	if f.MutateErr != nil {
		return f.MutateErr
	}
	f.PostedAnswers = append(f.PostedAnswers, p)
	return nil
}

func (f *fakeClient) EditAnswer(_ context.Context, id int64, p models.AnswerPayload) error {
	f.call()
	if f.MutateErr != nil {
		return f.MutateErr
	}
	f.EditedAnswers[id] = p
	return nil
}

func (f *fakeClient) DeleteAnswer(_ context.Context, id int64) error {
	f.call()
	if f.MutateErr != nil {
		return f.MutateErr
	}
	f.DeletedAnswer = append(f.DeletedAnswer, id)
	return nil
}

// ---- fake sessions ----

type fakeSessions struct {
	st       session.Session
	accept   map[string]session.Session
	loginErr error
	logouts  int
	tokens   []string
}

func signedIn() *fakeSessions {
	return &fakeSessions{st: session.Session{IsAuthenticated: true, Token: "tok", Username: "abe", UserID: 7}}
}

func (f *fakeSessions) Login(_ context.Context, token string) (bool, error) {
	f.tokens = append(f.tokens, token)
	if f.loginErr != nil {
		return false, f.loginErr
	}
	st, ok := f.accept[token]
	if !ok {
		f.st = session.Session{}
		return false, nil
	}
	f.st = st
	return true, nil
}

func (f *fakeSessions) Logout(context.Context) {
	f.logouts++
	f.st = session.Session{}
}

func (f *fakeSessions) Current() session.Session { return f.st }
