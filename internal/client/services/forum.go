package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/qaforum/internal/client/client"
	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/dmitrijs2005/qaforum/internal/client/resource"
	"github.com/dmitrijs2005/qaforum/internal/logging"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// Policy decides what happens to the session when the server rejects the
// credential on a mutating call.
type Policy string

const (
	// PolicyRetain reports the rejection and keeps the session.
	PolicyRetain Policy = "retain"
	// PolicyLogout additionally signs the user out.
	PolicyLogout Policy = "logout"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyRetain, PolicyLogout:
		return p, nil
	case "":
		return PolicyRetain, nil
	default:
		return "", fmt.Errorf("unknown auth expired policy %q", s)
	}
}

type (
	Questions = resource.Synchronizer[models.Question, models.QuestionPayload]
	Answers   = resource.Synchronizer[models.Answer, models.AnswerPayload]
)

// Forum reads and mutates questions and answers. Every mutating call checks
// the session first and validates its payload before touching the network.
type Forum struct {
	client   client.Client
	sessions Sessions
	policy   Policy
	validate *validator.Validate
	log      logging.Logger

	questions *Questions
	answers   *Answers
}

func NewForum(c client.Client, sessions Sessions, policy Policy, log logging.Logger) *Forum {
	if log == nil {
		log = logging.Nop()
	}
	if policy == "" {
		policy = PolicyRetain
	}
	return &Forum{
		client:    c,
		sessions:  sessions,
		policy:    policy,
		validate:  newValidator(),
		log:       log.With("service", "forum"),
		questions: resource.NewSynchronizer(questionKind(c), log),
		answers:   resource.NewSynchronizer(answerKind(c), log),
	}
}

func questionKind(c client.Client) resource.Kind[models.Question, models.QuestionPayload] {
	return resource.Kind[models.Question, models.QuestionPayload]{
		Name: "question",
		List: func(ctx context.Context, _ int64) ([]models.Question, error) {
			return c.ListQuestions(ctx)
		},
		Create: func(ctx context.Context, _ int64, p models.QuestionPayload) error {
			return c.PostQuestion(ctx, p)
		},
		Edit:   c.EditQuestion,
		Delete: c.DeleteQuestion,
	}
}

func answerKind(c client.Client) resource.Kind[models.Answer, models.AnswerPayload] {
	return resource.Kind[models.Answer, models.AnswerPayload]{
		Name: "answer",
		List: c.ListAnswers,
		Create: func(ctx context.Context, scope int64, p models.AnswerPayload) error {
			p.QuestionID = scope
			return c.PostAnswer(ctx, p)
		},
		Edit:   c.EditAnswer,
		Delete: c.DeleteAnswer,
	}
}

// Questions exposes the question collection for subscribers.
func (f *Forum) Questions() *Questions { return f.questions }

// Answers exposes the answer collection of the open question.
func (f *Forum) Answers() *Answers { return f.answers }

// CanModify reports whether edit and delete should be offered for r. The
// server makes the real decision.
func (f *Forum) CanModify(r models.Resource) bool {
	st := f.sessions.Current()
	return st.IsAuthenticated && models.OwnedBy(r, st.UserID)
}

// LoadQuestions refreshes the question list.
func (f *Forum) LoadQuestions(ctx context.Context) ([]models.Question, error) {
	return f.questions.FetchAll(ctx)
}

// OpenQuestion fetches a question and its answers concurrently and makes
// them the current answer scope.
func (f *Forum) OpenQuestion(ctx context.Context, id int64) (*models.Question, []models.Answer, error) {
	var (
		q       *models.Question
		answers []models.Answer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		q, err = f.client.GetQuestion(gctx, id)
		if err != nil {
			return fmt.Errorf("get question %d: %w", id, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		answers, err = f.answers.SetScope(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return q, answers, nil
}

// GetQuestion is used to prefill the edit form.
func (f *Forum) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	q, err := f.client.GetQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get question %d: %w", id, err)
	}
	return q, nil
}

// GetAnswer is used to prefill the edit form; the endpoint requires a
// session.
func (f *Forum) GetAnswer(ctx context.Context, id int64) (*models.Answer, error) {
	if err := f.authorize(); err != nil {
		return nil, err
	}
	a, err := f.client.GetAnswer(ctx, id)
	if err != nil {
		return nil, f.rejected(ctx, fmt.Errorf("get answer %d: %w", id, err))
	}
	return a, nil
}

func (f *Forum) Ask(ctx context.Context, p models.QuestionPayload) error {
	p = trimQuestion(p)
	if err := f.precheck(p); err != nil {
		return err
	}
	return f.rejected(ctx, f.questions.Create(ctx, p))
}

func (f *Forum) EditQuestion(ctx context.Context, id int64, p models.QuestionPayload) error {
	p = trimQuestion(p)
	if err := f.precheck(p); err != nil {
		return err
	}
	return f.rejected(ctx, f.questions.Edit(ctx, id, p))
}

// DeleteQuestion also closes the question's answers when it was open.
func (f *Forum) DeleteQuestion(ctx context.Context, id int64) error {
	if err := f.authorize(); err != nil {
		return err
	}
	if err := f.questions.Delete(ctx, id); err != nil {
		return f.rejected(ctx, err)
	}
	if f.answers.Scope() == id {
		f.answers.Reset()
	}
	return nil
}

// PostAnswer answers p.QuestionID, switching the answer scope to it first
// when another question is open. A zero QuestionID means the open question;
// with none open the payload is invalid.
func (f *Forum) PostAnswer(ctx context.Context, p models.AnswerPayload) error {
	p.Text = strings.TrimSpace(p.Text)
	if err := f.precheck(p); err != nil {
		return err
	}
	if p.QuestionID == 0 && f.answers.Scope() == 0 {
		return &ValidationError{Problems: []string{"questionid is required"}}
	}
	if p.QuestionID != 0 && p.QuestionID != f.answers.Scope() {
		if _, err := f.answers.SetScope(ctx, p.QuestionID); err != nil && !errors.Is(err, resource.ErrSuperseded) {
			return err
		}
	}
	return f.rejected(ctx, f.answers.Create(ctx, p))
}

func (f *Forum) EditAnswer(ctx context.Context, id int64, p models.AnswerPayload) error {
	p.Text = strings.TrimSpace(p.Text)
	if err := f.precheck(p); err != nil {
		return err
	}
	return f.rejected(ctx, f.answers.Edit(ctx, id, p))
}

func (f *Forum) DeleteAnswer(ctx context.Context, id int64) error {
	if err := f.authorize(); err != nil {
		return err
	}
	return f.rejected(ctx, f.answers.Delete(ctx, id))
}

func (f *Forum) authorize() error {
	if !f.sessions.Current().IsAuthenticated {
		return client.ErrNoCredential
	}
	return nil
}

func (f *Forum) precheck(payload any) error {
	if err := f.authorize(); err != nil {
		return err
	}
	return check(f.validate, payload)
}

// rejected applies the policy when err says the credential was refused.
func (f *Forum) rejected(ctx context.Context, err error) error {
	if err == nil || !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	if f.policy == PolicyLogout {
		f.log.Warn(ctx, "credential rejected, signing out", "error", err)
		f.sessions.Logout(ctx)
	} else {
		f.log.Warn(ctx, "credential rejected", "error", err)
	}
	return err
}

func trimQuestion(p models.QuestionPayload) models.QuestionPayload {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	p.Tags = tags
	return p
}
