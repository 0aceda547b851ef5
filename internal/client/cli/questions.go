package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/qaforum/internal/client/confirm"
	"github.com/dmitrijs2005/qaforum/internal/client/guard"
	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/dmitrijs2005/qaforum/internal/client/resource"
	"github.com/dmitrijs2005/qaforum/internal/client/search"
	"github.com/dmitrijs2005/qaforum/internal/client/tui"
)

// List fetches and prints all questions, newest first.
func (a *App) List(ctx context.Context) error {
	qs, err := a.forum.LoadQuestions(ctx)
	if err != nil {
		return err
	}
	a.renderQuestionList(a.out, qs, "")
	return nil
}

// Search prints the questions matching query. Without a query it opens the
// live-search view and shows the question picked there.
func (a *App) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) != "" {
		qs, err := a.questions(ctx)
		if err != nil {
			return err
		}
		a.renderQuestionList(a.out, search.Filter(qs, query), query)
		return nil
	}

	m := tui.NewSearchModel(a.forum.Questions().Items(), a.config.DebounceWindow, nil)
	prog := tui.NewProgram(ctx, m, a.in, a.out)

	stop := a.forum.Questions().Subscribe(prog.SetItems)
	defer stop()
	go func() {
		if _, err := a.forum.LoadQuestions(ctx); err != nil && !errors.Is(err, resource.ErrSuperseded) {
			a.log.Warn(ctx, "search refresh failed", "error", err)
		}
	}()

	id, err := prog.Run()
	if err != nil || id == 0 {
		return err
	}
	if d := a.navigate(questionView); !d.Admitted {
		return errSignInRequired
	}
	return a.Show(ctx, id)
}

// questions returns the loaded collection, fetching it on first use.
func (a *App) questions(ctx context.Context) ([]models.Question, error) {
	if qs := a.forum.Questions().Items(); len(qs) > 0 {
		return qs, nil
	}
	return a.forum.LoadQuestions(ctx)
}

// Show prints a question with its answers and makes it the open question.
func (a *App) Show(ctx context.Context, id int64) error {
	q, answers, err := a.forum.OpenQuestion(ctx, id)
	if err != nil {
		return err
	}
	a.openQuestion = id
	a.renderQuestion(a.out, q)
	a.renderAnswers(a.out, answers)
	return nil
}

// Ask prompts for a new question. Tags are entered one per line.
func (a *App) Ask(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := getMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	tagLines, err := getMultiline(a.reader, "Tags, one per line", a.out)
	if err != nil {
		return err
	}

	p := models.QuestionPayload{Title: title, Description: description}
	for _, t := range strings.Split(tagLines, "\n") {
		if !p.AddTag(t) && strings.TrimSpace(t) != "" {
			fmt.Fprintf(a.out, "Tag %q already added.\n", strings.TrimSpace(t))
		}
	}

	if err := a.forum.Ask(ctx, p); err != nil {
		return err
	}
	a.println("Question posted.")
	a.renderQuestionList(a.out, a.forum.Questions().Items(), "")
	return nil
}

// EditQuestion loads the question, prompts for replacements (empty input
// keeps the current value), previews the change and saves it.
func (a *App) EditQuestion(ctx context.Context, id int64) error {
	q, err := a.forum.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if q.UserID != 0 && !a.forum.CanModify(q) {
		a.println("You can only edit your own questions.")
		return nil
	}

	fmt.Fprintf(a.out, "Current title: %s\n", a.clean(q.Title))
	title, err := getSimpleText(a.reader, "New title (empty keeps it)", a.out)
	if err != nil {
		return err
	}
	description, err := getMultiline(a.reader, "New description (empty keeps it)", a.out)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Current tag: %s\n", a.clean(q.Tag))
	tag, err := getSimpleText(a.reader, "New tag (empty keeps it)", a.out)
	if err != nil {
		return err
	}

	p := models.QuestionPayload{
		Title:       orDefault(title, q.Title),
		Description: orDefault(description, q.Description),
	}
	p.AddTag(orDefault(tag, q.Tag))

	if p.Title == q.Title && p.Description == q.Description && orDefault(tag, q.Tag) == q.Tag {
		a.println("Nothing changed.")
		return nil
	}
	a.println(diffText(q.Title+"\n"+q.Description, p.Title+"\n"+p.Description))

	if err := a.forum.EditQuestion(ctx, id, p); err != nil {
		return err
	}
	a.println("Question updated.")

	// back to the list, which is refetched so the edit shows up
	a.navigate(guard.Home)
	qs, err := a.forum.LoadQuestions(ctx)
	if err != nil {
		a.log.Warn(ctx, "refresh after edit failed", "question", id, "error", err)
		return nil
	}
	a.renderQuestionList(a.out, qs, "")
	return nil
}

// DeleteQuestion asks for confirmation; the question is deleted on "yes".
func (a *App) DeleteQuestion(ctx context.Context, id int64) error {
	for _, q := range a.forum.Questions().Items() {
		if q.ID == id && !a.forum.CanModify(q) {
			a.println("You can only delete your own questions.")
			return nil
		}
	}
	a.gate.Request(confirm.Target{Kind: confirm.Question, ID: id})
	fmt.Fprintf(a.out, "Delete question %d? Type 'yes' to confirm or 'no' to cancel.\n", id)
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
