package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/qaforum/internal/client/confirm"
	"github.com/dmitrijs2005/qaforum/internal/client/guard"
	"github.com/dmitrijs2005/qaforum/internal/client/models"
)

// Answer posts an answer to questionID, or to the open question when
// questionID is zero.
func (a *App) Answer(ctx context.Context, questionID int64) error {
	if questionID == 0 {
		questionID = a.openQuestion
	}
	if questionID == 0 {
		a.println("Open a question first (show <id>) or pass its id.")
		return nil
	}

	text, err := getMultiline(a.reader, "Your answer", a.out)
	if err != nil {
		return err
	}
	if err := a.forum.PostAnswer(ctx, models.AnswerPayload{QuestionID: questionID, Text: text}); err != nil {
		return err
	}
	a.openQuestion = questionID
	a.println("Answer posted.")
	a.renderAnswers(a.out, a.forum.Answers().Items())
	return nil
}

// EditAnswer loads the answer, prompts for the new text, previews the change
// and saves it.
func (a *App) EditAnswer(ctx context.Context, id int64) error {
	ans, err := a.forum.GetAnswer(ctx, id)
	if err != nil {
		return err
	}
	if ans.UserID != 0 && !a.forum.CanModify(ans) {
		a.println("You can only edit your own answers.")
		return nil
	}

	fmt.Fprintln(a.out, "Current answer:")
	fmt.Fprintln(a.out, indent(a.clean(ans.Text)))
	text, err := getMultiline(a.reader, "New answer (empty keeps it)", a.out)
	if err != nil {
		return err
	}
	text = orDefault(text, ans.Text)
	if text == ans.Text {
		a.println("Nothing changed.")
		return nil
	}
	a.println(diffText(ans.Text, text))

	if err := a.forum.EditAnswer(ctx, id, models.AnswerPayload{Text: text}); err != nil {
		return err
	}
	a.println("Answer updated.")

	questionID := ans.QuestionID
	if questionID == 0 {
		questionID = a.openQuestion
	}
	if questionID == 0 {
		return nil
	}
	a.navigate(guard.Question)
	if err := a.Show(ctx, questionID); err != nil {
		a.log.Warn(ctx, "refresh after edit failed", "question", questionID, "error", err)
	}
	return nil
}

// DeleteAnswer asks for confirmation; the answer is deleted on "yes".
func (a *App) DeleteAnswer(ctx context.Context, id int64) error {
	for _, ans := range a.forum.Answers().Items() {
		if ans.ID == id && !a.forum.CanModify(ans) {
			a.println("You can only delete your own answers.")
			return nil
		}
	}
	a.gate.Request(confirm.Target{Kind: confirm.Answer, ID: id})
	fmt.Fprintf(a.out, "Delete answer %d? Type 'yes' to confirm or 'no' to cancel.\n", id)
	return nil
}
