package cli

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/dmitrijs2005/qaforum/internal/client/search"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const timeLayout = "2006-01-02 15:04"

var (
	headStyle  = lipgloss.NewStyle().Bold(true)
	metaStyle  = lipgloss.NewStyle().Faint(true)
	matchStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// clean strips markup from server-provided text before it reaches the
// terminal.
func (a *App) clean(s string) string {
	return html.UnescapeString(a.sanitize.Sanitize(s))
}

func (a *App) renderQuestionList(w io.Writer, qs []models.Question, query string) {
	if len(qs) == 0 {
		fmt.Fprintln(w, "No questions.")
		return
	}
	mark := func(s string) string { return matchStyle.Render(s) }
	for _, q := range qs {
		title := search.Highlight(a.clean(q.Title), query, mark)
		line := fmt.Sprintf("%s %s", headStyle.Render(fmt.Sprintf("#%d", q.ID)), title)
		if q.Tag != "" {
			line += " " + metaStyle.Render("["+a.clean(q.Tag)+"]")
		}
		line += " " + metaStyle.Render("by "+a.clean(q.AuthorName()))
		fmt.Fprintln(w, line)
	}
}

func (a *App) renderQuestion(w io.Writer, q *models.Question) {
	fmt.Fprintln(w, headStyle.Render(fmt.Sprintf("#%d %s", q.ID, a.clean(q.Title))))
	meta := "asked by " + a.clean(q.AuthorName())
	if !q.CreatedAt.IsZero() {
		meta += " on " + q.CreatedAt.Local().Format(timeLayout)
	}
	if q.Tag != "" {
		meta += " [" + a.clean(q.Tag) + "]"
	}
	fmt.Fprintln(w, metaStyle.Render(meta))
	fmt.Fprintln(w)
	fmt.Fprintln(w, a.clean(q.Description))
	if a.forum.CanModify(q) {
		fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("(yours: editq %d, delq %d)", q.ID, q.ID)))
	}
}

func (a *App) renderAnswers(w io.Writer, answers []models.Answer) {
	fmt.Fprintln(w)
	if len(answers) == 0 {
		fmt.Fprintln(w, "No answers yet.")
		return
	}
	fmt.Fprintf(w, "%d answer(s):\n", len(answers))
	for _, ans := range answers {
		meta := fmt.Sprintf("#%d %s", ans.ID, a.clean(ans.AuthorName()))
		if !ans.CreatedAt.IsZero() {
			meta += ", " + ans.CreatedAt.Local().Format(timeLayout)
		}
		fmt.Fprintln(w, metaStyle.Render(meta))
		fmt.Fprintln(w, indent(a.clean(ans.Text)))
		if a.forum.CanModify(ans) {
			fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("  (yours: edita %d, dela %d)", ans.ID, ans.ID)))
		}
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

// diffText renders the change from before to after with ANSI colors.
func diffText(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}
