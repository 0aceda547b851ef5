package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/qaforum/internal/client/confirm"
)

// Confirm runs the pending destructive action.
func (a *App) Confirm(ctx context.Context) error {
	t, err := a.gate.Confirm(ctx)
	if err != nil {
		return err
	}

	switch t.Kind {
	case confirm.Logout:
		a.openQuestion = 0
		a.println("Signed out.")
	case confirm.Question:
		if a.openQuestion == t.ID {
			a.openQuestion = 0
		}
		fmt.Fprintf(a.out, "Question %d deleted.\n", t.ID)
	case confirm.Answer:
		fmt.Fprintf(a.out, "Answer %d deleted.\n", t.ID)
	}
	return nil
}

// Cancel drops the pending action.
func (a *App) Cancel(ctx context.Context) error {
	if _, ok := a.gate.Snapshot(); !ok {
		a.println("Nothing to cancel.")
		return nil
	}
	a.gate.Cancel()
	a.println("Cancelled.")
	return nil
}
