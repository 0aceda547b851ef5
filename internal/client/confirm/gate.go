// Package confirm puts destructive actions (deleting a question or answer,
// signing out) behind an explicit confirmation step.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type Kind int

const (
	Question Kind = iota + 1
	Answer
	Logout
)

func (k Kind) String() string {
	switch k {
	case Question:
		return "question"
	case Answer:
		return "answer"
	case Logout:
		return "logout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Target identifies what a confirmation is about. ID is zero for Logout.
type Target struct {
	Kind Kind
	ID   int64
}

func (t Target) String() string {
	if t.Kind == Logout {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %d", t.Kind, t.ID)
}

// Pending describes the outstanding confirmation.
type Pending struct {
	Target Target
	Busy   bool
}

type State int

const (
	Idle State = iota
	AwaitingConfirmation
)

var (
	ErrNotPending = errors.New("nothing to confirm")
	ErrBusy       = errors.New("action already in progress")
	ErrNoAction   = errors.New("no action registered")
)

// Action performs the confirmed operation.
type Action func(ctx context.Context, t Target) error

type Gate struct {
	actions map[Kind]Action

	mu      sync.Mutex
	pending *Target
	busy    map[Target]bool
}

func NewGate(actions map[Kind]Action) *Gate {
	return &Gate{
		actions: actions,
		busy:    make(map[Target]bool),
	}
}

// Request makes t the single outstanding confirmation, replacing any other.
func (g *Gate) Request(t Target) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = &t
}

// Confirm runs the action for the pending target. The target is busy while
// the action runs; afterwards the gate returns to Idle whether or not the
// action succeeded, unless a newer Request replaced the target meanwhile.
func (g *Gate) Confirm(ctx context.Context) (Target, error) {
	g.mu.Lock()
	if g.pending == nil {
		g.mu.Unlock()
		return Target{}, ErrNotPending
	}
	t := *g.pending
	if g.busy[t] {
		g.mu.Unlock()
		return t, ErrBusy
	}
	action, ok := g.actions[t.Kind]
	if !ok || action == nil {
		g.pending = nil
		g.mu.Unlock()
		return t, fmt.Errorf("%w for %s", ErrNoAction, t.Kind)
	}
	g.busy[t] = true
	g.mu.Unlock()

	err := action(ctx, t)

	g.mu.Lock()
	delete(g.busy, t)
	if g.pending != nil && *g.pending == t {
		g.pending = nil
	}
	g.mu.Unlock()

	return t, err
}

// Cancel drops the outstanding confirmation. It never touches the target.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
}

// Busy reports whether the action for t is running.
func (g *Gate) Busy(t Target) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy[t]
}

// Snapshot returns the outstanding confirmation, if any.
func (g *Gate) Snapshot() (Pending, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Pending{}, false
	}
	return Pending{Target: *g.pending, Busy: g.busy[*g.pending]}, true
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Idle
	}
	return AwaitingConfirmation
}
