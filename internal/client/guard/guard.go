// Package guard decides which views a user may enter given the current
// session. It never talks to the server; the session store is the only
// input.
package guard

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/qaforum/internal/client/session"
)

type View string

const (
	SignIn       View = "signin"
	Register     View = "register"
	Landing      View = "landing"
	Home         View = "home"
	Ask          View = "ask"
	Question     View = "question"
	EditQuestion View = "edit-question"
	EditAnswer   View = "edit-answer"
)

var protected = map[View]bool{
	Home:         true,
	Ask:          true,
	Question:     true,
	EditQuestion: true,
	EditAnswer:   true,
}

var public = map[View]bool{
	SignIn:   true,
	Register: true,
	Landing:  true,
}

// Protected reports whether v requires an authenticated session.
func (v View) Protected() bool { return protected[v] }

// ParseView accepts the names above.
func ParseView(s string) (View, error) {
	v := View(s)
	if protected[v] || public[v] {
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Decision is the outcome of evaluating a navigation target.
type Decision struct {
	Target   View
	Admitted bool
	// Redirect is set only when Admitted is false.
	Redirect View
}

// Destination is the view the user ends up on.
func (d Decision) Destination() View {
	if d.Admitted {
		return d.Target
	}
	return d.Redirect
}

// SessionSource is satisfied by *session.Store.
type SessionSource interface {
	Current() session.Session
	Subscribe(fn func(session.Session)) func()
}

type Guard struct {
	src SessionSource

	mu       sync.Mutex
	current  View
	watchers map[uint64]func(Decision)
	nextID   uint64

	unsubscribe func()
}

// New starts on the landing view and re-evaluates it on every session
// transition until Close is called.
func New(src SessionSource) *Guard {
	g := &Guard{
		src:      src,
		current:  Landing,
		watchers: make(map[uint64]func(Decision)),
	}
	g.unsubscribe = src.Subscribe(func(session.Session) { g.reevaluate() })
	return g
}

// Check evaluates target against the current session without recording it.
func (g *Guard) Check(target View) Decision {
	return evaluate(target, g.src.Current().IsAuthenticated)
}

// Navigate records target as the requested view and evaluates it. A denied
// target leaves the user on the redirect view.
func (g *Guard) Navigate(target View) Decision {
	d := g.Check(target)
	g.mu.Lock()
	g.current = d.Destination()
	watchers := g.snapshot()
	g.mu.Unlock()

	for _, fn := range watchers {
		fn(d)
	}
	return d
}

// Current is the view the user is on.
func (g *Guard) Current() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Watch registers fn for every decision made by Navigate or by a session
// transition. The returned function stops the notifications.
func (g *Guard) Watch(fn func(Decision)) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.watchers[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.watchers, id)
		g.mu.Unlock()
	}
}

// Close detaches the guard from the session store.
func (g *Guard) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}

func (g *Guard) reevaluate() {
	authenticated := g.src.Current().IsAuthenticated

	g.mu.Lock()
	d := evaluate(g.current, authenticated)
	g.current = d.Destination()
	watchers := g.snapshot()
	g.mu.Unlock()

	for _, fn := range watchers {
		fn(d)
	}
}

func (g *Guard) snapshot() []func(Decision) {
	out := make([]func(Decision), 0, len(g.watchers))
	for _, fn := range g.watchers {
		out = append(out, fn)
	}
	return out
}

func evaluate(target View, authenticated bool) Decision {
	if target.Protected() && !authenticated {
		return Decision{Target: target, Admitted: false, Redirect: SignIn}
	}
	return Decision{Target: target, Admitted: true}
}
