package guard

import (
	"sync"
	"testing"

	"github.com/dmitrijs2005/qaforum/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	mu   sync.Mutex
	st   session.Session
	subs []func(session.Session)
}

func (f *fakeSessions) Current() session.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st
}

func (f *fakeSessions) Subscribe(fn func(session.Session)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	idx := len(f.subs) - 1
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.subs[idx] = nil
		f.mu.Unlock()
	}
}

func (f *fakeSessions) set(st session.Session) {
	f.mu.Lock()
	f.st = st
	subs := append([]func(session.Session){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(st)
		}
	}
}

var signedIn = session.Session{IsAuthenticated: true, Token: "t", Username: "abe", UserID: 7}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		view   View
		authed bool
		want   Decision
	}{
		{"protected signed out", Home, false, Decision{Target: Home, Redirect: SignIn}},
		{"protected signed in", Home, true, Decision{Target: Home, Admitted: true}},
		{"edit answer signed out", EditAnswer, false, Decision{Target: EditAnswer, Redirect: SignIn}},
		{"public signed out", SignIn, false, Decision{Target: SignIn, Admitted: true}},
		{"public signed in", Register, true, Decision{Target: Register, Admitted: true}},
		{"landing", Landing, false, Decision{Target: Landing, Admitted: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSessions{}
			if tt.authed {
				src.st = signedIn
			}
			g := New(src)
			defer g.Close()

			assert.Equal(t, tt.want, g.Check(tt.view))
		})
	}
}

func TestCheck_IgnoresIdentityFields(t *testing.T) {
	src := &fakeSessions{st: session.Session{Token: "leftover", Username: "abe"}}
	g := New(src)

	assert.False(t, g.Check(Ask).Admitted)
}

func TestNavigate_RecordsDestination(t *testing.T) {
	src := &fakeSessions{}
	g := New(src)

	d := g.Navigate(Ask)
	assert.False(t, d.Admitted)
	assert.Equal(t, SignIn, g.Current())

	src.st = signedIn
	d = g.Navigate(Ask)
	assert.True(t, d.Admitted)
	assert.Equal(t, Ask, g.Current())
}

func TestSessionTransitionReevaluates(t *testing.T) {
	src := &fakeSessions{st: signedIn}
	g := New(src)
	defer g.Close()

	require.True(t, g.Navigate(Question).Admitted)

	var got []Decision
	stop := g.Watch(func(d Decision) { got = append(got, d) })
	defer stop()

	src.set(session.Session{})

	require.Len(t, got, 1)
	assert.Equal(t, Decision{Target: Question, Redirect: SignIn}, got[0])
	assert.Equal(t, SignIn, g.Current())
}

func TestWatchStop(t *testing.T) {
	src := &fakeSessions{}
	g := New(src)

	calls := 0
	stop := g.Watch(func(Decision) { calls++ })
	g.Navigate(Landing)
	stop()
	g.Navigate(Home)

	assert.Equal(t, 1, calls)
}

func TestClose_DetachesFromSession(t *testing.T) {
	src := &fakeSessions{st: signedIn}
	g := New(src)
	g.Navigate(Home)

	calls := 0
	g.Watch(func(Decision) { calls++ })
	g.Close()
	src.set(session.Session{})

	assert.Zero(t, calls)
	assert.Equal(t, Home, g.Current())
}

func TestParseView(t *testing.T) {
	v, err := ParseView("edit-question")
	require.NoError(t, err)
	assert.Equal(t, EditQuestion, v)
	assert.True(t, v.Protected())

	_, err = ParseView("admin")
	assert.Error(t, err)
}
