// Package session holds the client's authentication state.
//
// The Store is the single writer of the session and of the persisted
// credential. Everything else reads it through Current, Credential or a
// subscription.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/qaforum/internal/client/client"
	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/dmitrijs2005/qaforum/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptyCredential = errors.New("empty credential")

// Session is the client's belief about who is signed in. IsAuthenticated
// implies Token was accepted by the server at the last verification.
type Session struct {
	IsAuthenticated bool
	Token           string
	Username        string
	UserID          int64
	// ExpiresAt is read from the token without verifying it; zero when the
	// token is not a JWT or carries no expiry.
	ExpiresAt time.Time
}

// Verifier asks the server whom a credential belongs to.
type Verifier interface {
	CheckUser(ctx context.Context, token string) (*models.Identity, error)
}

// CredentialStore persists the single credential value.
type CredentialStore interface {
	// Load returns "" when nothing is persisted.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Store struct {
	mu         sync.RWMutex
	state      Session
	credential string
	// seq orders verifications; a result is applied only if no newer
	// verification or logout started in the meantime.
	seq uint64

	subs    map[uint64]func(Session)
	nextSub uint64

	creds    CredentialStore
	verifier Verifier
	log      logging.Logger
}

func NewStore(creds CredentialStore, verifier Verifier, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		creds:    creds,
		verifier: verifier,
		log:      log.With("component", "session"),
		subs:     make(map[uint64]func(Session)),
	}
}

// Initialize loads the persisted credential and verifies it. It is meant to
// run once at start-up. A rejected or unverifiable credential leaves the
// session signed out without an error; only a storage failure is returned.
func (s *Store) Initialize(ctx context.Context) error {
	token, err := s.creds.Load(ctx)
	if err != nil {
		s.signOut()
		return fmt.Errorf("load credential: %w", err)
	}

	s.mu.Lock()
	s.credential = token
	s.mu.Unlock()

	if token == "" {
		s.signOut()
		return nil
	}

	if exp := expiryOf(token); !exp.IsZero() && exp.Before(time.Now()) {
		s.log.Debug(ctx, "persisted credential looks expired", "expired_at", exp)
	}

	s.Verify(ctx, token)
	return nil
}

// Verify checks credential against the server. On success the session
// becomes authenticated with the echoed identity and credential becomes the
// one attached to requests; on any failure it becomes unauthenticated while
// the persisted credential is left in place.
func (s *Store) Verify(ctx context.Context, credential string) bool {
	seq := s.begin()

	if credential == "" {
		s.apply(seq, Session{})
		return false
	}

	id, err := s.verifier.CheckUser(ctx, credential)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			s.log.Debug(ctx, "credential rejected", "error", err)
		} else {
			s.log.Warn(ctx, "credential verification failed", "error", err)
		}
		s.apply(seq, Session{})
		return false
	}

	next := Session{
		IsAuthenticated: true,
		Token:           credential,
		Username:        id.Username,
		UserID:          id.UserID,
		ExpiresAt:       expiryOf(credential),
	}
	return s.apply(seq, next)
}

// Login persists token and verifies it. When it returns, the session
// reflects the server's verdict on the new credential.
func (s *Store) Login(ctx context.Context, token string) (bool, error) {
	token = normalize(token)
	if token == "" {
		return false, ErrEmptyCredential
	}

	if err := s.creds.Save(ctx, token); err != nil {
		return false, fmt.Errorf("persist credential: %w", err)
	}

	s.mu.Lock()
	s.credential = token
	s.mu.Unlock()

	ok := s.Verify(ctx, token)
	if ok {
		s.log.Info(ctx, "signed in", "username", s.Current().Username)
	}
	return ok, nil
}

// Logout forgets the credential and signs out immediately. It makes no
// network call; a storage failure is logged, never returned.
func (s *Store) Logout(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear persisted credential", "error", err)
	}
	s.signOut()
	s.log.Info(ctx, "signed out")
}

// Current returns a copy of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Credential returns the credential to attach to authenticated requests.
func (s *Store) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, s.credential != ""
}

// Subscribe registers fn to be called after every session transition. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *Store) signOut() {
	s.mu.Lock()
	s.seq++
	s.credential = ""
	changed := s.state != Session{}
	s.state = Session{}
	subs := s.subscribers()
	s.mu.Unlock()

	if changed {
		notify(subs, Session{})
	}
}

// apply stores next if seq is still the latest verification.
func (s *Store) apply(seq uint64, next Session) bool {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return false
	}
	changed := s.state != next
	s.state = next
	if next.IsAuthenticated {
		// requests must carry the token the server just accepted
		s.credential = next.Token
	}
	subs := s.subscribers()
	s.mu.Unlock()

	if changed {
		notify(subs, next)
	}
	return next.IsAuthenticated
}

func (s *Store) subscribers() []func(Session) {
	out := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Session), st Session) {
	for _, fn := range subs {
		fn(st)
	}
}

func normalize(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

func expiryOf(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
