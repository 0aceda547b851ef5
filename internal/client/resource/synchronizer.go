// Package resource keeps a local, ordered copy of a server-side collection
// (questions, or the answers of one question) and applies mutations to it.
package resource

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/dmitrijs2005/qaforum/internal/logging"
)

// ErrSuperseded is returned by FetchAll when a newer fetch started before
// this one finished. Its result was discarded.
var ErrSuperseded = errors.New("fetch superseded")

// Kind binds a synchronizer to one resource type. Scope is the parent id
// (the question id for answers) and is ignored by unscoped kinds.
type Kind[T models.Resource, P any] struct {
	Name   string
	List   func(ctx context.Context, scope int64) ([]T, error)
	Create func(ctx context.Context, scope int64, payload P) error
	Edit   func(ctx context.Context, id int64, payload P) error
	Delete func(ctx context.Context, id int64) error
}

type Synchronizer[T models.Resource, P any] struct {
	kind Kind[T, P]
	log  logging.Logger

	mu     sync.Mutex
	items  []T
	scope  int64
	gen    uint64
	cancel context.CancelFunc
	// tombstones maps a deleted id to the newest fetch generation that was
	// started before the delete; results of those fetches must not bring it
	// back.
	tombstones map[int64]uint64
	refresh    bool

	subs    map[uint64]func([]T)
	nextSub uint64
}

func NewSynchronizer[T models.Resource, P any](kind Kind[T, P], log logging.Logger) *Synchronizer[T, P] {
	if log == nil {
		log = logging.Nop()
	}
	return &Synchronizer[T, P]{
		kind:       kind,
		log:        log.With("resource", kind.Name),
		tombstones: make(map[int64]uint64),
		subs:       make(map[uint64]func([]T)),
	}
}

// FetchAll replaces the collection with the server's list, newest first.
// Starting a fetch cancels the one in flight; only the most recently started
// fetch may replace the collection. On failure the collection is unchanged.
func (s *Synchronizer[T, P]) FetchAll(ctx context.Context) ([]T, error) {
	if s.kind.List == nil {
		return nil, fmt.Errorf("list %s: %w", s.kind.Name, errors.ErrUnsupported)
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen, scope := s.gen, s.scope
	fctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	fetched, err := s.kind.List(fctx, scope)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug(ctx, "discarded stale fetch", "generation", gen)
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("list %s: %w", s.kind.Name, err)
	}

	items := s.normalize(fetched, gen)
	s.items = items
	subs := s.subscribers()
	s.mu.Unlock()

	s.log.Debug(ctx, "collection replaced", "count", len(items), "scope", scope)
	s.notify(subs, items)
	return slices.Clone(items), nil
}

// Reset drops the scope and the collection without fetching. A fetch in
// flight is cancelled and its result discarded.
func (s *Synchronizer[T, P]) Reset() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	changed := s.scope != 0 || len(s.items) > 0
	s.scope = 0
	s.items = nil
	var subs []func([]T)
	if changed {
		subs = s.subscribers()
	}
	s.mu.Unlock()

	s.notify(subs, nil)
}

// SetScope switches to another parent and fetches its collection. The
// previous scope's items are dropped immediately.
func (s *Synchronizer[T, P]) SetScope(ctx context.Context, scope int64) ([]T, error) {
	s.mu.Lock()
	changed := s.scope != scope
	s.scope = scope
	var subs []func([]T)
	if changed {
		s.items = nil
		subs = s.subscribers()
	}
	s.mu.Unlock()

	s.notify(subs, nil)
	return s.FetchAll(ctx)
}

// Create submits payload under the current scope, flips the refresh signal
// and refetches. A failed refetch is logged; the create itself succeeded.
func (s *Synchronizer[T, P]) Create(ctx context.Context, payload P) error {
	if s.kind.Create == nil {
		return fmt.Errorf("create %s: %w", s.kind.Name, errors.ErrUnsupported)
	}
	if err := s.kind.Create(ctx, s.Scope(), payload); err != nil {
		return fmt.Errorf("create %s: %w", s.kind.Name, err)
	}

	s.mu.Lock()
	s.refresh = !s.refresh
	s.mu.Unlock()

	if _, err := s.FetchAll(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		s.log.Warn(ctx, "refresh after create failed", "error", err)
	}
	return nil
}

// Edit submits payload for id. The local collection is left as is; callers
// refetch when they need the edited version.
func (s *Synchronizer[T, P]) Edit(ctx context.Context, id int64, payload P) error {
	if s.kind.Edit == nil {
		return fmt.Errorf("edit %s: %w", s.kind.Name, errors.ErrUnsupported)
	}
	if err := s.kind.Edit(ctx, id, payload); err != nil {
		return fmt.Errorf("edit %s %d: %w", s.kind.Name, id, err)
	}
	return nil
}

// Delete removes id on the server and then from the local collection.
func (s *Synchronizer[T, P]) Delete(ctx context.Context, id int64) error {
	if s.kind.Delete == nil {
		return fmt.Errorf("delete %s: %w", s.kind.Name, errors.ErrUnsupported)
	}
	if err := s.kind.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", s.kind.Name, id, err)
	}

	s.mu.Lock()
	s.tombstones[id] = s.gen
	s.items = slices.DeleteFunc(slices.Clone(s.items), func(it T) bool { return it.ResourceID() == id })
	items := s.items
	subs := s.subscribers()
	s.mu.Unlock()

	s.notify(subs, items)
	return nil
}

// Items returns a copy of the collection.
func (s *Synchronizer[T, P]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Synchronizer[T, P]) Scope() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// RefreshSignal flips on every successful create.
func (s *Synchronizer[T, P]) RefreshSignal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

// Subscribe registers fn for every collection change. fn receives a copy.
func (s *Synchronizer[T, P]) Subscribe(fn func([]T)) func() {
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

// normalize drops duplicate ids (first occurrence wins) and tombstoned ids,
// then orders by creation time, newest first. Must be called with mu held.
func (s *Synchronizer[T, P]) normalize(fetched []T, gen uint64) []T {
	seen := make(map[int64]struct{}, len(fetched))
	out := make([]T, 0, len(fetched))
	for _, it := range fetched {
		id := it.ResourceID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if before, ok := s.tombstones[id]; ok && gen <= before {
			continue
		}
		out = append(out, it)
	}

	for id, before := range s.tombstones {
		if gen > before {
			delete(s.tombstones, id)
		}
	}

	slices.SortStableFunc(out, func(a, b T) int {
		return b.CreatedTime().Compare(a.CreatedTime())
	})
	return out
}

func (s *Synchronizer[T, P]) subscribers() []func([]T) {
	out := make([]func([]T), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func (s *Synchronizer[T, P]) notify(subs []func([]T), items []T) {
	for _, fn := range subs {
		fn(slices.Clone(items))
	}
}
