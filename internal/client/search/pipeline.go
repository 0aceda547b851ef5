package search

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/qaforum/internal/client/models"
)

// Result is one published filtered view together with the inputs that
// produced it.
type Result[T models.Resource] struct {
	Query string
	Items []T
}

// Pipeline derives the filtered view from a collection and the latest
// query. Query changes are debounced; collection changes publish at once.
type Pipeline[T models.Resource] struct {
	debounce *Debouncer
	publish  func(Result[T])

	// pub serializes compute-and-publish so views arrive in the order their
	// inputs changed.
	pub sync.Mutex

	mu      sync.Mutex
	items   []T
	query   string
	applied string
}

// NewPipeline publishes every recomputed view to publish, which must not
// call back into the pipeline. window <= 0 uses DefaultWindow; a nil clock
// uses the real one.
func NewPipeline[T models.Resource](window time.Duration, clock Clock, publish func(Result[T])) *Pipeline[T] {
	return &Pipeline[T]{
		debounce: NewDebouncer(window, clock),
		publish:  publish,
	}
}

// SetQuery records q and schedules a recompute after the quiet window.
func (p *Pipeline[T]) SetQuery(q string) {
	p.mu.Lock()
	p.query = q
	p.mu.Unlock()

	p.debounce.Trigger(p.flush)
}

// SetItems replaces the collection and recomputes with the query that was
// last applied. A pending query change keeps waiting for its window.
func (p *Pipeline[T]) SetItems(items []T) {
	p.pub.Lock()
	defer p.pub.Unlock()

	p.mu.Lock()
	p.items = append([]T(nil), items...)
	res := Result[T]{Query: p.applied, Items: Filter(p.items, p.applied)}
	p.mu.Unlock()

	p.publish(res)
}

// Recompute applies the latest query immediately and cancels the pending
// debounce.
func (p *Pipeline[T]) Recompute() {
	p.debounce.Cancel()
	p.flush()
}

// Query is the latest query, applied or not.
func (p *Pipeline[T]) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Close drops any pending recompute.
func (p *Pipeline[T]) Close() {
	p.debounce.Cancel()
}

func (p *Pipeline[T]) flush() {
	p.pub.Lock()
	defer p.pub.Unlock()

	p.mu.Lock()
	p.applied = p.query
	res := Result[T]{Query: p.applied, Items: Filter(p.items, p.applied)}
	p.mu.Unlock()

	p.publish(res)
}
