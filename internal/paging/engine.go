// Package paging accumulates published posts one page at a time.
//
// The Engine holds the posts materialized so far and grows them with
// LoadNext. Each load re-reads the provider's full, ordered collection and
// slices the next page out of it, so page boundaries always come from the
// freshest snapshot. At most one provider call is in flight per Engine; a
// LoadNext that arrives while one is pending, or after the last page, is a
// no-op that never touches the provider.
//
// There is no timeout of its own: a provider call that never returns keeps
// the engine in the loading state. Pass a context with a deadline to bound it.
package paging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abelbrown/blogwiki/internal/content"
	"github.com/abelbrown/blogwiki/internal/logging"
	"github.com/charmbracelet/log"
)

var (
	// ErrProviderUnavailable wraps every failure to fetch the next page.
	// State is rolled back when it is returned; the load can be retried.
	ErrProviderUnavailable = errors.New("content provider unavailable")

	// ErrShortSnapshot means the provider returned fewer posts than the
	// session total promised. Treated as a provider failure.
	ErrShortSnapshot = fmt.Errorf("%w: snapshot shorter than known total", ErrProviderUnavailable)

	// ErrInvalidSnapshot is returned by New when the initial page does not
	// match the page size and total.
	ErrInvalidSnapshot = errors.New("invalid initial snapshot")

	// ErrClosed is returned once the owning view has been torn down.
	ErrClosed = errors.New("paging engine closed")
)

// State is a point-in-time copy of the engine.
type State struct {
	Items       []content.Item
	PageSize    int
	CurrentPage int
	TotalCount  int
	Loading     bool
}

// Result describes what a LoadNext call did.
type Result struct {
	Skipped bool // guard tripped: already loading, or nothing left
	Added   int  // posts appended
	Page    int  // current page after the call
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger overrides the default "paging" logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine is the accumulating list behind the list view.
// Safe for concurrent use.
type Engine struct {
	provider content.Provider
	pageSize int
	total    int
	log      *log.Logger

	mu      sync.Mutex
	items   []content.Item
	seen    map[string]struct{}
	page    int
	loading bool
	closed  bool
}

// New creates an Engine with page 1 already materialized.
// initial must hold exactly min(pageSize, totalCount) posts with unique slugs.
func New(p content.Provider, initial []content.Item, totalCount, pageSize int, opts ...Option) (*Engine, error) {
	if p == nil {
		return nil, errors.New("paging: nil provider")
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidSnapshot, pageSize)
	}
	if totalCount < 0 {
		return nil, fmt.Errorf("%w: negative total %d", ErrInvalidSnapshot, totalCount)
	}
	if want := min(pageSize, totalCount); len(initial) != want {
		return nil, fmt.Errorf("%w: got %d posts, want %d", ErrInvalidSnapshot, len(initial), want)
	}

	seen := make(map[string]struct{}, len(initial))
	for _, it := range initial {
		if _, dup := seen[it.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate slug %q", ErrInvalidSnapshot, it.Slug)
		}
		seen[it.Slug] = struct{}{}
	}

	e := &Engine{
		provider: p,
		pageSize: pageSize,
		total:    totalCount,
		log:      logging.WithPrefix("paging"),
		items:    append([]content.Item(nil), initial...),
		seen:     seen,
		page:     1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Bootstrap reads the collection once and builds an Engine from its first
// page, using the collection length as the session total.
func Bootstrap(ctx context.Context, p content.Provider, pageSize int, opts ...Option) (*Engine, error) {
	if p == nil {
		return nil, errors.New("paging: nil provider")
	}
	all, err := p.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	n := len(all)
	if pageSize > 0 {
		n = min(pageSize, n)
	}
	return New(p, all[:n], len(all), pageSize, opts...)
}

// LoadNext appends the next page.
//
// The provider is called without holding the lock. If Close runs before the
// provider answers, the answer is dropped and ErrClosed is returned.
func (e *Engine) LoadNext(ctx context.Context) (Result, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Result{Skipped: true}, ErrClosed
	}
	if e.loading || !e.hasMoreLocked() {
		res := Result{Skipped: true, Page: e.page}
		e.mu.Unlock()
		return res, nil
	}
	e.loading = true
	page := e.page
	e.mu.Unlock()

	e.log.Debug("loading page", "page", page+1, "size", e.pageSize)
	all, err := e.provider.ListPublished(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = false

	if e.closed {
		e.log.Debug("discarding page for closed engine", "page", page+1)
		return Result{Page: page}, ErrClosed
	}
	if err != nil {
		e.log.Warn("page load failed", "page", page+1, "err", err)
		return Result{Page: e.page}, fmt.Errorf("load page %d: %w: %w", page+1, ErrProviderUnavailable, err)
	}

	start := page * e.pageSize
	end := min(start+e.pageSize, e.total)
	if len(all) < end {
		e.log.Warn("short snapshot", "page", page+1, "have", len(all), "need", end)
		return Result{Page: e.page}, fmt.Errorf("load page %d: %w (have %d, need %d)", page+1, ErrShortSnapshot, len(all), end)
	}

	added := 0
	for _, it := range all[start:end] {
		if _, dup := e.seen[it.Slug]; dup {
			e.log.Warn("skipping duplicate slug", "slug", it.Slug, "page", page+1)
			continue
		}
		e.seen[it.Slug] = struct{}{}
		e.items = append(e.items, it)
		added++
	}
	e.page = page + 1

	e.log.Debug("page loaded", "page", e.page, "added", added, "have", len(e.items), "total", e.total)
	return Result{Added: added, Page: e.page}, nil
}

// HasMore reports whether another page exists beyond the current one.
func (e *Engine) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasMoreLocked()
}

func (e *Engine) hasMoreLocked() bool {
	return e.page*e.pageSize < e.total
}

// Loading reports whether a provider call is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Items returns a copy of the posts materialized so far.
func (e *Engine) Items() []content.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]content.Item(nil), e.items...)
}

// State returns a snapshot of the engine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Items:       append([]content.Item(nil), e.items...),
		PageSize:    e.pageSize,
		CurrentPage: e.page,
		TotalCount:  e.total,
		Loading:     e.loading,
	}
}

// Close marks the engine as disposed. A load still in flight finishes its
// provider call but leaves the state untouched. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}
