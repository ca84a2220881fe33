package coord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/blogwiki/internal/content"
	"github.com/abelbrown/blogwiki/internal/fetch"
	"github.com/abelbrown/blogwiki/internal/store"
	"github.com/abelbrown/blogwiki/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// mockFetcher implements the fetcher interface for testing.
type mockFetcher struct {
	mu          sync.Mutex
	fetchedSrcs []fetch.Source
	posts       map[string][]content.Item // by source name
	errs        map[string]error
	fetchDelay  time.Duration
	fetchCount  atomic.Int32

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, src fetch.Source) ([]content.Item, error) {
	m.fetchCount.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if m.fetchDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.fetchDelay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchedSrcs = append(m.fetchedSrcs, src)
	return m.posts[src.Name], m.errs[src.Name]
}

func (m *mockFetcher) getFetchedSources() []fetch.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]fetch.Source, len(m.fetchedSrcs))
	copy(result, m.fetchedSrcs)
	return result
}

// mockSender collects messages like a tea.Program would.
type mockSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *mockSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func posts(prefix string, n int) []content.Item {
	out := make([]content.Item, n)
	for i := range out {
		out[i] = content.Item{
			Slug:          fmt.Sprintf("%s-%d", prefix, i),
			Title:         fmt.Sprintf("%s %d", prefix, i),
			PublishedDate: time.Now().Add(-time.Duration(i) * time.Minute),
		}
	}
	return out
}

func threeSources() []fetch.Source {
	return []fetch.Source{
		{Type: "rss", Name: "Source1", URL: "http://example.com/1"},
		{Type: "rss", Name: "Source2", URL: "http://example.com/2"},
		{Type: "atom", Name: "Source3", URL: "http://example.com/3"},
	}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestImportAllFetchesAllSources(t *testing.T) {
	s := openStore(t)
	mock := &mockFetcher{}
	c := NewCoordinator(s, mock, threeSources(), Options{})

	results := c.ImportAll(context.Background(), nil)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, src := range threeSources() {
		if results[i].Source != src.Name {
			t.Errorf("result %d source = %q, want %q", i, results[i].Source, src.Name)
		}
	}
	if got := len(mock.getFetchedSources()); got != 3 {
		t.Errorf("expected 3 sources fetched, got %d", got)
	}
}

func TestImportAllSavesPosts(t *testing.T) {
	s := openStore(t)
	mock := &mockFetcher{posts: map[string][]content.Item{
		"Source1": posts("a", 3),
		"Source2": posts("b", 2),
	}}
	c := NewCoordinator(s, mock, threeSources(), Options{})
	ctx := context.Background()

	results := c.ImportAll(ctx, nil)
	if results[0].NewPosts != 3 || results[1].NewPosts != 2 || results[2].NewPosts != 0 {
		t.Errorf("unexpected results: %+v", results)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Count = %d, want 5", n)
	}

	// A second run finds nothing new.
	results = c.ImportAll(ctx, nil)
	for _, r := range results {
		if r.NewPosts != 0 {
			t.Errorf("re-import of %s added %d posts", r.Source, r.NewPosts)
		}
	}
}

func TestImportAllHandlesFetchError(t *testing.T) {
	s := openStore(t)
	boom := errors.New("boom")
	mock := &mockFetcher{
		posts: map[string][]content.Item{"Source1": posts("a", 1), "Source3": posts("c", 1)},
		errs:  map[string]error{"Source2": boom},
	}
	c := NewCoordinator(s, mock, threeSources(), Options{})

	results := c.ImportAll(context.Background(), nil)

	if !errors.Is(results[1].Err, boom) {
		t.Errorf("Source2 err = %v, want boom", results[1].Err)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("other sources should succeed: %+v", results)
	}
	if results[0].NewPosts != 1 || results[2].NewPosts != 1 {
		t.Errorf("other sources should still be saved: %+v", results)
	}
}

func TestImportAllSendsImportComplete(t *testing.T) {
	s := openStore(t)
	mock := &mockFetcher{
		posts: map[string][]content.Item{"Source1": posts("a", 2)},
		errs:  map[string]error{"Source3": errors.New("down")},
	}
	c := NewCoordinator(s, mock, threeSources(), Options{})
	sender := &mockSender{}

	c.ImportAll(context.Background(), sender)

	if len(sender.msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(sender.msgs))
	}
	bySource := map[string]ui.ImportComplete{}
	for _, msg := range sender.msgs {
		ic, ok := msg.(ui.ImportComplete)
		if !ok {
			t.Fatalf("unexpected message type %T", msg)
		}
		bySource[ic.Source] = ic
	}
	if bySource["Source1"].NewPosts != 2 {
		t.Errorf("Source1 NewPosts = %d, want 2", bySource["Source1"].NewPosts)
	}
	if bySource["Source3"].Err == nil {
		t.Error("Source3 should report its error")
	}
}

func TestImportAllHandlesFetchTimeout(t *testing.T) {
	s := openStore(t)
	mock := &mockFetcher{fetchDelay: time.Second}
	c := NewCoordinator(s, mock, threeSources()[:1], Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	results := c.ImportAll(context.Background(), nil)

	if time.Since(start) > 500*time.Millisecond {
		t.Error("per-source timeout was not applied")
	}
	if !errors.Is(results[0].Err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", results[0].Err)
	}
}

func TestImportAllRespectsContextCancellation(t *testing.T) {
	s := openStore(t)
	mock := &mockFetcher{fetchDelay: 100 * time.Millisecond}
	c := NewCoordinator(s, mock, threeSources(), Options{MaxConcurrent: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []Result)
	go func() {
		done <- c.ImportAll(ctx, nil)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case results := <-done:
		for _, r := range results {
			if r.Err == nil {
				t.Errorf("%s should have been cancelled", r.Source)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ImportAll did not respect context cancellation")
	}
}

func TestImportAllParallelRespectsLimit(t *testing.T) {
	s := openStore(t)
	mock := &mockFetcher{fetchDelay: 30 * time.Millisecond}

	var sources []fetch.Source
	for i := 0; i < 10; i++ {
		sources = append(sources, fetch.Source{Name: fmt.Sprintf("S%d", i), URL: "http://x"})
	}
	c := NewCoordinator(s, mock, sources, Options{MaxConcurrent: 3})

	c.ImportAll(context.Background(), nil)

	if got := mock.fetchCount.Load(); got != 10 {
		t.Errorf("fetchCount = %d, want 10", got)
	}
	if got := mock.maxInFlight.Load(); got > 3 {
		t.Errorf("max in flight = %d, want <= 3", got)
	}
	if got := mock.maxInFlight.Load(); got < 2 {
		t.Errorf("max in flight = %d, fetches did not run in parallel", got)
	}
}

func TestCoordinatorSourcesImmutable(t *testing.T) {
	s := openStore(t)
	sources := threeSources()
	mock := &mockFetcher{}
	c := NewCoordinator(s, mock, sources, Options{})

	sources[0].Name = "Mutated"
	results := c.ImportAll(context.Background(), nil)

	if results[0].Source != "Source1" {
		t.Errorf("coordinator saw caller mutation: %q", results[0].Source)
	}
}

func TestCoordinatorStartAndWait(t *testing.T) {
	s := openStore(t)
	mock := &mockFetcher{}
	c := NewCoordinator(s, mock, threeSources(), Options{Interval: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, nil)

	time.Sleep(70 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}

	if got := mock.fetchCount.Load(); got < 6 {
		t.Errorf("fetchCount = %d, expected at least two rounds", got)
	}
}

func TestCoordinatorStartOnce(t *testing.T) {
	s := openStore(t)
	mock := &mockFetcher{}
	c := NewCoordinator(s, mock, threeSources(), Options{})

	c.Start(context.Background(), nil)
	c.Wait()

	if got := mock.fetchCount.Load(); got != 3 {
		t.Errorf("fetchCount = %d, want 3", got)
	}
}
