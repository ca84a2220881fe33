// Package coord imports every configured feed into the store.
package coord

import (
	"context"
	"sync"
	"time"

	"github.com/abelbrown/blogwiki/internal/content"
	"github.com/abelbrown/blogwiki/internal/fetch"
	"github.com/abelbrown/blogwiki/internal/logging"
	"github.com/abelbrown/blogwiki/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultMaxConcurrent = 5
)

// fetcher interface for dependency injection (testing).
type fetcher interface {
	Fetch(ctx context.Context, src fetch.Source) ([]content.Item, error)
}

// saver is the write side of the store.
type saver interface {
	SavePosts(ctx context.Context, source string, posts []content.Item) (int, error)
}

// Sender receives one ui.ImportComplete per source. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Result is the outcome of importing one source.
type Result struct {
	Source   string
	Fetched  int
	NewPosts int
	Err      error
}

// Options tune an import run. Zero values pick the defaults.
type Options struct {
	Timeout       time.Duration // per source
	MaxConcurrent int
	Interval      time.Duration // Start only; zero imports once
}

// Coordinator manages feed imports.
// Uses context cancellation as the ONLY stop mechanism.
type Coordinator struct {
	store   saver
	fetcher fetcher
	sources []fetch.Source // IMMUTABLE: set at construction, never modified
	opts    Options
	wg      sync.WaitGroup
}

// NewCoordinator creates a Coordinator. sources is copied.
func NewCoordinator(s saver, f fetcher, sources []fetch.Source, opts Options) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	sourcesCopy := make([]fetch.Source, len(sources))
	copy(sourcesCopy, sources)

	return &Coordinator{
		store:   s,
		fetcher: f,
		sources: sourcesCopy,
		opts:    opts,
	}
}

// Start imports in the background: once immediately, then every
// Options.Interval if set. Call with a cancellable context.
func (c *Coordinator) Start(ctx context.Context, sender Sender) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.ImportAll(ctx, sender)
		if c.opts.Interval <= 0 {
			return
		}

		ticker := time.NewTicker(c.opts.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.ImportAll(ctx, sender)
			}
		}
	}()
}

// Wait blocks until the background goroutine exits.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// ImportAll fetches all sources in parallel and saves what they return.
// Results come back in source order; sender (may be nil) sees them as they
// finish. A failing source never stops the others.
func (c *Coordinator) ImportAll(ctx context.Context, sender Sender) []Result {
	results := make([]Result, len(c.sources))

	var g errgroup.Group
	g.SetLimit(c.opts.MaxConcurrent)

	for i, src := range c.sources {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = Result{Source: src.Name, Err: ctx.Err()}
				return nil
			}
			results[i] = c.importSource(ctx, src)
			if sender != nil {
				r := results[i]
				sender.Send(ui.ImportComplete{Source: r.Source, NewPosts: r.NewPosts, Err: r.Err})
			}
			return nil // never fail the group - errors reported per-source
		})
	}

	_ = g.Wait()
	return results
}

func (c *Coordinator) importSource(ctx context.Context, src fetch.Source) Result {
	log := logging.WithPrefix("import")

	fetchCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	res := Result{Source: src.Name}
	posts, err := c.fetcher.Fetch(fetchCtx, src)
	if err != nil {
		log.Warn("fetch failed", "source", src.Name, "url", src.URL, "err", err)
		res.Err = err
		return res
	}
	res.Fetched = len(posts)

	res.NewPosts, res.Err = c.store.SavePosts(ctx, src.Name, posts)
	if res.Err != nil {
		log.Error("save failed", "source", src.Name, "err", res.Err)
		return res
	}
	log.Info("imported", "source", src.Name, "fetched", res.Fetched, "new", res.NewPosts)
	return res
}
