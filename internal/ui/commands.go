package ui

import (
	"context"
	"time"

	"github.com/abelbrown/blogwiki/internal/content"
	"github.com/abelbrown/blogwiki/internal/paging"
	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 10 * time.Second

// DefaultCommands wires the App to a content provider.
func DefaultCommands(p content.Provider, pageSize int, opts ...paging.Option) Commands {
	return Commands{
		Bootstrap: func() tea.Cmd { return BootstrapCmd(p, pageSize, opts...) },
		LoadNext:  LoadNextCmd,
		LoadPost:  func(slug string) tea.Cmd { return LoadPostCmd(p, slug) },
	}
}

// BootstrapCmd snapshots the published collection and reads the first page.
func BootstrapCmd(p content.Provider, pageSize int, opts ...paging.Option) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		e, err := paging.Bootstrap(ctx, p, pageSize, opts...)
		return EngineReady{Engine: e, Err: err}
	}
}

// LoadNextCmd reads the next page.
func LoadNextCmd(e *paging.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		res, err := e.LoadNext(ctx)
		return PageLoaded{Result: res, Err: err}
	}
}

// LoadPostCmd looks up one post for the detail view.
func LoadPostCmd(p content.Provider, slug string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		post, err := p.GetBySlug(ctx, slug)
		return PostLoaded{Slug: slug, Post: post, Err: err}
	}
}
