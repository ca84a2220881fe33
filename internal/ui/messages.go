// Package ui provides the Bubble Tea TUI for blogwiki.
package ui

import (
	"github.com/abelbrown/blogwiki/internal/content"
	"github.com/abelbrown/blogwiki/internal/paging"
)

// EngineReady is sent once the first page has been read from the store.
type EngineReady struct {
	Engine *paging.Engine
	Err    error
}

// PageLoaded is sent when a LoadNext call returns.
type PageLoaded struct {
	Result paging.Result
	Err    error
}

// PostLoaded is sent when a single post has been looked up by slug.
type PostLoaded struct {
	Slug string
	Post content.Item
	Err  error
}

// ImportComplete is sent per source when a background import finishes.
type ImportComplete struct {
	Source   string
	NewPosts int
	Err      error
}

// scrollFrame advances a smooth scroll by one animation step.
type scrollFrame struct{}
