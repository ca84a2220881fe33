// Package content defines the published post model and the provider
// contract that the list and detail views read from.
package content

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ErrNotFound is returned by GetBySlug when no published post has the slug.
var ErrNotFound = errors.New("post not found")

// Item is a single published post.
// Slug is unique across the whole collection.
type Item struct {
	Slug          string
	Title         string
	Description   string
	Author        string
	PublishedDate time.Time
	Tags          []string
	Content       string // HTML body, already sanitized upstream
}

// Provider is the read side of the content source.
//
// ListPublished returns the full collection in a stable order (newest first
// for the SQLite store). Its length is the authoritative total for a session.
type Provider interface {
	ListPublished(ctx context.Context) ([]Item, error)
	GetBySlug(ctx context.Context, slug string) (Item, error)
}

// Path returns the route of the post's detail page.
func (it Item) Path() string {
	return "/blog/" + url.PathEscape(it.Slug)
}

// FormatDate renders a publish date the way the list and detail views show
// it, e.g. "March 4, 2025". Zero times render as an empty string.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// AuthorInitial returns the upper-cased first letter of the author's name,
// or "A" when the author is unknown.
func AuthorInitial(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return "A"
	}
	r, _ := utf8.DecodeRuneInString(author)
	return string(unicode.ToUpper(r))
}

// Slugify builds a URL-safe slug from a title. Used by importers when the
// source does not carry its own identifier.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
