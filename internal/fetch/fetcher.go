// Package fetch imports blog posts from RSS and Atom feeds.
//
// Feed entries are converted to content.Item values with a stable slug so a
// re-import refreshes the same post instead of duplicating it. Nothing is
// stored here; the caller decides what to do with the posts.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/abelbrown/blogwiki/internal/content"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"
)

const userAgent = "blogwiki/1.0 (+https://github.com/abelbrown/blogwiki)"

// Source is one configured feed.
type Source struct {
	Name string
	Type string // "rss" or "atom"
	URL  string
}

// Fetcher retrieves posts from feed sources.
// Requests share one limiter, so parallel imports stay polite to hosts.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher with the given HTTP client timeout.
// perSecond <= 0 disables pacing.
func NewFetcher(timeout time.Duration, perSecond float64) *Fetcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Fetch retrieves the posts of one source in feed order.
//
// The function respects context cancellation, including while waiting on
// the rate limiter.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]content.Item, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	now := time.Now()
	seen := make(map[string]struct{}, len(feed.Items))
	posts := make([]content.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		p := convertEntry(entry, now)
		if _, dup := seen[p.Slug]; dup {
			p.Slug += "-" + hashString(entryKey(entry))[:6]
		}
		seen[p.Slug] = struct{}{}
		posts = append(posts, p)
	}
	return posts, nil
}

// convertEntry converts a gofeed.Item to a post.
func convertEntry(entry *gofeed.Item, fetchTime time.Time) content.Item {
	published := fetchTime
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	author := ""
	if entry.Author != nil {
		author = entry.Author.Name
	} else if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		author = entry.Authors[0].Name
	}

	// Full body when the feed carries one, otherwise the summary doubles as it.
	body := entry.Content
	description := entry.Description
	if body == "" {
		body = entry.Description
		description = truncate(entry.Description, 300)
	}

	var tags []string
	for _, c := range entry.Categories {
		if c = strings.TrimSpace(c); c != "" {
			tags = append(tags, c)
		}
	}

	return content.Item{
		Slug:          slugFor(entry),
		Title:         strings.TrimSpace(entry.Title),
		Description:   description,
		Author:        author,
		PublishedDate: published,
		Tags:          tags,
		Content:       body,
	}
}

// slugFor derives a stable slug: the last path segment of the link, then the
// title, then a hash of the entry's identity.
func slugFor(entry *gofeed.Item) string {
	if entry.Link != "" {
		if u, err := url.Parse(entry.Link); err == nil {
			base := path.Base(strings.TrimSuffix(u.Path, "/"))
			base = strings.TrimSuffix(base, path.Ext(base))
			if s := content.Slugify(base); s != "" {
				return s
			}
		}
	}
	if s := content.Slugify(entry.Title); s != "" {
		return s
	}
	return hashString(entryKey(entry))
}

func entryKey(entry *gofeed.Item) string {
	if entry.GUID != "" {
		return entry.GUID
	}
	if entry.Link != "" {
		return entry.Link
	}
	key := entry.Title
	if entry.PublishedParsed != nil {
		key += entry.PublishedParsed.String()
	}
	return key
}

// hashString creates a short hash of a string for use as an ID.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:8])
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
