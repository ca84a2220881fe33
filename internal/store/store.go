// Package store provides SQLite persistence for blog posts.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/abelbrown/blogwiki/internal/content"
	_ "modernc.org/sqlite"
)

// Store handles SQLite persistence and serves as the content.Provider for
// the list and detail views. Concrete type, not an interface.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

var _ content.Provider = (*Store)(nil)

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every connection in the pool sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		slug TEXT PRIMARY KEY,
		source_name TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		description TEXT,
		author TEXT,
		published_at DATETIME NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		content TEXT,
		published INTEGER NOT NULL DEFAULT 1,
		imported_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published, published_at DESC);
	CREATE INDEX IF NOT EXISTS idx_posts_source ON posts(source_name);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SavePosts stores posts from one source, returning the count of new slugs.
// Existing slugs from the same source are refreshed in place so an edited
// post keeps its position key. A slug already owned by another source is
// never overwritten; the post is stored under a source-qualified slug
// instead. Posts without a slug are rejected.
// Thread-safe: acquires write lock.
func (s *Store) SavePosts(ctx context.Context, source string, posts []content.Item) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	insert, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO posts (
			slug, source_name, title, description, author,
			published_at, tags, content, imported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer insert.Close()

	update, err := tx.PrepareContext(ctx, `
		UPDATE posts SET
			title = ?, description = ?, author = ?,
			published_at = ?, tags = ?, content = ?, imported_at = ?
		WHERE slug = ? AND source_name = ?
	`)
	if err != nil {
		return 0, err
	}
	defer update.Close()

	now := time.Now().UTC()
	newCount := 0
	for _, p := range posts {
		if p.Slug == "" {
			return 0, fmt.Errorf("save %q: empty slug", p.Title)
		}
		tags, err := encodeTags(p.Tags)
		if err != nil {
			return 0, err
		}

		saved := false
		for _, slug := range []string{p.Slug, qualifiedSlug(source, p.Slug)} {
			result, err := insert.ExecContext(ctx,
				slug, source, p.Title, p.Description, p.Author,
				p.PublishedDate.UTC(), tags, p.Content, now,
			)
			if err != nil {
				return 0, fmt.Errorf("insert %s: %w", slug, err)
			}
			if n, err := result.RowsAffected(); err != nil {
				return 0, err
			} else if n > 0 {
				newCount++
				saved = true
				break
			}

			result, err = update.ExecContext(ctx,
				p.Title, p.Description, p.Author,
				p.PublishedDate.UTC(), tags, p.Content, now, slug, source,
			)
			if err != nil {
				return 0, fmt.Errorf("update %s: %w", slug, err)
			}
			if n, err := result.RowsAffected(); err != nil {
				return 0, err
			} else if n > 0 {
				saved = true
				break
			}
			// Slug belongs to another source; try the qualified one.
		}
		if !saved {
			return 0, fmt.Errorf("save %s: slug taken by another source", p.Slug)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return newCount, nil
}

// qualifiedSlug is the fallback slug for a post whose slug another source
// already owns. It is stable across imports of the same source.
func qualifiedSlug(source, slug string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + slug))
	return slug + "-" + hex.EncodeToString(sum[:3])
}

// SetPublished hides or re-shows a post without deleting it.
// Thread-safe: acquires write lock.
func (s *Store) SetPublished(ctx context.Context, slug string, published bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE posts SET published = ? WHERE slug = ?", boolToInt(published), slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return content.ErrNotFound
	}
	return nil
}

// ListPublished returns every published post, newest first. Ties on the
// publish date are broken by slug so the order is stable between calls.
// Thread-safe: acquires read lock.
func (s *Store) ListPublished(ctx context.Context) ([]content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT slug, title, description, author, published_at, tags, content
		FROM posts
		WHERE published = 1
		ORDER BY published_at DESC, slug ASC
	`
	return s.queryPosts(ctx, query)
}

// GetBySlug returns one published post or content.ErrNotFound.
// Thread-safe: acquires read lock.
func (s *Store) GetBySlug(ctx context.Context, slug string) (content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT slug, title, description, author, published_at, tags, content
		FROM posts
		WHERE slug = ? AND published = 1
	`
	posts, err := s.queryPosts(ctx, query, slug)
	if err != nil {
		return content.Item{}, err
	}
	if len(posts) == 0 {
		return content.Item{}, fmt.Errorf("%s: %w", slug, content.ErrNotFound)
	}
	return posts[0], nil
}

// Count returns the number of published posts.
// Thread-safe: acquires read lock.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts WHERE published = 1").Scan(&n)
	return n, err
}

// queryPosts executes a query and scans results into Items.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]content.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Item
	for rows.Next() {
		var (
			p                   content.Item
			description, author sql.NullString
			body                sql.NullString
			tags                string
		)
		err := rows.Scan(
			&p.Slug,
			&p.Title,
			&description,
			&author,
			&p.PublishedDate,
			&tags,
			&body,
		)
		if err != nil {
			return nil, err
		}
		p.Description = description.String
		p.Author = author.String
		p.Content = body.String
		if p.Tags, err = decodeTags(tags); err != nil {
			return nil, fmt.Errorf("post %s: %w", p.Slug, err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
