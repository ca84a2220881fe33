package content

import (
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC), "March 4, 2025"},
		{time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), "December 31, 2024"},
		{time.Time{}, ""},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAuthorInitial(t *testing.T) {
	tests := []struct {
		author string
		want   string
	}{
		{"dwiki", "D"},
		{"  Ana", "A"},
		{"", "A"},
		{"émile", "É"},
	}
	for _, tt := range tests {
		if got := AuthorInitial(tt.author); got != tt.want {
			t.Errorf("AuthorInitial(%q) = %q, want %q", tt.author, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"  Understanding React Server Components ", "understanding-react-server-components"},
		{"Go 1.24 release", "go-1-24-release"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestItemPath(t *testing.T) {
	it := Item{Slug: "a b/c"}
	if got, want := it.Path(), "/blog/a%20b%2Fc"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
