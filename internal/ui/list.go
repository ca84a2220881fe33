package ui

import (
	"strings"

	"github.com/abelbrown/blogwiki/internal/content"
	"github.com/abelbrown/blogwiki/internal/paging"
	"github.com/abelbrown/blogwiki/internal/render"
	"github.com/abelbrown/blogwiki/internal/scroll"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const descriptionLines = 3

// listView is the paginated post list. The engine owns the posts; the view
// keeps a copy for rendering and re-reads it after every page.
type listView struct {
	engine  *paging.Engine
	items   []content.Item
	hasMore bool
	loading bool // a LoadNext is in flight

	cursor int   // post index, or len(items) for the footer
	rowTop []int // first content line of each row, footer last

	vp      viewport.Model
	host    *scrollHost
	ctrl    *scroll.Controller
	release func()
}

func newListView(cfg scroll.Config) listView {
	host := newScrollHost()
	ctrl := scroll.New(cfg, host)
	return listView{
		vp:      viewport.New(0, 0),
		host:    host,
		ctrl:    ctrl,
		release: scroll.Bind(host, ctrl),
	}
}

func (l *listView) setEngine(e *paging.Engine) {
	l.engine = e
	l.sync()
}

// sync copies the engine's posts into the view.
func (l *listView) sync() {
	if l.engine == nil {
		return
	}
	l.items = l.engine.Items()
	l.hasMore = l.engine.HasMore()
	if l.cursor > l.lastIndex() {
		l.cursor = l.lastIndex()
	}
}

func (l *listView) setSize(width, height int) {
	l.vp.Width = width
	l.vp.Height = max(height, 1)
}

// lastIndex is the highest cursor position: the footer while more pages
// exist, otherwise the last post.
func (l listView) lastIndex() int {
	if l.hasMore {
		return len(l.items)
	}
	return max(len(l.items)-1, 0)
}

func (l listView) onFooter() bool {
	return l.hasMore && l.cursor == len(l.items)
}

func (l listView) selected() (content.Item, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return content.Item{}, false
	}
	return l.items[l.cursor], true
}

// moveTo puts the cursor on row i and scrolls it into view.
func (l *listView) moveTo(i int, spinner string) {
	l.cursor = max(0, min(i, l.lastIndex()))
	l.refresh(spinner)
	l.ensureVisible()
}

// refresh re-renders the viewport content, keeping the offset.
func (l *listView) refresh(spinner string) {
	offset := l.vp.YOffset
	l.vp.SetContent(l.render(spinner))
	l.vp.SetYOffset(offset)
	l.host.publish(l.vp.YOffset)
}

func (l *listView) ensureVisible() {
	if l.cursor >= len(l.rowTop) {
		return
	}
	top := l.rowTop[l.cursor]
	bottom := l.vp.TotalLineCount() - 1
	if l.cursor+1 < len(l.rowTop) {
		bottom = l.rowTop[l.cursor+1] - 1
	}
	switch {
	case top < l.vp.YOffset:
		l.vp.SetYOffset(top)
	case bottom >= l.vp.YOffset+l.vp.Height:
		l.vp.SetYOffset(min(top, bottom-l.vp.Height+1))
	}
	l.host.stop()
	l.host.publish(l.vp.YOffset)
}

func (l *listView) render(spinner string) string {
	width := max(l.vp.Width, 20)
	l.rowTop = l.rowTop[:0]

	if len(l.items) == 0 {
		if l.engine == nil {
			return HelpStyle.Render(spinner + " Loading posts...")
		}
		return HelpStyle.Render("No posts available yet.")
	}

	var b strings.Builder
	line := 0
	write := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
		line += strings.Count(s, "\n") + 1
	}

	for i, it := range l.items {
		l.rowTop = append(l.rowTop, line)

		title := runewidth.Truncate(it.Title, width-2, "…")
		style := PostTitle
		if i == l.cursor {
			style = SelectedPostTitle
		}
		write(" " + MetaText.Render(content.FormatDate(it.PublishedDate)))
		write(" " + style.Render(title))
		if desc := clampLines(render.PlainText(it.Description), width-2, descriptionLines); desc != "" {
			write(DescriptionText.PaddingLeft(1).Render(desc))
		}
		write(" " + ReadMore.Render("Read more →"))
		write("")
	}

	if l.hasMore {
		l.rowTop = append(l.rowTop, line)
		switch {
		case l.loading:
			write(" " + LoadMoreButton.Render(spinner+" Loading..."))
		case l.onFooter():
			write(" " + LoadMoreSelected.Render("Load More Posts"))
		default:
			write(" " + LoadMoreButton.Render("Load More Posts"))
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// clampLines wraps s to width and keeps at most n lines, marking a cut with
// an ellipsis.
func clampLines(s string, width, n int) string {
	if s == "" || width <= 0 {
		return ""
	}
	wrapped := strings.Split(lipgloss.NewStyle().Width(width).Render(s), "\n")
	for i := range wrapped {
		wrapped[i] = strings.TrimRight(wrapped[i], " ")
	}
	if len(wrapped) <= n {
		return strings.Join(wrapped, "\n")
	}
	wrapped = wrapped[:n]
	last := wrapped[n-1]
	if runewidth.StringWidth(last)+2 > width {
		last = runewidth.Truncate(last, width-1, "") + "…"
	} else {
		last += " …"
	}
	wrapped[n-1] = last
	return strings.Join(wrapped, "\n")
}
