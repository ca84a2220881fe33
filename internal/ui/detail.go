package ui

import (
	"strings"

	"github.com/abelbrown/blogwiki/internal/content"
	"github.com/abelbrown/blogwiki/internal/render"
	"github.com/abelbrown/blogwiki/internal/scroll"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

type detailState int

const (
	detailLoading detailState = iota
	detailReady
	detailNotFound
	detailFailed
)

const authorBio = "Writer and contributor at Blog Wiki. Passionate about sharing knowledge and insightful content."

// detailView shows one post. A fresh view, with its own controller and
// subscription, is created every time a post is opened.
type detailView struct {
	slug  string
	post  content.Item
	state detailState
	err   error
	body  string // rendered once per post and width

	vp      viewport.Model
	host    *scrollHost
	ctrl    *scroll.Controller
	release func()
}

func newDetailView(slug string, cfg scroll.Config, width, height int) detailView {
	host := newScrollHost()
	ctrl := scroll.New(cfg, host)
	vp := viewport.New(width, max(height, 1))
	return detailView{
		slug:    slug,
		vp:      vp,
		host:    host,
		ctrl:    ctrl,
		release: scroll.Bind(host, ctrl),
	}
}

// close drops the scroll subscription. Safe to call more than once.
func (d *detailView) close() {
	if d.release != nil {
		d.release()
	}
}

func (d *detailView) setSize(width, height int, r *render.Renderer) {
	resized := d.vp.Width != width
	d.vp.Width = width
	d.vp.Height = max(height, 1)
	if resized && d.state == detailReady {
		d.renderBody(r)
		d.layout()
	}
}

// setPost fills the view once GetBySlug answers.
func (d *detailView) setPost(post content.Item, r *render.Renderer) {
	d.post = post
	d.state = detailReady
	d.ctrl.SetContent(post.Content)
	d.renderBody(r)
	d.layout()
	d.vp.GotoTop()
	d.host.publish(d.vp.YOffset)
}

func (d *detailView) renderBody(r *render.Renderer) {
	if r != nil {
		body, err := r.Render(d.post.Content, d.vp.Width)
		if err == nil {
			d.body = body
			return
		}
	}
	// Bare wrapped text when there is no renderer or it fails.
	d.body = lipgloss.NewStyle().
		Width(render.WrapWidth(d.vp.Width)).
		PaddingLeft(1).
		Render(render.PlainText(d.post.Content))
}

func (d *detailView) layout() {
	offset := d.vp.YOffset
	d.vp.SetContent(d.render())
	d.vp.SetYOffset(offset)
}

func (d detailView) render() string {
	p := d.post
	width := render.WrapWidth(d.vp.Width)
	var b strings.Builder

	b.WriteString(" " + Badge.Render("Blog") + "\n\n")
	b.WriteString(ArticleTitle.Width(width).PaddingLeft(1).Render(p.Title) + "\n")

	meta := []string{}
	if p.Author != "" {
		meta = append(meta, p.Author)
	}
	if date := content.FormatDate(p.PublishedDate); date != "" {
		meta = append(meta, date)
	}
	meta = append(meta, scroll.ReadingTimeLabel(d.ctrl.State().EstimatedReadMinutes))
	b.WriteString(" " + MetaText.Render(strings.Join(meta, " · ")) + "\n")

	b.WriteString("\n" + d.body + "\n")

	if len(p.Tags) > 0 {
		b.WriteString(" " + SectionLabel.Render("Topics") + "\n ")
		for _, tag := range p.Tags {
			b.WriteString(Badge.Render(tag))
		}
		b.WriteString("\n\n")
	}

	author := p.Author
	if author == "" {
		author = "Anonymous"
	}
	card := lipgloss.JoinHorizontal(lipgloss.Top,
		Avatar.Render(content.AuthorInitial(p.Author)),
		" ",
		lipgloss.NewStyle().Width(max(width-10, 20)).Render(
			PostTitle.Render(author)+"\n"+MetaText.Render(authorBio),
		),
	)
	b.WriteString(" " + BioCard.Render(card))

	return b.String()
}

// header is the floating navigation bar, blank while hidden.
func (d detailView) header(width int) string {
	if !d.ctrl.State().HeaderVisible {
		return strings.Repeat(" ", max(width, 0))
	}
	text := "← Back to blog"
	// The post's path goes on the right when it fits.
	path := content.Item{Slug: d.slug}.Path()
	gap := width - HeaderBar.GetHorizontalFrameSize() - lipgloss.Width(text) - lipgloss.Width(path)
	if gap >= 2 {
		text += strings.Repeat(" ", gap) + path
	}
	return HeaderBar.Width(width).Render(text)
}

func (d detailView) View(width int, spinner string) string {
	switch d.state {
	case detailLoading:
		return d.header(width) + "\n" + HelpStyle.Render(spinner+" Loading post...")
	case detailNotFound:
		return d.header(width) + "\n" + HelpStyle.Render(
			SectionLabel.Render("Post not found")+"\n\n"+
				"The post you're looking for doesn't exist or has been removed.\n\n"+
				"Press esc to go back to the blog.")
	case detailFailed:
		msg := "The post could not be loaded."
		if d.err != nil {
			msg += "\n\n" + d.err.Error()
		}
		return d.header(width) + "\n" + HelpStyle.Render(msg)
	}
	return d.header(width) + "\n" + d.vp.View()
}
