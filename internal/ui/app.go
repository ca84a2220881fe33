package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abelbrown/blogwiki/internal/content"
	"github.com/abelbrown/blogwiki/internal/paging"
	"github.com/abelbrown/blogwiki/internal/render"
	"github.com/abelbrown/blogwiki/internal/scroll"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeList mode = iota
	modeDetail
)

const bannerHeight = 3

// Commands are the side effects the App can ask for. Each returns a tea.Cmd
// that produces the matching message. A nil entry disables the feature.
type Commands struct {
	Bootstrap func() tea.Cmd                 // EngineReady
	LoadNext  func(e *paging.Engine) tea.Cmd // PageLoaded
	LoadPost  func(slug string) tea.Cmd      // PostLoaded
}

// Options configure the views. A nil scroll config means scroll.ListConfig
// or scroll.DetailConfig; a non-nil one is used as given, zeros included.
type Options struct {
	ListScroll   *scroll.Config
	DetailScroll *scroll.Config
	Renderer     *render.Renderer // nil renders bodies as plain text
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the store. It receives posts via messages.
type App struct {
	cmds         Commands
	opts         Options
	detailScroll scroll.Config

	mode   mode
	list   listView
	detail detailView

	spinner spinner.Model
	help    help.Model
	status  string
	err     error
	width   int
	height  int
	ready   bool

	// bootstrapping is set from a Bootstrap request until its EngineReady.
	bootstrapping bool
}

// NewApp creates the App. Init issues the first Bootstrap.
func NewApp(cmds Commands, opts Options) App {
	listScroll, detailScroll := scroll.ListConfig(), scroll.DetailConfig()
	if opts.ListScroll != nil {
		listScroll = *opts.ListScroll
	}
	if opts.DetailScroll != nil {
		detailScroll = *opts.DetailScroll
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	return App{
		cmds:          cmds,
		opts:          opts,
		detailScroll:  detailScroll,
		list:          newListView(listScroll),
		spinner:       s,
		help:          help.New(),
		bootstrapping: cmds.Bootstrap != nil,
	}
}

// Init starts the spinner and reads the first page.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick}
	if a.cmds.Bootstrap != nil {
		cmds = append(cmds, a.cmds.Bootstrap())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		a.layout()
		a.list.refresh(a.spinner.View())

	case tea.KeyMsg:
		cmd = a.handleKeyMsg(msg)

	case tea.MouseMsg:
		cmd = a.scrollActive(msg)

	case spinner.TickMsg:
		a.spinner, cmd = a.spinner.Update(msg)
		if a.list.loading || a.list.engine == nil {
			a.list.refresh(a.spinner.View())
		}

	case EngineReady:
		a.bootstrapping = false
		if msg.Err != nil {
			a.err = msg.Err
			break
		}
		if a.list.engine != nil && a.list.engine != msg.Engine {
			a.list.engine.Close()
		}
		a.list.setEngine(msg.Engine)
		a.list.cursor = 0
		a.list.refresh(a.spinner.View())
		a.list.vp.GotoTop()
		a.list.host.publish(a.list.vp.YOffset)

	case PageLoaded:
		a.list.loading = false
		if msg.Err != nil && !errors.Is(msg.Err, paging.ErrClosed) {
			a.err = msg.Err
		}
		a.list.sync()
		a.list.refresh(a.spinner.View())

	case PostLoaded:
		if a.mode != modeDetail || msg.Slug != a.detail.slug {
			break // the user already left this post
		}
		switch {
		case errors.Is(msg.Err, content.ErrNotFound):
			a.detail.state = detailNotFound
		case msg.Err != nil:
			a.detail.state = detailFailed
			a.detail.err = msg.Err
		default:
			a.detail.setPost(msg.Post, a.opts.Renderer)
		}

	case ImportComplete:
		switch {
		case msg.Err != nil:
			a.status = fmt.Sprintf("import %s failed", msg.Source)
		case msg.NewPosts > 0:
			a.status = fmt.Sprintf("%d new from %s, r to reload", msg.NewPosts, msg.Source)
		}

	case scrollFrame:
		cmd = a.animate()
	}

	a.layout()
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	// Clear any existing error on key press
	a.err = nil

	if key.Matches(msg, keys.Quit) {
		a.shutdown()
		return tea.Quit
	}

	if a.mode == modeDetail {
		return a.handleDetailKey(msg)
	}

	spin := a.spinner.View()
	switch {
	case key.Matches(msg, keys.Up):
		a.list.moveTo(a.list.cursor-1, spin)
	case key.Matches(msg, keys.Down):
		a.list.moveTo(a.list.cursor+1, spin)
	case key.Matches(msg, keys.Home):
		a.list.moveTo(0, spin)
	case key.Matches(msg, keys.End):
		a.list.moveTo(a.list.lastIndex(), spin)
	case key.Matches(msg, keys.Open):
		if a.list.onFooter() {
			return a.loadMore()
		}
		if post, ok := a.list.selected(); ok {
			return a.openPost(post.Slug)
		}
	case key.Matches(msg, keys.LoadMore):
		return a.loadMore()
	case key.Matches(msg, keys.Top):
		a.list.cursor = 0
		a.list.refresh(spin)
		a.list.ctrl.ScrollToTop()
		return a.startAnimation(a.list.host)
	case key.Matches(msg, keys.Reload):
		return a.reload()
	default:
		return a.scrollActive(msg)
	}
	return nil
}

func (a *App) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Back):
		a.detail.close()
		a.mode = modeList
		return nil
	case key.Matches(msg, keys.Top):
		a.detail.ctrl.ScrollToTop()
		return a.startAnimation(a.detail.host)
	}
	return a.scrollActive(msg)
}

// scrollActive lets the active viewport handle a scroll key or wheel event,
// then reports the new offset.
func (a *App) scrollActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.mode {
	case modeDetail:
		if a.detail.state != detailReady {
			return nil
		}
		a.detail.host.stop()
		a.detail.vp, cmd = a.detail.vp.Update(msg)
		a.detail.host.publish(a.detail.vp.YOffset)
	default:
		a.list.host.stop()
		a.list.vp, cmd = a.list.vp.Update(msg)
		a.list.host.publish(a.list.vp.YOffset)
	}
	return cmd
}

func (a *App) startAnimation(h *scrollHost) tea.Cmd {
	if !h.animating {
		return nil
	}
	return nextFrame()
}

// animate advances any running smooth scroll by one frame.
func (a *App) animate() tea.Cmd {
	running := false
	if h := a.list.host; h.animating {
		off, done := h.step()
		a.list.vp.SetYOffset(off)
		h.publish(a.list.vp.YOffset)
		running = running || !done
	}
	if h := a.detail.host; h != nil && h.animating {
		off, done := h.step()
		a.detail.vp.SetYOffset(off)
		h.publish(a.detail.vp.YOffset)
		running = running || !done
	}
	if running {
		return nextFrame()
	}
	return nil
}

// loadMore asks the engine for the next page unless one is already coming.
func (a *App) loadMore() tea.Cmd {
	if a.list.engine == nil || a.list.loading || !a.list.hasMore || a.cmds.LoadNext == nil {
		return nil
	}
	a.list.loading = true
	a.list.refresh(a.spinner.View())
	return a.cmds.LoadNext(a.list.engine)
}

func (a *App) openPost(slug string) tea.Cmd {
	a.detail.close()
	a.detail = newDetailView(slug, a.detailScroll, a.width, a.detailHeight())
	a.mode = modeDetail
	if a.cmds.LoadPost == nil {
		a.detail.state = detailNotFound
		return nil
	}
	return a.cmds.LoadPost(slug)
}

// reload starts a new session with a fresh total, picking up imported posts.
func (a *App) reload() tea.Cmd {
	if a.cmds.Bootstrap == nil || a.list.loading || a.bootstrapping {
		return nil
	}
	if a.list.engine != nil {
		a.list.engine.Close()
	}
	a.list.engine = nil
	a.list.items = nil
	a.list.hasMore = false
	a.status = ""
	a.bootstrapping = true
	a.list.refresh(a.spinner.View())
	return a.cmds.Bootstrap()
}

func (a *App) shutdown() {
	if a.list.engine != nil {
		a.list.engine.Close()
	}
	a.list.release()
	a.detail.close()
}

func (a App) errLines() int {
	if a.err != nil {
		return 1
	}
	return 0
}

func (a App) listHeight() int {
	return a.height - bannerHeight - 1 - a.errLines()
}

func (a App) detailHeight() int {
	return a.height - 2 - a.errLines()
}

// layout sizes both viewports for the current window.
func (a *App) layout() {
	if !a.ready {
		return
	}
	a.list.setSize(a.width, a.listHeight())
	if a.detail.host != nil {
		a.detail.setSize(a.width, a.detailHeight(), a.opts.Renderer)
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	switch a.mode {
	case modeDetail:
		b.WriteString(a.detail.View(a.width, a.spinner.View()))
	default:
		b.WriteString(SiteTitle.Render("List Blog Wiki.") + "\n")
		b.WriteString(SiteSubtitle.Render("Explore our collection of insightful articles and tutorials") + "\n\n")
		b.WriteString(a.list.vp.View())
	}
	b.WriteString("\n")

	if a.err != nil {
		b.WriteString(ErrorStyle.Width(a.width).Render("Error: "+a.err.Error()+" (press any key to dismiss)") + "\n")
	}
	b.WriteString(a.statusBar())
	return b.String()
}

func (a App) statusBar() string {
	var left []string
	var ctrl *scroll.Controller
	var hints string

	switch a.mode {
	case modeDetail:
		ctrl = a.detail.ctrl
		if a.detail.state == detailReady {
			left = append(left, fmt.Sprintf("%d%%", int(a.detail.vp.ScrollPercent()*100)))
		}
	default:
		ctrl = a.list.ctrl
		switch {
		case a.list.loading || a.list.engine == nil:
			left = append(left, a.spinner.View()+" Loading...")
		default:
			st := a.list.engine.State()
			left = append(left, fmt.Sprintf("%d/%d posts", len(st.Items), st.TotalCount))
		}
	}

	if ctrl != nil && ctrl.State().ScrollToTopVisible {
		left = append(left, TopBadge.Render("↑ top (t)"))
	}
	if a.status != "" {
		left = append(left, a.status)
	}

	l := strings.Join(left, "  ")

	// Help gets whatever room is left so the bar stays one line.
	h := a.help
	h.Width = max(a.width-lipgloss.Width(l)-5, 0)
	if a.mode == modeDetail {
		hints = h.View(detailHelp{keys})
	} else {
		hints = h.View(listHelp{keys})
	}
	padding := max(a.width-lipgloss.Width(l)-lipgloss.Width(hints)-2, 1)
	return StatusBar.Width(a.width).Render(l + strings.Repeat(" ", padding) + hints)
}

// Mode reports whether the detail view is showing (for testing).
func (a App) Mode() string {
	if a.mode == modeDetail {
		return "detail"
	}
	return "list"
}

// Cursor returns the list cursor (for testing).
func (a App) Cursor() int {
	return a.list.cursor
}

// Posts returns the posts currently listed (for testing).
func (a App) Posts() []content.Item {
	return a.list.items
}
