// Package scroll derives the scroll-reactive chrome of a view from the
// offsets its host reports: whether the header is showing, whether the
// scroll-to-top affordance is showing, and how long the body takes to read.
//
// The controller never reads a viewport itself. Hosts push offsets through
// OnScroll (directly or via Bind) and perform ScrollTo requests; that keeps
// the state machine testable without a terminal.
package scroll

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
)

// WordsPerMinute is the fixed reading speed behind every estimate.
const WordsPerMinute = 200

// Config holds the thresholds for one kind of view.
type Config struct {
	// ScrollTopThreshold: the scroll-to-top affordance shows strictly above it.
	ScrollTopThreshold int
	// HeaderDeadZone: at or below this offset the header is always visible.
	HeaderDeadZone int
}

// DetailConfig is the single-post view configuration.
func DetailConfig() Config {
	return Config{ScrollTopThreshold: 500, HeaderDeadZone: 100}
}

// ListConfig is the post-list view configuration.
func ListConfig() Config {
	return Config{ScrollTopThreshold: 300, HeaderDeadZone: 100}
}

// Scroller performs scroll requests on behalf of the controller.
type Scroller interface {
	ScrollTo(offset int)
}

// State is a copy of the controller's derived UI flags.
type State struct {
	LastScrollOffset     int
	HeaderVisible        bool
	ScrollToTopVisible   bool
	EstimatedReadMinutes int
}

// Controller tracks one mounted view. Create a fresh one per mount.
type Controller struct {
	cfg      Config
	scroller Scroller

	mu          sync.Mutex
	state       State
	content     string
	haveContent bool
}

// New creates a controller in its initial state: header visible,
// scroll-to-top hidden, offset 0, a one-minute read. scroller may be nil, in
// which case ScrollToTop does nothing.
func New(cfg Config, scroller Scroller) *Controller {
	return &Controller{
		cfg:      cfg,
		scroller: scroller,
		state: State{
			HeaderVisible:        true,
			EstimatedReadMinutes: 1,
		},
	}
}

// OnScroll folds one offset into the state. Constant time; safe to call on
// every scroll tick. Negative offsets (overscroll) count as 0.
func (c *Controller) OnScroll(offset int) {
	if offset < 0 {
		offset = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.ScrollToTopVisible = offset > c.cfg.ScrollTopThreshold

	scrollingDown := offset > c.state.LastScrollOffset
	c.state.HeaderVisible = !(scrollingDown && offset > c.cfg.HeaderDeadZone)

	c.state.LastScrollOffset = offset
}

// SetContent recomputes the reading estimate when content differs from the
// last body seen.
func (c *Controller) SetContent(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.haveContent && content == c.content {
		return
	}
	c.content = content
	c.haveContent = true
	c.state.EstimatedReadMinutes = ComputeReadingTime(content)
}

// ScrollToTop asks the host to scroll to offset 0. The state is not
// touched here; the host reports the resulting offsets through OnScroll.
func (c *Controller) ScrollToTop() {
	if c.scroller != nil {
		c.scroller.ScrollTo(0)
	}
}

// State returns a copy of the current flags.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Config returns the thresholds the controller was built with.
func (c *Controller) Config() Config {
	return c.cfg
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// ComputeReadingTime estimates whole minutes to read an HTML body at
// WordsPerMinute: tags are stripped, whitespace-separated words are
// counted, and the result is rounded up with a floor of one minute.
//
// Entities and code blocks count as words like anything else.
func ComputeReadingTime(content string) int {
	words := len(strings.Fields(tagPattern.ReplaceAllString(content, "")))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ReadingTimeLabel formats an estimate for display, e.g. "3 min read".
func ReadingTimeLabel(minutes int) string {
	return fmt.Sprintf("%d min read", max(minutes, 1))
}
