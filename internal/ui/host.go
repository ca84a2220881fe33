package ui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
)

const frameRate = 60

// scrollHost is the scroll.Host for one viewport. It publishes the
// viewport's offset to subscribers and animates ScrollTo requests with a
// spring. Only touched from Update, so it needs no locking.
type scrollHost struct {
	subs   map[int]func(int)
	nextID int
	offset int

	spring    harmonica.Spring
	pos, vel  float64
	target    float64
	animating bool
}

func newScrollHost() *scrollHost {
	return &scrollHost{
		subs:   make(map[int]func(int)),
		spring: harmonica.NewSpring(harmonica.FPS(frameRate), 6.0, 0.8),
	}
}

// Subscribe implements scroll.Host.
func (h *scrollHost) Subscribe(fn func(offset int)) func() {
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	return func() { delete(h.subs, id) }
}

// ScrollTo implements scroll.Host. The move happens over the next frames.
func (h *scrollHost) ScrollTo(offset int) {
	h.pos = float64(h.offset)
	h.vel = 0
	h.target = float64(offset)
	h.animating = h.offset != offset
}

// publish reports the viewport offset after a change.
func (h *scrollHost) publish(offset int) {
	if offset == h.offset {
		return
	}
	h.offset = offset
	for _, fn := range h.subs {
		fn(offset)
	}
}

// stop abandons an animation, e.g. when the user scrolls by hand.
func (h *scrollHost) stop() {
	h.animating = false
}

// step advances the spring one frame and returns the offset to show.
func (h *scrollHost) step() (offset int, done bool) {
	h.pos, h.vel = h.spring.Update(h.pos, h.vel, h.target)
	if math.Abs(h.pos-h.target) < 0.5 && math.Abs(h.vel) < 0.5 {
		h.pos, h.vel = h.target, 0
		h.animating = false
		return int(h.target), true
	}
	return int(math.Round(h.pos)), false
}

func (h *scrollHost) subscribers() int {
	return len(h.subs)
}

func nextFrame() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(time.Time) tea.Msg {
		return scrollFrame{}
	})
}
