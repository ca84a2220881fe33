package scroll

import "sync"

// Host is the environment a controller is mounted in: it publishes scroll
// offsets and performs scroll requests.
type Host interface {
	Scroller
	// Subscribe registers fn for every offset change and returns a function
	// that removes it.
	Subscribe(fn func(offset int)) (cancel func())
}

// Bind feeds host offsets into c for as long as the view is mounted.
// The returned release unsubscribes; it is safe to call more than once and
// should be deferred by whoever owns the view's lifetime.
func Bind(host Host, c *Controller) (release func()) {
	cancel := host.Subscribe(c.OnScroll)
	var once sync.Once
	return func() {
		once.Do(cancel)
	}
}
