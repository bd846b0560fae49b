package notify

import "sync"

// Guard is the per streak error notification flag.
type Guard struct {
	mu    sync.Mutex
	shown bool
}

func NewGuard() *Guard {
	return &Guard{}
}

// MarkShown sets the flag and reports whether this call was the one that set it.
func (g *Guard) MarkShown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.shown {
		return false
	}
	g.shown = true
	return true
}

// Reset clears the flag and reports whether it had been set.
func (g *Guard) Reset() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	was := g.shown
	g.shown = false
	return was
}

func (g *Guard) IsShown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shown
}
