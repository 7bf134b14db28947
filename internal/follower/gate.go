package follower

import "sync"

// Permission is consulted by the follower on every tick
type Permission interface {
	MovementAllowed() bool
}

// Blocker is anything that can veto movement while it is active, such as
// an open UI panel
type Blocker interface {
	IsBlocking() bool
}

// BlockerFunc adapts a function to Blocker
type BlockerFunc func() bool

func (f BlockerFunc) IsBlocking() bool { return f() }

// Allow always permits movement
var Allow Permission = allowAll{}

type allowAll struct{}

func (allowAll) MovementAllowed() bool { return true }

// Gate is a movement permission owned by whatever orchestrates agents.
// Movement is allowed while no Block call is outstanding and no registered
// blocker is active.
type Gate struct {
	mu       sync.Mutex
	blocks   int
	blockers []blockerEntry
	nextID   int
}

type blockerEntry struct {
	id      int
	blocker Blocker
}

// NewGate creates an open gate
func NewGate() *Gate {
	return &Gate{}
}

// Block closes the gate until a matching Unblock
func (g *Gate) Block() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blocks++
}

// Unblock releases one Block; extra calls are ignored
func (g *Gate) Unblock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.blocks > 0 {
		g.blocks--
	}
}

// AddBlocker registers a blocker polled on every permission check and
// returns a function that unregisters it
func (g *Gate) AddBlocker(b Blocker) (remove func()) {
	if b == nil {
		return func() {}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := g.nextID
	g.blockers = append(g.blockers, blockerEntry{id: id, blocker: b})

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, entry := range g.blockers {
			if entry.id == id {
				g.blockers = append(g.blockers[:i], g.blockers[i+1:]...)
				return
			}
		}
	}
}

// Blocked reports whether any explicit Block is outstanding
func (g *Gate) Blocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blocks > 0
}

// MovementAllowed implements Permission
func (g *Gate) MovementAllowed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.blocks > 0 {
		return false
	}
	for _, entry := range g.blockers {
		if entry.blocker.IsBlocking() {
			return false
		}
	}
	return true
}
