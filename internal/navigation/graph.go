package navigation

import (
	"fmt"
	"math"

	"gonav/internal/core"
)

// Graph maps lattice coordinates to navigation nodes. The spacing is fixed
// for the lifetime of the graph and every stored node's position discretizes
// back to its key.
type Graph struct {
	spacing float64
	bounds  core.AABB
	nodes   map[core.LatticeCoord]*Node
	order   []*Node
}

// NewGraph creates an empty graph with the given spacing
func NewGraph(spacing float64, bounds core.AABB) (*Graph, error) {
	if !(spacing > 0) || math.IsInf(spacing, 0) {
		return nil, core.NewConfigError("grid_spacing", "must be positive, got %v", spacing)
	}
	return &Graph{
		spacing: spacing,
		bounds:  bounds,
		nodes:   make(map[core.LatticeCoord]*Node),
	}, nil
}

// Spacing returns the lattice step
func (g *Graph) Spacing() float64 { return g.spacing }

// Bounds returns the area the graph was built over
func (g *Graph) Bounds() core.AABB { return g.bounds }

// Len returns the number of nodes
func (g *Graph) Len() int { return len(g.order) }

// Nodes returns every node in ID order. The slice must not be modified.
func (g *Graph) Nodes() []*Node { return g.order }

// Key discretizes a world position to its lattice coordinate
func (g *Graph) Key(position core.Vector2D) core.LatticeCoord {
	return core.LatticeCoord{
		X: int(math.Round(position.X / g.spacing)),
		Y: int(math.Round(position.Y / g.spacing)),
	}
}

// Node returns the node stored under key
func (g *Graph) Node(key core.LatticeCoord) (*Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// NodeAt returns the node whose key matches the discretized position
func (g *Graph) NodeAt(position core.Vector2D) (*Node, bool) {
	return g.Node(g.Key(position))
}

// Insert adds a node at position. It fails if the key is already taken.
func (g *Graph) Insert(position core.Vector2D) (*Node, error) {
	key := g.Key(position)
	if _, exists := g.nodes[key]; exists {
		return nil, fmt.Errorf("lattice coordinate %v already occupied", key)
	}
	n := newNode(position, key, len(g.order))
	g.nodes[key] = n
	g.order = append(g.order, n)
	return n, nil
}

// Remove deletes the node under key along with all of its connections.
// Remaining nodes are renumbered so IDs stay dense.
func (g *Graph) Remove(key core.LatticeCoord) bool {
	n, ok := g.nodes[key]
	if !ok {
		return false
	}
	for len(n.connections) > 0 {
		n.RemoveConnection(n.connections[0])
	}
	delete(g.nodes, key)
	g.order = append(g.order[:n.id], g.order[n.id+1:]...)
	g.reindex()
	return true
}

// RemoveIsolated deletes every node without connections and returns how
// many were removed
func (g *Graph) RemoveIsolated() int {
	kept := g.order[:0]
	removed := 0
	for _, n := range g.order {
		if n.Degree() == 0 {
			delete(g.nodes, n.key)
			removed++
			continue
		}
		kept = append(kept, n)
	}
	for i := len(kept); i < len(g.order); i++ {
		g.order[i] = nil
	}
	g.order = kept
	g.reindex()
	return removed
}

// Nearest scans the (2*radius+1)^2 lattice cells around point and returns
// the closest node accepted by accept (nil accepts all). Ties keep the first
// node found scanning x-major from the lowest coordinate.
func (g *Graph) Nearest(point core.Vector2D, radius int, accept func(*Node) bool) (*Node, bool) {
	center := g.Key(point)
	var nearest *Node
	minDistance := math.Inf(1)

	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			n, ok := g.nodes[core.LatticeCoord{X: center.X + dx, Y: center.Y + dy}]
			if !ok {
				continue
			}
			d := core.Distance(point, n.position)
			if d >= minDistance {
				continue
			}
			if accept != nil && !accept(n) {
				continue
			}
			minDistance = d
			nearest = n
		}
	}

	return nearest, nearest != nil
}

// ResetSearch clears the search state of every node
func (g *Graph) ResetSearch() {
	for _, n := range g.order {
		n.Reset()
	}
}

// EdgeCount returns the number of undirected connections
func (g *Graph) EdgeCount() int {
	total := 0
	for _, n := range g.order {
		total += n.Degree()
	}
	return total / 2
}

func (g *Graph) reindex() {
	for i, n := range g.order {
		n.id = i
	}
}
