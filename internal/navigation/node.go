package navigation

import (
	"math"

	"gonav/internal/core"
)

// Node is a walkable lattice point of a navigation graph. Its position and
// key are fixed at creation; G, H, Parent and QueueIndex are scratch state
// owned by whichever search is currently running on the graph.
type Node struct {
	position    core.Vector2D
	key         core.LatticeCoord
	id          int
	connections []*Node

	G          float64 // Cost from start
	H          float64 // Heuristic cost to goal
	Parent     *Node
	QueueIndex int // Position in the open set heap, -1 when absent
	Closed     bool
}

func newNode(position core.Vector2D, key core.LatticeCoord, id int) *Node {
	n := &Node{position: position, key: key, id: id}
	n.Reset()
	return n
}

// Position returns the node's world position
func (n *Node) Position() core.Vector2D { return n.position }

// Key returns the lattice coordinate the node is stored under
func (n *Node) Key() core.LatticeCoord { return n.key }

// ID returns the node's index in graph order
func (n *Node) ID() int { return n.id }

// Connections returns the adjacent nodes. The slice must not be modified.
func (n *Node) Connections() []*Node { return n.connections }

// Degree returns the number of connections
func (n *Node) Degree() int { return len(n.connections) }

// F returns G + H
func (n *Node) F() float64 { return n.G + n.H }

// IsConnected reports whether other is adjacent to n
func (n *Node) IsConnected(other *Node) bool {
	for _, c := range n.connections {
		if c == other {
			return true
		}
	}
	return false
}

// AddConnection links n and other in both directions. Self links and
// duplicates are rejected and reported as false.
func (n *Node) AddConnection(other *Node) bool {
	if other == nil || other == n || n.IsConnected(other) {
		return false
	}
	n.connections = append(n.connections, other)
	other.connections = append(other.connections, n)
	return true
}

// RemoveConnection unlinks n and other in both directions
func (n *Node) RemoveConnection(other *Node) bool {
	if other == nil || !n.IsConnected(other) {
		return false
	}
	n.connections = without(n.connections, other)
	other.connections = without(other.connections, n)
	return true
}

// Reset clears search state
func (n *Node) Reset() {
	n.G = math.Inf(1)
	n.H = 0
	n.Parent = nil
	n.QueueIndex = -1
	n.Closed = false
}

func without(nodes []*Node, target *Node) []*Node {
	for i, c := range nodes {
		if c == target {
			return append(nodes[:i:i], nodes[i+1:]...)
		}
	}
	return nodes
}
