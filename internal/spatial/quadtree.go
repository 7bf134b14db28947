package spatial

import (
	"fmt"
	"math"
	"sort"

	"gonav/internal/core"
)

const (
	// MaxItemsPerNode defines when to split a quadtree node
	MaxItemsPerNode = 10
	// MaxDepth defines maximum depth of the quadtree
	MaxDepth = 8
)

// Item is an obstacle indexed by the quadtree. Bounds is captured at insert
// time; call Update after the obstacle moves.
type Item struct {
	ID       uint64
	Bounds   core.AABB
	Obstacle core.Obstacle
}

// QuadTree implements a spatial index using quadtree data structure.
// Items whose bounds leave the tree's area are kept at the root so they
// are still found by queries.
type QuadTree struct {
	bounds core.AABB
	items  map[uint64]*Item
	root   *quadNode
}

// quadNode represents a node in the quadtree
type quadNode struct {
	bounds   core.AABB
	items    map[uint64]*Item
	children [4]*quadNode // NW, NE, SW, SE
	depth    int
}

// NewQuadTree creates a new quadtree with the given bounds
func NewQuadTree(bounds core.AABB) *QuadTree {
	return &QuadTree{
		bounds: bounds,
		items:  make(map[uint64]*Item),
		root:   newQuadNode(bounds, 0),
	}
}

func newQuadNode(bounds core.AABB, depth int) *quadNode {
	return &quadNode{
		bounds: bounds,
		items:  make(map[uint64]*Item),
		depth:  depth,
	}
}

// Insert adds an item to the quadtree
func (qt *QuadTree) Insert(item *Item) error {
	if item == nil || item.Obstacle == nil {
		return fmt.Errorf("item cannot be nil")
	}
	if _, exists := qt.items[item.ID]; exists {
		return fmt.Errorf("item with id %d already indexed", item.ID)
	}

	qt.items[item.ID] = item
	qt.root.insert(item)
	return nil
}

// Remove removes an item from the quadtree
func (qt *QuadTree) Remove(id uint64) error {
	item, exists := qt.items[id]
	if !exists {
		return fmt.Errorf("item with id %d not found", id)
	}

	delete(qt.items, id)
	qt.root.remove(item)
	return nil
}

// Update re-indexes an item after its bounds changed
func (qt *QuadTree) Update(id uint64, bounds core.AABB) error {
	item, exists := qt.items[id]
	if !exists {
		return fmt.Errorf("item with id %d not found", id)
	}

	qt.root.remove(item)
	item.Bounds = bounds
	qt.root.insert(item)
	return nil
}

// Get returns the item with the given id
func (qt *QuadTree) Get(id uint64) (*Item, bool) {
	item, ok := qt.items[id]
	return item, ok
}

// Len returns the number of indexed items
func (qt *QuadTree) Len() int {
	return len(qt.items)
}

// Query returns all items whose bounds overlap the given bounds, ordered by ID
func (qt *QuadTree) Query(bounds core.AABB) []*Item {
	var results []*Item
	qt.root.query(bounds, &results)
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

// QueryRadius returns all items within the given radius from center
func (qt *QuadTree) QueryRadius(center core.Vector2D, radius float64) []*Item {
	bounds := core.AABB{
		Min: core.Vector2D{X: center.X - radius, Y: center.Y - radius},
		Max: core.Vector2D{X: center.X + radius, Y: center.Y + radius},
	}

	var results []*Item
	for _, item := range qt.Query(bounds) {
		if distanceToAABB(center, item.Bounds) <= radius {
			results = append(results, item)
		}
	}
	return results
}

// Clear removes all items from the quadtree
func (qt *QuadTree) Clear() {
	qt.items = make(map[uint64]*Item)
	qt.root = newQuadNode(qt.bounds, 0)
}

// insert adds an item to this node or its children
func (qn *quadNode) insert(item *Item) {
	if qn.children[0] != nil {
		if childIndex := qn.getChildIndex(item.Bounds); childIndex != -1 {
			qn.children[childIndex].insert(item)
			return
		}
	}

	qn.items[item.ID] = item

	if len(qn.items) > MaxItemsPerNode && qn.depth < MaxDepth {
		qn.split()
	}
}

// remove removes an item from this node or its children
func (qn *quadNode) remove(item *Item) {
	delete(qn.items, item.ID)

	if qn.children[0] != nil {
		for _, child := range qn.children {
			child.remove(item)
		}
	}
}

// query finds all items within the given bounds
func (qn *quadNode) query(bounds core.AABB, results *[]*Item) {
	for _, item := range qn.items {
		if bounds.Intersects(item.Bounds) {
			*results = append(*results, item)
		}
	}

	if qn.children[0] != nil {
		for _, child := range qn.children {
			if bounds.Intersects(child.bounds) {
				child.query(bounds, results)
			}
		}
	}
}

// split divides this node into four children
func (qn *quadNode) split() {
	midX := (qn.bounds.Min.X + qn.bounds.Max.X) / 2
	midY := (qn.bounds.Min.Y + qn.bounds.Max.Y) / 2

	childBounds := [4]core.AABB{
		{Min: core.Vector2D{X: qn.bounds.Min.X, Y: midY}, Max: core.Vector2D{X: midX, Y: qn.bounds.Max.Y}}, // NW
		{Min: core.Vector2D{X: midX, Y: midY}, Max: qn.bounds.Max},                                         // NE
		{Min: qn.bounds.Min, Max: core.Vector2D{X: midX, Y: midY}},                                         // SW
		{Min: core.Vector2D{X: midX, Y: qn.bounds.Min.Y}, Max: core.Vector2D{X: qn.bounds.Max.X, Y: midY}}, // SE
	}

	for i := range qn.children {
		qn.children[i] = newQuadNode(childBounds[i], qn.depth+1)
	}

	for id, item := range qn.items {
		if childIndex := qn.getChildIndex(item.Bounds); childIndex != -1 {
			qn.children[childIndex].insert(item)
			delete(qn.items, id)
		}
	}
}

// getChildIndex returns which child quadrant fully holds the bounds
func (qn *quadNode) getChildIndex(bounds core.AABB) int {
	if qn.children[0] == nil {
		return -1
	}

	for i, child := range qn.children {
		if encloses(child.bounds, bounds) {
			return i
		}
	}

	return -1
}

// Helper functions

func encloses(container, bounds core.AABB) bool {
	return bounds.Min.X >= container.Min.X && bounds.Max.X <= container.Max.X &&
		bounds.Min.Y >= container.Min.Y && bounds.Max.Y <= container.Max.Y
}

func distanceToAABB(point core.Vector2D, bounds core.AABB) float64 {
	dx := math.Max(0, math.Max(bounds.Min.X-point.X, point.X-bounds.Max.X))
	dy := math.Max(0, math.Max(bounds.Min.Y-point.Y, point.Y-bounds.Max.Y))
	return math.Sqrt(dx*dx + dy*dy)
}
