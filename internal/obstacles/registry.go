package obstacles

import (
	"fmt"
	"math"
	"sync"

	"gonav/internal/core"
	"gonav/internal/spatial"
)

// Registry holds the mutable obstacle set consulted by walkability queries.
// It is safe for concurrent use; readers always see the set as of the call.
type Registry struct {
	mu      sync.RWMutex
	index   *spatial.QuadTree
	bounds  core.AABB
	nextID  uint64
	version uint64
}

// NewRegistry creates a registry whose index covers bounds. Obstacles
// outside bounds are still accepted.
func NewRegistry(bounds core.AABB) *Registry {
	return &Registry{
		index:  spatial.NewQuadTree(bounds),
		bounds: bounds,
	}
}

// Add registers an obstacle and returns its ID
func (r *Registry) Add(obstacle core.Obstacle) (uint64, error) {
	if obstacle == nil {
		return 0, fmt.Errorf("obstacle cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	item := &spatial.Item{ID: id, Bounds: obstacle.Bounds(), Obstacle: obstacle}
	if err := r.index.Insert(item); err != nil {
		return 0, fmt.Errorf("failed to add obstacle to spatial index: %w", err)
	}

	r.version++
	return id, nil
}

// Update replaces the shape registered under id
func (r *Registry) Update(id uint64, obstacle core.Obstacle) error {
	if obstacle == nil {
		return fmt.Errorf("obstacle cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.index.Get(id)
	if !exists {
		return fmt.Errorf("obstacle %d: %w", id, core.ErrUnknownObstacle)
	}

	item.Obstacle = obstacle
	if err := r.index.Update(id, obstacle.Bounds()); err != nil {
		return fmt.Errorf("failed to update obstacle in spatial index: %w", err)
	}

	r.version++
	return nil
}

// Remove unregisters an obstacle
func (r *Registry) Remove(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index.Get(id); !exists {
		return fmt.Errorf("obstacle %d: %w", id, core.ErrUnknownObstacle)
	}
	if err := r.index.Remove(id); err != nil {
		return fmt.Errorf("failed to remove obstacle from spatial index: %w", err)
	}

	r.version++
	return nil
}

// Refresh re-reads the bounds of every obstacle. Call it after moving
// obstacles advance so the index matches their current position.
func (r *Registry) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	for _, item := range r.index.Query(everywhere) {
		if bounds := item.Obstacle.Bounds(); bounds != item.Bounds {
			// Update only fails for unknown IDs
			_ = r.index.Update(item.ID, bounds)
			changed = true
		}
	}
	if changed {
		r.version++
	}
}

// Get returns the obstacle registered under id
func (r *Registry) Get(id uint64) (core.Obstacle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.index.Get(id)
	if !exists {
		return nil, fmt.Errorf("obstacle %d: %w", id, core.ErrUnknownObstacle)
	}
	return item.Obstacle, nil
}

// Near implements core.ObstacleSource
func (r *Registry) Near(bounds core.AABB) []core.Obstacle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.index.Query(bounds)
	obstacles := make([]core.Obstacle, len(items))
	for i, item := range items {
		obstacles[i] = item.Obstacle
	}
	return obstacles
}

// IDs returns every registered ID in ascending order
func (r *Registry) IDs() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.index.Query(everywhere)
	ids := make([]uint64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// Count returns the number of registered obstacles
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.index.Len()
}

// Version increments on every mutation; callers compare it to detect changes
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// Clear removes all obstacles
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index.Clear()
	r.version++
}

// Bounds returns the indexed area
func (r *Registry) Bounds() core.AABB {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.bounds
}

var everywhere = core.AABB{
	Min: core.Vector2D{X: math.Inf(-1), Y: math.Inf(-1)},
	Max: core.Vector2D{X: math.Inf(1), Y: math.Inf(1)},
}
