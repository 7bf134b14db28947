package gonav

import (
	"math/rand"

	"gonav/internal/core"
	"gonav/internal/geometry"
	"gonav/internal/pathfinding"
)

// Vector2D and AABB are re-exported so callers need no internal imports
type (
	Vector2D = core.Vector2D
	AABB     = core.AABB
	Region   = core.Region
	Obstacle = core.Obstacle
)

// NewVector2D creates a new 2D vector
func NewVector2D(x, y float64) core.Vector2D {
	return core.Vector2D{X: x, Y: y}
}

// Distance calculates the Euclidean distance between two points
func Distance(a, b core.Vector2D) float64 {
	return pathfinding.EuclideanDistance(a, b)
}

// NewAABB creates a new axis-aligned bounding box
func NewAABB(minX, minY, maxX, maxY float64) core.AABB {
	return core.AABB{
		Min: core.Vector2D{X: minX, Y: minY},
		Max: core.Vector2D{X: maxX, Y: maxY},
	}
}

// AABBCenter returns the center point of an AABB
func AABBCenter(bounds core.AABB) core.Vector2D {
	return core.Vector2D{
		X: (bounds.Min.X + bounds.Max.X) / 2,
		Y: (bounds.Min.Y + bounds.Max.Y) / 2,
	}
}

// Shape constructors

// NewRect creates a rectangle usable as region or obstacle
func NewRect(minX, minY, maxX, maxY float64) geometry.Rect {
	return geometry.NewRect(minX, minY, maxX, maxY)
}

// RectFromCenterSize creates a rectangle from its center and size
func RectFromCenterSize(center core.Vector2D, width, height float64) geometry.Rect {
	return geometry.RectFromCenterSize(center, width, height)
}

// NewCircle creates a disc usable as region or obstacle
func NewCircle(center core.Vector2D, radius float64) geometry.Circle {
	return geometry.NewCircle(center, radius)
}

// NewPolygon creates a simple polygon usable as region or obstacle
func NewPolygon(vertices ...core.Vector2D) (*geometry.Polygon, error) {
	return geometry.NewPolygon(vertices)
}

// Path utility functions

// PathLength returns the total length of a path
func PathLength(path []core.Vector2D) float64 {
	return pathfinding.PathLength(path)
}

// PointAlongPath returns the point at the given distance along path,
// clamped to its ends
func PointAlongPath(path []core.Vector2D, distance float64) core.Vector2D {
	if len(path) == 0 {
		return core.Vector2D{}
	}
	if distance <= 0 {
		return path[0]
	}

	for i := 1; i < len(path); i++ {
		leg := core.Distance(path[i-1], path[i])
		if distance <= leg {
			if leg == 0 {
				return path[i]
			}
			return core.Lerp(path[i-1], path[i], distance/leg)
		}
		distance -= leg
	}
	return path[len(path)-1]
}

// Random utility functions

// RandomPosition generates a random position within the given bounds
func RandomPosition(rng *rand.Rand, bounds core.AABB) core.Vector2D {
	return core.Vector2D{
		X: bounds.Min.X + rng.Float64()*(bounds.Max.X-bounds.Min.X),
		Y: bounds.Min.Y + rng.Float64()*(bounds.Max.Y-bounds.Min.Y),
	}
}

// RandomWalkablePosition draws random points inside bounds until one is
// walkable, giving up after attempts tries
func (e *Engine) RandomWalkablePosition(rng *rand.Rand, bounds core.AABB, attempts int) (core.Vector2D, bool) {
	for i := 0; i < attempts; i++ {
		p := RandomPosition(rng, bounds)
		if e.IsWalkable(p) {
			return p, true
		}
	}
	return core.Vector2D{}, false
}
