package core

import "math"

// Vector2D represents a 2D coordinate/vector
type Vector2D struct {
	X, Y float64
}

// Add returns v + o
func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * s
func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Length returns the magnitude of v
func (v Vector2D) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns v scaled to unit length, or the zero vector
func (v Vector2D) Normalize() Vector2D {
	length := v.Length()
	if length == 0 {
		return Vector2D{}
	}
	return Vector2D{X: v.X / length, Y: v.Y / length}
}

// Perpendicular returns v rotated 90 degrees counter-clockwise
func (v Vector2D) Perpendicular() Vector2D {
	return Vector2D{X: -v.Y, Y: v.X}
}

// Distance returns the Euclidean distance between two points
func Distance(a, b Vector2D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Lerp linearly interpolates between a and b
func Lerp(a, b Vector2D, t float64) Vector2D {
	return Vector2D{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// AABB (Axis-Aligned Bounding Box) represents a rectangular boundary
type AABB struct {
	Min, Max Vector2D
}

// Width returns the extent of the box along X
func (b AABB) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the extent of the box along Y
func (b AABB) Height() float64 { return b.Max.Y - b.Min.Y }

// Contains checks if the box contains a point (edges inclusive)
func (b AABB) Contains(p Vector2D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Intersects checks if two boxes overlap (touching edges count)
func (b AABB) Intersects(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// Expand grows the box by amount on every side
func (b AABB) Expand(amount float64) AABB {
	return AABB{
		Min: Vector2D{X: b.Min.X - amount, Y: b.Min.Y - amount},
		Max: Vector2D{X: b.Max.X + amount, Y: b.Max.Y + amount},
	}
}

// Degenerate reports whether the box has no usable area
func (b AABB) Degenerate() bool {
	for _, f := range []float64{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y
}

// SegmentBounds returns the box spanned by a segment
func SegmentBounds(a, b Vector2D) AABB {
	return AABB{
		Min: Vector2D{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Vector2D{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// LatticeCoord is the integer key of a navigation node
type LatticeCoord struct {
	X, Y int
}

// Region is a planar area agents may walk on
type Region interface {
	Contains(p Vector2D) bool
	Bounds() AABB
}

// Obstacle is a planar shape agents must keep clear of
type Obstacle interface {
	Contains(p Vector2D) bool
	// ClosestPoint returns the nearest point of the shape to p (p itself when inside)
	ClosestPoint(p Vector2D) Vector2D
	Bounds() AABB
}

// ObstacleSource yields the obstacles whose bounds overlap a query box.
// Implementations are owned by the caller and read at query time only.
type ObstacleSource interface {
	Near(bounds AABB) []Obstacle
}

// Obstacles is a plain obstacle list
type Obstacles []Obstacle

// Near implements ObstacleSource with a linear bounds filter
func (o Obstacles) Near(bounds AABB) []Obstacle {
	var results []Obstacle
	for _, obstacle := range o {
		if obstacle != nil && bounds.Intersects(obstacle.Bounds()) {
			results = append(results, obstacle)
		}
	}
	return results
}

// HeuristicFunc defines heuristic function for pathfinding
type HeuristicFunc func(a, b Vector2D) float64
