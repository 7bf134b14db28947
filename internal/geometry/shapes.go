package geometry

import (
	"fmt"
	"math"

	"gonav/internal/core"
)

// Rect is an axis-aligned rectangle usable as a walkable region or an obstacle
type Rect struct {
	Box core.AABB
}

// NewRect creates a rectangle from its corners
func NewRect(minX, minY, maxX, maxY float64) Rect {
	return Rect{Box: core.AABB{
		Min: core.Vector2D{X: math.Min(minX, maxX), Y: math.Min(minY, maxY)},
		Max: core.Vector2D{X: math.Max(minX, maxX), Y: math.Max(minY, maxY)},
	}}
}

// RectFromCenterSize creates a rectangle from center point and size
func RectFromCenterSize(center core.Vector2D, width, height float64) Rect {
	return NewRect(center.X-width/2, center.Y-height/2, center.X+width/2, center.Y+height/2)
}

// Contains checks if the rectangle contains a point (edges inclusive)
func (r Rect) Contains(p core.Vector2D) bool {
	return r.Box.Contains(p)
}

// ClosestPoint clamps p onto the rectangle
func (r Rect) ClosestPoint(p core.Vector2D) core.Vector2D {
	return core.Vector2D{
		X: clamp(p.X, r.Box.Min.X, r.Box.Max.X),
		Y: clamp(p.Y, r.Box.Min.Y, r.Box.Max.Y),
	}
}

// Bounds returns the rectangle itself
func (r Rect) Bounds() core.AABB {
	return r.Box
}

// Circle is a disc usable as a walkable region or an obstacle
type Circle struct {
	Center core.Vector2D
	Radius float64
}

// NewCircle creates a circle
func NewCircle(center core.Vector2D, radius float64) Circle {
	return Circle{Center: center, Radius: math.Abs(radius)}
}

// Contains checks if the disc contains a point (boundary inclusive)
func (c Circle) Contains(p core.Vector2D) bool {
	return core.Distance(p, c.Center) <= c.Radius
}

// ClosestPoint projects p onto the disc
func (c Circle) ClosestPoint(p core.Vector2D) core.Vector2D {
	offset := p.Sub(c.Center)
	distance := offset.Length()
	if distance <= c.Radius {
		return p
	}
	return c.Center.Add(offset.Scale(c.Radius / distance))
}

// Bounds returns the box enclosing the disc
func (c Circle) Bounds() core.AABB {
	return core.AABB{
		Min: core.Vector2D{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius},
		Max: core.Vector2D{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius},
	}
}

// Polygon is a simple (non self-intersecting) polygon
type Polygon struct {
	vertices []core.Vector2D
	bounds   core.AABB
}

// NewPolygon creates a polygon from at least three vertices in either winding
func NewPolygon(vertices []core.Vector2D) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 vertices, got %d", len(vertices))
	}

	verts := make([]core.Vector2D, len(vertices))
	copy(verts, vertices)

	bounds := core.AABB{Min: verts[0], Max: verts[0]}
	for _, v := range verts[1:] {
		bounds.Min.X = math.Min(bounds.Min.X, v.X)
		bounds.Min.Y = math.Min(bounds.Min.Y, v.Y)
		bounds.Max.X = math.Max(bounds.Max.X, v.X)
		bounds.Max.Y = math.Max(bounds.Max.Y, v.Y)
	}

	return &Polygon{vertices: verts, bounds: bounds}, nil
}

// Vertices returns a copy of the polygon's vertices
func (p *Polygon) Vertices() []core.Vector2D {
	out := make([]core.Vector2D, len(p.vertices))
	copy(out, p.vertices)
	return out
}

// Contains checks if the polygon contains a point (edges inclusive)
func (p *Polygon) Contains(point core.Vector2D) bool {
	if !p.bounds.Contains(point) {
		return false
	}

	inside := false
	n := len(p.vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.vertices[i], p.vertices[j]
		if core.Distance(ClosestPointOnSegment(point, a, b), point) <= epsilon {
			return true
		}
		if (a.Y > point.Y) != (b.Y > point.Y) {
			x := (b.X-a.X)*(point.Y-a.Y)/(b.Y-a.Y) + a.X
			if point.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// ClosestPoint returns p when inside, otherwise the nearest point on an edge
func (p *Polygon) ClosestPoint(point core.Vector2D) core.Vector2D {
	if p.Contains(point) {
		return point
	}

	best := p.vertices[0]
	bestDistance := math.Inf(1)
	n := len(p.vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		candidate := ClosestPointOnSegment(point, p.vertices[j], p.vertices[i])
		if d := core.Distance(candidate, point); d < bestDistance {
			bestDistance = d
			best = candidate
		}
	}
	return best
}

// Bounds returns the polygon's bounding box
func (p *Polygon) Bounds() core.AABB {
	return p.bounds
}

const epsilon = 1e-9

// ClosestPointOnSegment projects point onto the segment a-b
func ClosestPointOnSegment(point, a, b core.Vector2D) core.Vector2D {
	line := b.Sub(a)
	lengthSq := line.X*line.X + line.Y*line.Y
	if lengthSq == 0 {
		return a
	}

	t := ((point.X-a.X)*line.X + (point.Y-a.Y)*line.Y) / lengthSq
	return core.Lerp(a, b, clamp(t, 0, 1))
}

// DistanceToBoundary returns 0 when p is inside the obstacle, otherwise the
// distance from p to its closest point
func DistanceToBoundary(o core.Obstacle, p core.Vector2D) float64 {
	if o.Contains(p) {
		return 0
	}
	return core.Distance(p, o.ClosestPoint(p))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
