package geometry

import (
	"github.com/jakecoffman/cp"

	"gonav/internal/core"
)

// PhysicsWorld keeps obstacles as chipmunk shapes. Static obstacles live on
// the space's static body; moving obstacles get kinematic bodies that advance
// on Step. It implements core.ObstacleSource.
type PhysicsWorld struct {
	space     *cp.Space
	obstacles []*ShapeObstacle
}

// ShapeObstacle adapts a chipmunk shape to core.Obstacle
type ShapeObstacle struct {
	shape *cp.Shape
	body  *cp.Body
	local core.AABB // bounds relative to the body position
}

// NewPhysicsWorld creates an empty world without gravity
func NewPhysicsWorld() *PhysicsWorld {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	return &PhysicsWorld{space: space}
}

// AddStaticBox adds an immovable rectangular obstacle
func (w *PhysicsWorld) AddStaticBox(box core.AABB) *ShapeObstacle {
	bb := cp.BB{L: box.Min.X, B: box.Min.Y, R: box.Max.X, T: box.Max.Y}
	shape := w.space.AddShape(cp.NewBox2(w.space.StaticBody, bb, 0))
	return w.track(shape, w.space.StaticBody, box)
}

// AddStaticCircle adds an immovable disc obstacle
func (w *PhysicsWorld) AddStaticCircle(center core.Vector2D, radius float64) *ShapeObstacle {
	shape := w.space.AddShape(cp.NewCircle(w.space.StaticBody, radius, toVector(center)))
	return w.track(shape, w.space.StaticBody, NewCircle(center, radius).Bounds())
}

// AddStaticPolygon adds an immovable convex polygon; vertices must be in
// counter-clockwise order
func (w *PhysicsWorld) AddStaticPolygon(vertices []core.Vector2D) (*ShapeObstacle, error) {
	poly, err := NewPolygon(vertices)
	if err != nil {
		return nil, err
	}
	verts := make([]cp.Vector, len(vertices))
	for i, v := range vertices {
		verts[i] = toVector(v)
	}
	shape := w.space.AddShape(cp.NewPolyShapeRaw(w.space.StaticBody, len(verts), verts, 0))
	return w.track(shape, w.space.StaticBody, poly.Bounds()), nil
}

// AddMovingBox adds a rectangular obstacle centered at center that travels
// with a constant velocity
func (w *PhysicsWorld) AddMovingBox(center core.Vector2D, width, height float64, velocity core.Vector2D) *ShapeObstacle {
	body := w.space.AddBody(cp.NewKinematicBody())
	body.SetPosition(toVector(center))
	body.SetVelocityVector(toVector(velocity))

	shape := w.space.AddShape(cp.NewBox(body, width, height, 0))
	local := core.AABB{
		Min: core.Vector2D{X: -width / 2, Y: -height / 2},
		Max: core.Vector2D{X: width / 2, Y: height / 2},
	}
	return w.track(shape, body, local)
}

// AddMovingCircle adds a disc obstacle that travels with a constant velocity
func (w *PhysicsWorld) AddMovingCircle(center core.Vector2D, radius float64, velocity core.Vector2D) *ShapeObstacle {
	body := w.space.AddBody(cp.NewKinematicBody())
	body.SetPosition(toVector(center))
	body.SetVelocityVector(toVector(velocity))

	shape := w.space.AddShape(cp.NewCircle(body, radius, cp.Vector{}))
	return w.track(shape, body, NewCircle(core.Vector2D{}, radius).Bounds())
}

// Remove takes an obstacle out of the world
func (w *PhysicsWorld) Remove(obstacle *ShapeObstacle) bool {
	for i, o := range w.obstacles {
		if o != obstacle {
			continue
		}
		w.space.RemoveShape(o.shape)
		if !o.static() {
			w.space.RemoveBody(o.body)
		}
		w.obstacles = append(w.obstacles[:i], w.obstacles[i+1:]...)
		return true
	}
	return false
}

// Step advances moving obstacles by dt
func (w *PhysicsWorld) Step(dt float64) {
	if dt > 0 {
		w.space.Step(dt)
	}
}

// Len returns the number of obstacles
func (w *PhysicsWorld) Len() int {
	return len(w.obstacles)
}

// Obstacles returns every obstacle in insertion order
func (w *PhysicsWorld) Obstacles() []core.Obstacle {
	out := make([]core.Obstacle, len(w.obstacles))
	for i, o := range w.obstacles {
		out[i] = o
	}
	return out
}

// Near returns obstacles whose current bounds overlap the query box
func (w *PhysicsWorld) Near(bounds core.AABB) []core.Obstacle {
	var results []core.Obstacle
	for _, o := range w.obstacles {
		if bounds.Intersects(o.Bounds()) {
			results = append(results, o)
		}
	}
	return results
}

func (w *PhysicsWorld) track(shape *cp.Shape, body *cp.Body, local core.AABB) *ShapeObstacle {
	obstacle := &ShapeObstacle{shape: shape, body: body, local: local}
	w.obstacles = append(w.obstacles, obstacle)
	return obstacle
}

// Contains reports whether p lies inside or on the shape
func (o *ShapeObstacle) Contains(p core.Vector2D) bool {
	return o.shape.PointQuery(toVector(p)).Distance <= 0
}

// ClosestPoint returns p when inside, otherwise the nearest surface point
func (o *ShapeObstacle) ClosestPoint(p core.Vector2D) core.Vector2D {
	info := o.shape.PointQuery(toVector(p))
	if info.Distance <= 0 {
		return p
	}
	return core.Vector2D{X: info.Point.X, Y: info.Point.Y}
}

// Bounds returns the shape's current bounding box
func (o *ShapeObstacle) Bounds() core.AABB {
	if o.static() {
		return o.local
	}
	pos := o.body.Position()
	return core.AABB{
		Min: core.Vector2D{X: pos.X + o.local.Min.X, Y: pos.Y + o.local.Min.Y},
		Max: core.Vector2D{X: pos.X + o.local.Max.X, Y: pos.Y + o.local.Max.Y},
	}
}

// Position returns the body position of a moving obstacle (zero for static ones)
func (o *ShapeObstacle) Position() core.Vector2D {
	if o.static() {
		return core.Vector2D{}
	}
	pos := o.body.Position()
	return core.Vector2D{X: pos.X, Y: pos.Y}
}

// SetVelocity changes the velocity of a moving obstacle
func (o *ShapeObstacle) SetVelocity(v core.Vector2D) {
	if !o.static() {
		o.body.SetVelocityVector(toVector(v))
	}
}

func (o *ShapeObstacle) static() bool {
	return o.body.GetType() == cp.BODY_STATIC
}

func toVector(v core.Vector2D) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}
