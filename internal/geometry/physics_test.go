package geometry

import (
	"testing"

	"gonav/internal/core"
)

func TestPhysicsWorldStaticBox(t *testing.T) {
	world := NewPhysicsWorld()
	box := world.AddStaticBox(core.AABB{
		Min: core.Vector2D{X: 4, Y: -1},
		Max: core.Vector2D{X: 6, Y: 1},
	})

	if !box.Contains(core.Vector2D{X: 5, Y: 0}) {
		t.Fatalf("Box center should be inside")
	}
	if box.Contains(core.Vector2D{X: 8, Y: 0}) {
		t.Fatalf("Point right of box should be outside")
	}

	closest := box.ClosestPoint(core.Vector2D{X: 8, Y: 0})
	if distance(closest, core.Vector2D{X: 6, Y: 0}) > 1e-6 {
		t.Fatalf("Expected closest point (6,0), got %v", closest)
	}

	if d := DistanceToBoundary(box, core.Vector2D{X: 5, Y: 4}); d < 2.999 || d > 3.001 {
		t.Fatalf("Expected distance 3 above the box, got %.4f", d)
	}
}

func TestPhysicsWorldStaticCircleNear(t *testing.T) {
	world := NewPhysicsWorld()
	world.AddStaticCircle(core.Vector2D{X: 0, Y: 0}, 1)
	world.AddStaticCircle(core.Vector2D{X: 20, Y: 0}, 1)

	near := world.Near(core.AABB{
		Min: core.Vector2D{X: -2, Y: -2},
		Max: core.Vector2D{X: 2, Y: 2},
	})
	if len(near) != 1 {
		t.Fatalf("Expected 1 obstacle near origin, got %d", len(near))
	}
	if !near[0].Contains(core.Vector2D{X: 0.5, Y: 0.5}) {
		t.Fatalf("Circle should contain (0.5,0.5)")
	}
}

func TestPhysicsWorldMovingBoxAdvances(t *testing.T) {
	world := NewPhysicsWorld()
	mover := world.AddMovingBox(core.Vector2D{X: 0, Y: 0}, 2, 2, core.Vector2D{X: 1, Y: 0})

	if !mover.Contains(core.Vector2D{X: 0, Y: 0}) {
		t.Fatalf("Moving box should start at the origin")
	}

	for i := 0; i < 10; i++ {
		world.Step(0.5)
	}

	pos := mover.Position()
	if distance(pos, core.Vector2D{X: 5, Y: 0}) > 1e-6 {
		t.Fatalf("Expected moving box at (5,0), got %v", pos)
	}
	if mover.Contains(core.Vector2D{X: 0, Y: 0}) {
		t.Fatalf("Moving box should have left the origin")
	}
	if !mover.Contains(core.Vector2D{X: 5, Y: 0.5}) {
		t.Fatalf("Moving box should contain (5,0.5) after stepping")
	}

	bounds := mover.Bounds()
	if bounds.Min.X < 3.999 || bounds.Max.X > 6.001 {
		t.Fatalf("Bounds did not follow the body: %+v", bounds)
	}
}

func TestPhysicsWorldRemove(t *testing.T) {
	world := NewPhysicsWorld()
	a := world.AddStaticBox(core.AABB{Max: core.Vector2D{X: 1, Y: 1}})
	b := world.AddMovingCircle(core.Vector2D{X: 5, Y: 5}, 1, core.Vector2D{})

	if !world.Remove(b) {
		t.Fatalf("Expected moving circle to be removed")
	}
	if world.Remove(b) {
		t.Fatalf("Removing twice should report false")
	}
	if world.Len() != 1 || world.Obstacles()[0] != core.Obstacle(a) {
		t.Fatalf("Expected only the static box to remain")
	}
}
