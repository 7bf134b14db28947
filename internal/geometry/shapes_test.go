package geometry

import (
	"math"
	"testing"

	"gonav/internal/core"
)

func TestRectContainsAndClosestPoint(t *testing.T) {
	rect := NewRect(4, -2, 6, 2)

	if !rect.Contains(core.Vector2D{X: 5, Y: 0}) {
		t.Fatalf("Center should be inside rect")
	}
	if !rect.Contains(core.Vector2D{X: 4, Y: 2}) {
		t.Fatalf("Corner should be inside rect (edges inclusive)")
	}
	if rect.Contains(core.Vector2D{X: 3.9, Y: 0}) {
		t.Fatalf("Point left of rect should be outside")
	}

	closest := rect.ClosestPoint(core.Vector2D{X: 0, Y: 5})
	if closest != (core.Vector2D{X: 4, Y: 2}) {
		t.Fatalf("Expected closest point (4,2), got %v", closest)
	}

	inside := core.Vector2D{X: 5, Y: 1}
	if rect.ClosestPoint(inside) != inside {
		t.Fatalf("Closest point of an inside point should be the point itself")
	}
}

func TestCircleClosestPoint(t *testing.T) {
	circle := NewCircle(core.Vector2D{X: 0, Y: 0}, 2)

	closest := circle.ClosestPoint(core.Vector2D{X: 10, Y: 0})
	if distance(closest, core.Vector2D{X: 2, Y: 0}) > 1e-9 {
		t.Fatalf("Expected closest point (2,0), got %v", closest)
	}

	if d := DistanceToBoundary(circle, core.Vector2D{X: 0, Y: 5}); math.Abs(d-3) > 1e-9 {
		t.Fatalf("Expected distance 3, got %.4f", d)
	}
	if d := DistanceToBoundary(circle, core.Vector2D{X: 1, Y: 0}); d != 0 {
		t.Fatalf("Expected distance 0 inside circle, got %.4f", d)
	}
}

func TestPolygonContains(t *testing.T) {
	// L-shaped concave polygon
	poly, err := NewPolygon([]core.Vector2D{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 4}, {X: 0, Y: 4},
	})
	if err != nil {
		t.Fatalf("Failed to create polygon: %v", err)
	}

	tests := []struct {
		name  string
		point core.Vector2D
		want  bool
	}{
		{"foot", core.Vector2D{X: 3, Y: 0.5}, true},
		{"leg", core.Vector2D{X: 0.5, Y: 3}, true},
		{"notch", core.Vector2D{X: 3, Y: 3}, false},
		{"edge", core.Vector2D{X: 2, Y: 0}, true},
		{"outside", core.Vector2D{X: -1, Y: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := poly.Contains(tt.point); got != tt.want {
				t.Fatalf("Contains(%v) = %t, want %t", tt.point, got, tt.want)
			}
		})
	}

	closest := poly.ClosestPoint(core.Vector2D{X: 3, Y: 2.5})
	if distance(closest, core.Vector2D{X: 3, Y: 1}) > 1e-9 {
		t.Fatalf("Expected closest point (3,1) from the notch, got %v", closest)
	}
}

func TestPolygonNeedsThreeVertices(t *testing.T) {
	if _, err := NewPolygon([]core.Vector2D{{X: 0, Y: 0}, {X: 1, Y: 1}}); err == nil {
		t.Fatalf("Expected error for a two-vertex polygon")
	}
}

func TestClosestPointOnSegment(t *testing.T) {
	a := core.Vector2D{X: 0, Y: 0}
	b := core.Vector2D{X: 10, Y: 0}

	if p := ClosestPointOnSegment(core.Vector2D{X: 5, Y: 3}, a, b); p != (core.Vector2D{X: 5, Y: 0}) {
		t.Fatalf("Expected projection (5,0), got %v", p)
	}
	if p := ClosestPointOnSegment(core.Vector2D{X: -5, Y: 3}, a, b); p != a {
		t.Fatalf("Expected clamp to segment start, got %v", p)
	}
	if p := ClosestPointOnSegment(core.Vector2D{X: 1, Y: 1}, a, a); p != a {
		t.Fatalf("Degenerate segment should return its start, got %v", p)
	}
}

// Helper functions

func distance(a, b core.Vector2D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
