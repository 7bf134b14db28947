package pathfinding

import (
	"math"

	"gonav/internal/core"
)

// EuclideanDistance calculates Euclidean distance between two points
func EuclideanDistance(a, b core.Vector2D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// DiagonalDistance calculates diagonal distance (Chebyshev distance)
func DiagonalDistance(a, b core.Vector2D) float64 {
	dx := math.Abs(a.X - b.X)
	dy := math.Abs(a.Y - b.Y)
	return math.Max(dx, dy)
}

// OctileDistance calculates octile distance for 8-directional movement.
// It is only admissible while every node sits exactly on the lattice, so
// graphs built with dense probes should keep the Euclidean default.
func OctileDistance(a, b core.Vector2D) float64 {
	dx := math.Abs(a.X - b.X)
	dy := math.Abs(a.Y - b.Y)
	return (dx + dy) + (math.Sqrt2-2)*math.Min(dx, dy)
}

// ZeroHeuristic turns A* into Dijkstra's algorithm
func ZeroHeuristic(a, b core.Vector2D) float64 {
	return 0
}

// PathLength returns the sum of consecutive Euclidean distances
func PathLength(path []core.Vector2D) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += core.Distance(path[i-1], path[i])
	}
	return total
}
