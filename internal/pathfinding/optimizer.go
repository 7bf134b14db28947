package pathfinding

import "gonav/internal/core"

// SafetyChecker reports whether an agent may travel straight from a to b
type SafetyChecker interface {
	IsPathSafe(a, b core.Vector2D) bool
}

// Optimize simplifies a path by string pulling: from each kept point it
// jumps to the furthest later point still reachable in a straight safe
// line. Paths of two points or fewer are returned unchanged. The result is
// a new slice; the input is never modified.
func Optimize(path []core.Vector2D, checker SafetyChecker) []core.Vector2D {
	if len(path) <= 2 {
		return path
	}

	optimized := []core.Vector2D{path[0]}
	current := 0

	for current < len(path)-1 {
		furthest := current + 1
		for check := current + 2; check < len(path); check++ {
			if checker.IsPathSafe(path[current], path[check]) {
				furthest = check
			}
		}

		optimized = append(optimized, path[furthest])
		current = furthest
	}

	return optimized
}
