package navigation

import (
	"math"

	"gonav/internal/core"
)

// OracleConfig tunes walkability checks
type OracleConfig struct {
	Spacing      float64 // Lattice step; strict offsets sit at half of it
	SafetyMargin float64 // Minimum clearance from every obstacle boundary

	// Strict also requires the four cardinal points at Spacing/2 to lie in
	// the walkable region, which keeps nodes off thin slivers and edges.
	Strict bool

	// Perpendicular checks two extra points at SafetyMargin/2 on each side of
	// every segment sample.
	Perpendicular bool

	SampleFactor float64 // Segment sample step as a fraction of Spacing
	MinSamples   int     // Lower bound on segment samples
}

// DefaultOracleConfig returns the strict configuration used for graph builds
func DefaultOracleConfig(spacing, margin float64) OracleConfig {
	return OracleConfig{
		Spacing:       spacing,
		SafetyMargin:  margin,
		Strict:        true,
		Perpendicular: true,
		SampleFactor:  0.1,
		MinSamples:    10,
	}
}

// Validate checks the configuration
func (c OracleConfig) Validate() error {
	if !(c.Spacing > 0) || math.IsInf(c.Spacing, 0) {
		return core.NewConfigError("grid_spacing", "must be positive, got %v", c.Spacing)
	}
	if !(c.SafetyMargin >= 0) || math.IsInf(c.SafetyMargin, 0) {
		return core.NewConfigError("safety_margin", "must be non-negative, got %v", c.SafetyMargin)
	}
	if !(c.SampleFactor > 0) {
		return core.NewConfigError("sample_factor", "must be positive, got %v", c.SampleFactor)
	}
	if c.MinSamples < 1 {
		return core.NewConfigError("min_samples", "must be at least 1, got %d", c.MinSamples)
	}
	return nil
}

// Oracle answers walkability questions against a region and a live
// obstacle source. It holds no state of its own beyond its inputs, so it
// always reflects the obstacles as they are at call time.
type Oracle struct {
	region    core.Region
	obstacles core.ObstacleSource
	config    OracleConfig
}

// NewOracle creates an oracle. obstacles may be nil.
func NewOracle(region core.Region, obstacles core.ObstacleSource, config OracleConfig) (*Oracle, error) {
	if region == nil {
		return nil, core.NewConfigError("walkable_region", "is missing")
	}
	if region.Bounds().Degenerate() {
		return nil, core.NewConfigError("walkable_region", "has degenerate bounds %+v", region.Bounds())
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if obstacles == nil {
		obstacles = core.Obstacles(nil)
	}
	return &Oracle{region: region, obstacles: obstacles, config: config}, nil
}

// Config returns the oracle configuration
func (o *Oracle) Config() OracleConfig { return o.config }

// Region returns the walkable region
func (o *Oracle) Region() core.Region { return o.region }

// IsWalkable reports whether point may hold a navigation node
func (o *Oracle) IsWalkable(point core.Vector2D) bool {
	nearby := o.obstacles.Near(pointBounds(point, o.config.SafetyMargin))
	return o.walkable(point, nearby)
}

// IsPathSafe reports whether the straight segment a-b keeps clear of every
// obstacle. Both endpoints and every sample along the segment must be
// walkable.
func (o *Oracle) IsPathSafe(a, b core.Vector2D) bool {
	reach := o.config.SafetyMargin * 1.5
	nearby := o.obstacles.Near(core.SegmentBounds(a, b).Expand(reach))

	if !o.walkable(a, nearby) || !o.walkable(b, nearby) {
		return false
	}

	checks := o.sampleCount(core.Distance(a, b))
	var perpendicular core.Vector2D
	if o.config.Perpendicular {
		perpendicular = b.Sub(a).Normalize().Perpendicular().Scale(o.config.SafetyMargin * 0.5)
	}

	for i := 0; i <= checks; i++ {
		point := core.Lerp(a, b, float64(i)/float64(checks))
		if !o.walkable(point, nearby) {
			return false
		}
		if o.config.Perpendicular {
			if !o.walkable(point.Add(perpendicular), nearby) || !o.walkable(point.Sub(perpendicular), nearby) {
				return false
			}
		}
	}

	return true
}

// IsPathClear reports whether the segment a-b stays inside the region
// without entering any obstacle. Unlike IsPathSafe it ignores the safety
// margin, so it accepts a step out of a crowded spot back onto the graph.
func (o *Oracle) IsPathClear(a, b core.Vector2D) bool {
	nearby := o.obstacles.Near(core.SegmentBounds(a, b).Expand(o.config.SafetyMargin))
	checks := o.sampleCount(core.Distance(a, b))

	for i := 0; i <= checks; i++ {
		point := core.Lerp(a, b, float64(i)/float64(checks))
		if !o.region.Contains(point) {
			return false
		}
		for _, obstacle := range nearby {
			if obstacle.Contains(point) {
				return false
			}
		}
	}

	return true
}

// Clearance returns the distance from point to the nearest obstacle
// boundary: 0 inside an obstacle, +Inf when there are none.
func (o *Oracle) Clearance(point core.Vector2D) float64 {
	clearance := math.Inf(1)
	for _, obstacle := range o.obstacles.Near(everywhere) {
		if obstacle.Contains(point) {
			return 0
		}
		clearance = math.Min(clearance, core.Distance(point, obstacle.ClosestPoint(point)))
	}
	return clearance
}

func (o *Oracle) walkable(point core.Vector2D, nearby []core.Obstacle) bool {
	if !o.region.Contains(point) {
		return false
	}

	if o.config.Strict {
		half := o.config.Spacing * 0.5
		for _, offset := range cardinals {
			if !o.region.Contains(point.Add(offset.Scale(half))) {
				return false
			}
		}
	}

	for _, obstacle := range nearby {
		if obstacle.Contains(point) {
			return false
		}
		if core.Distance(point, obstacle.ClosestPoint(point)) < o.config.SafetyMargin {
			return false
		}
	}

	return true
}

func (o *Oracle) sampleCount(distance float64) int {
	checks := int(math.Ceil(distance / (o.config.Spacing * o.config.SampleFactor)))
	if checks < o.config.MinSamples {
		checks = o.config.MinSamples
	}
	return checks
}

var cardinals = [4]core.Vector2D{
	{X: 0, Y: 1},
	{X: 0, Y: -1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

var everywhere = core.AABB{
	Min: core.Vector2D{X: math.Inf(-1), Y: math.Inf(-1)},
	Max: core.Vector2D{X: math.Inf(1), Y: math.Inf(1)},
}

func pointBounds(p core.Vector2D, radius float64) core.AABB {
	return core.AABB{Min: p, Max: p}.Expand(radius)
}
