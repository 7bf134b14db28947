package navigation

import (
	"math"

	"gonav/internal/core"
)

// BuildConfig controls graph construction
type BuildConfig struct {
	Oracle OracleConfig

	// Dense retries a rejected lattice point at quarter-step probes inside
	// its own cell, so narrow passages still receive a node.
	Dense bool

	// RemoveIsolated drops nodes left without connections
	RemoveIsolated bool

	// MaxNodes caps the number of lattice candidates; 0 means no limit
	MaxNodes int
}

// DefaultBuildConfig returns the build settings used by the engine
func DefaultBuildConfig(spacing, margin float64) BuildConfig {
	return BuildConfig{
		Oracle:         DefaultOracleConfig(spacing, margin),
		Dense:          true,
		RemoveIsolated: true,
		MaxNodes:       1 << 20,
	}
}

// BuildStats summarizes a build
type BuildStats struct {
	Candidates int // Lattice points examined
	Probed     int // Nodes placed at an off-lattice probe
	Removed    int // Isolated nodes dropped by cleanup
	Nodes      int
	Edges      int
}

// Builder samples a walkable region into a navigation graph
type Builder struct {
	config BuildConfig
}

// NewBuilder creates a builder
func NewBuilder(config BuildConfig) *Builder {
	return &Builder{config: config}
}

// BuildGraph builds a graph over region with the default strict settings
func BuildGraph(region core.Region, obstacles core.ObstacleSource, spacing, margin float64) (*Graph, error) {
	graph, _, err := NewBuilder(DefaultBuildConfig(spacing, margin)).Build(region, obstacles)
	return graph, err
}

// Build constructs a new graph. It fails with a configuration error rather
// than returning an empty graph when the input is unusable.
func (b *Builder) Build(region core.Region, obstacles core.ObstacleSource) (*Graph, BuildStats, error) {
	oracle, err := NewOracle(region, obstacles, b.config.Oracle)
	if err != nil {
		return nil, BuildStats{}, err
	}
	return b.BuildWith(oracle)
}

// BuildWith constructs a graph using an existing oracle
func (b *Builder) BuildWith(oracle *Oracle) (*Graph, BuildStats, error) {
	var stats BuildStats
	spacing := oracle.config.Spacing
	bounds := oracle.region.Bounds()

	minX, maxX := int(math.Ceil(bounds.Min.X/spacing)), int(math.Floor(bounds.Max.X/spacing))
	minY, maxY := int(math.Ceil(bounds.Min.Y/spacing)), int(math.Floor(bounds.Max.Y/spacing))

	width, height := float64(maxX-minX+1), float64(maxY-minY+1)
	if b.config.MaxNodes > 0 && width*height > float64(b.config.MaxNodes) {
		return nil, stats, core.NewConfigError("max_nodes",
			"lattice of %.0fx%.0f exceeds limit %d", width, height, b.config.MaxNodes)
	}

	graph, err := NewGraph(spacing, bounds)
	if err != nil {
		return nil, stats, err
	}

	quarter := spacing / 4
	for ix := minX; ix <= maxX; ix++ {
		for iy := minY; iy <= maxY; iy++ {
			stats.Candidates++
			candidate := core.Vector2D{X: float64(ix) * spacing, Y: float64(iy) * spacing}

			position, ok := candidate, oracle.IsWalkable(candidate)
			if !ok && b.config.Dense {
				for _, probe := range probes {
					position = candidate.Add(probe.Scale(quarter))
					if ok = oracle.IsWalkable(position); ok {
						stats.Probed++
						break
					}
				}
			}
			if !ok {
				continue
			}

			// Keys never collide here because each lattice point is visited once
			if _, err := graph.Insert(position); err != nil {
				continue
			}
		}
	}

	b.connect(graph, oracle)

	if b.config.RemoveIsolated {
		stats.Removed = graph.RemoveIsolated()
	}

	stats.Nodes = graph.Len()
	stats.Edges = graph.EdgeCount()
	return graph, stats, nil
}

// connect links every node to its safe 8-neighbors
func (b *Builder) connect(graph *Graph, oracle *Oracle) {
	for _, node := range graph.Nodes() {
		for _, offset := range neighborOffsets {
			neighbor, ok := graph.Node(core.LatticeCoord{X: node.key.X + offset.X, Y: node.key.Y + offset.Y})
			if !ok || node.IsConnected(neighbor) {
				continue
			}
			if oracle.IsPathSafe(node.position, neighbor.position) {
				node.AddConnection(neighbor)
			}
		}
	}
}

// Components returns the number of connected components in the graph
func Components(graph *Graph) int {
	seen := make([]bool, graph.Len())
	count := 0

	for _, start := range graph.Nodes() {
		if seen[start.id] {
			continue
		}
		count++
		seen[start.id] = true
		stack := []*Node{start}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, c := range n.connections {
				if !seen[c.id] {
					seen[c.id] = true
					stack = append(stack, c)
				}
			}
		}
	}

	return count
}

var neighborOffsets = [8]core.LatticeCoord{
	{X: 0, Y: 1},   // North
	{X: 1, Y: 0},   // East
	{X: 0, Y: -1},  // South
	{X: -1, Y: 0},  // West
	{X: 1, Y: 1},   // Northeast
	{X: 1, Y: -1},  // Southeast
	{X: -1, Y: -1}, // Southwest
	{X: -1, Y: 1},  // Northwest
}

// Quarter-step probe directions tried in order for rejected lattice points
var probes = [8]core.Vector2D{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
	{X: 1, Y: 1},
	{X: 1, Y: -1},
	{X: -1, Y: 1},
	{X: -1, Y: -1},
}
