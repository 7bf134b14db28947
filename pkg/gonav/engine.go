package gonav

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"gonav/internal/core"
	"gonav/internal/follower"
	"gonav/internal/geometry"
	"gonav/internal/navigation"
	"gonav/internal/obstacles"
	"gonav/internal/pathfinding"
	"gonav/internal/scenario"
)

// ErrNoGraph is returned by queries made before a graph was built or loaded
var ErrNoGraph = errors.New("gonav: no navigation graph")

// Mode tells how the current graph was obtained
type Mode int

const (
	ModeNone Mode = iota
	ModeEdit      // Graph computed by Build
	ModePlay      // Graph loaded from a snapshot
)

func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModePlay:
		return "play"
	default:
		return "none"
	}
}

// sceneBounds is the initial extent of the obstacle index
var sceneBounds = core.AABB{
	Min: core.Vector2D{X: -1000, Y: -1000},
	Max: core.Vector2D{X: 1000, Y: 1000},
}

// Engine is the navigation runtime: it owns the walkable region, the
// obstacle registry, the graph, and the agents walking it. All methods are
// safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	config Config
	logger *log.Logger

	region   core.Region
	derived  bool // region taken from the graph bounds
	world    *geometry.PhysicsWorld
	tracked  map[*geometry.ShapeObstacle]uint64
	registry *obstacles.Registry

	oracle       *navigation.Oracle
	graph        *navigation.Graph
	planner      *pathfinding.Planner
	builtVersion uint64
	mode         Mode

	agents   map[string]*agent
	selected string
	gate     *follower.Gate
	showPath bool
}

// NewEngine creates an engine without a region or graph
func NewEngine(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:   config,
		logger:   log.New(io.Discard, "", 0),
		world:    geometry.NewPhysicsWorld(),
		tracked:  make(map[*geometry.ShapeObstacle]uint64),
		registry: obstacles.NewRegistry(sceneBounds),
		agents:   make(map[string]*agent),
		gate:     follower.NewGate(),
		showPath: config.Movement.ShowPath,
	}
	if config.Debug {
		e.logger = log.New(os.Stderr, "[gonav] ", log.LstdFlags)
	}
	return e, nil
}

// SetLogger directs engine and agent logs; nil discards them
func (e *Engine) SetLogger(logger *log.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	e.logger = logger
	for _, a := range e.agents {
		a.follower.SetLogger(logger)
	}
}

// GetConfig returns the engine configuration
func (e *Engine) GetConfig() Config {
	return e.config
}

// Mode reports whether the graph was built or loaded
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Gate returns the movement gate every agent consults on each tick
func (e *Engine) Gate() *follower.Gate {
	return e.gate
}

// Scene setup

// SetRegion replaces the walkable region. The graph is kept; call Build to
// resample it.
func (e *Engine) SetRegion(region core.Region) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	spacing := e.config.Grid.Spacing
	if e.graph != nil {
		spacing = e.graph.Spacing()
	}
	oracle, err := e.newOracle(region, spacing)
	if err != nil {
		return err
	}
	e.region = region
	e.derived = false
	e.oracle = oracle
	if e.graph != nil {
		e.planner = e.newPlanner(e.graph)
	}
	return nil
}

// newOracle checks walkability against region on a lattice of the given
// spacing. Runtime checks must use the spacing the graph was sampled at.
func (e *Engine) newOracle(region core.Region, spacing float64) (*navigation.Oracle, error) {
	config := e.config.oracleConfig()
	config.Spacing = spacing
	return navigation.NewOracle(region, e.registry, config)
}

// LoadScenario sets the region, adds the scenario obstacles and spawns its agents
func (e *Engine) LoadScenario(s *scenario.Scenario) error {
	region, err := s.Region.Region()
	if err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	if err := e.SetRegion(region); err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	e.mu.Lock()
	added, err := s.Populate(e.world)
	if err == nil {
		for _, o := range added {
			id, addErr := e.registry.Add(o)
			if addErr != nil {
				err = addErr
				break
			}
			e.tracked[o] = id
		}
	}
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	for _, spec := range s.Agents {
		if err := e.AddAgent(spec.Name, spec.Position.Vector(), spec.Speed); err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}

	e.logger.Printf("scenario %q loaded: %d obstacles, %d agents", s.Name, len(added), len(s.Agents))
	return nil
}

// Edit mode

// Build samples the region into a fresh graph
func (e *Engine) Build() (navigation.BuildStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.region == nil {
		return navigation.BuildStats{}, core.NewConfigError("walkable_region", "is missing")
	}

	// A loaded graph may have left the oracle on another spacing
	oracle, err := e.newOracle(e.region, e.config.Grid.Spacing)
	if err != nil {
		return navigation.BuildStats{}, err
	}
	graph, stats, err := navigation.NewBuilder(e.config.buildConfig()).BuildWith(oracle)
	if err != nil {
		return stats, err
	}

	e.oracle = oracle

	e.install(graph, ModeEdit)
	e.logger.Printf("graph built: %d nodes, %d edges (%d probed, %d isolated removed)",
		stats.Nodes, stats.Edges, stats.Probed, stats.Removed)
	return stats, nil
}

// SaveGraph writes the current graph snapshot
func (e *Engine) SaveGraph(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		return ErrNoGraph
	}
	return navigation.SaveFile(path, e.graph)
}

// Play mode

// LoadGraph reads a snapshot and uses it verbatim
func (e *Engine) LoadGraph(path string) error {
	graph, err := navigation.LoadFile(path)
	if err != nil {
		return err
	}
	if err := e.SetGraph(graph); err != nil {
		return err
	}
	e.logger.Printf("graph loaded from %s: %d nodes", path, graph.Len())
	return nil
}

// SetGraph installs a precomputed graph. Without a region the graph bounds
// serve as one. Runtime checks use the graph's own spacing, whatever the
// configured one is.
func (e *Engine) SetGraph(graph *navigation.Graph) error {
	if graph == nil {
		return ErrNoGraph
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	region := e.region
	if region == nil || e.derived {
		b := graph.Bounds()
		region = geometry.NewRect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	}
	oracle, err := e.newOracle(region, graph.Spacing())
	if err != nil {
		return err
	}
	if graph.Spacing() != e.config.Grid.Spacing {
		e.logger.Printf("graph spacing %v overrides configured %v", graph.Spacing(), e.config.Grid.Spacing)
	}
	e.derived = e.derived || e.region == nil
	e.region = region
	e.oracle = oracle

	e.install(graph, ModePlay)
	return nil
}

// Spacing returns the lattice step runtime checks use
func (e *Engine) Spacing() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.oracle == nil {
		return e.config.Grid.Spacing
	}
	return e.oracle.Config().Spacing
}

// Graph returns the current graph or nil
func (e *Engine) Graph() *navigation.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

func (e *Engine) install(graph *navigation.Graph, mode Mode) {
	e.graph = graph
	e.mode = mode
	e.planner = e.newPlanner(graph)
	e.builtVersion = e.registry.Version()

	// Paths on the old graph are meaningless now
	for _, a := range e.agents {
		a.follower.Stop()
	}
}

func (e *Engine) newPlanner(graph *navigation.Graph) *pathfinding.Planner {
	planner := pathfinding.NewPlanner(graph, e.oracle, e.config.Grid.SearchRadius)
	planner.Pathfinder().SetMaxNodes(e.config.Grid.MaxSearchNodes)
	planner.SetLiveEdges(e.registry.Version() != e.builtVersion)
	return planner
}

// syncLiveEdges turns on live edge checks once obstacles differ from the
// ones the graph was built against
func (e *Engine) syncLiveEdges() {
	if e.planner != nil {
		e.planner.SetLiveEdges(e.registry.Version() != e.builtVersion)
	}
}

// Obstacles

// AddObstacle registers an obstacle and returns its ID
func (e *Engine) AddObstacle(obstacle core.Obstacle) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.registry.Add(obstacle)
	if err != nil {
		return 0, err
	}
	e.syncLiveEdges()
	return id, nil
}

// UpdateObstacle replaces the shape registered under id
func (e *Engine) UpdateObstacle(id uint64, obstacle core.Obstacle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.registry.Update(id, obstacle); err != nil {
		return err
	}
	e.syncLiveEdges()
	return nil
}

// RemoveObstacle unregisters an obstacle
func (e *Engine) RemoveObstacle(id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	obstacle, err := e.registry.Get(id)
	if err != nil {
		return err
	}
	if err := e.registry.Remove(id); err != nil {
		return err
	}
	if shape, ok := obstacle.(*geometry.ShapeObstacle); ok {
		e.world.Remove(shape)
		delete(e.tracked, shape)
	}
	e.syncLiveEdges()
	return nil
}

// ObstacleCount returns the number of registered obstacles
func (e *Engine) ObstacleCount() int {
	return e.registry.Count()
}

// Queries

// FindPath snaps start and goal to the nearest walkable nodes and returns
// the simplified path between them
func (e *Engine) FindPath(start, goal core.Vector2D) ([]core.Vector2D, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findPath(start, goal)
}

func (e *Engine) findPath(start, goal core.Vector2D) ([]core.Vector2D, error) {
	if e.planner == nil {
		return nil, ErrNoGraph
	}

	path, err := e.planner.Plan(start, goal)
	switch {
	case errors.Is(err, core.ErrUnwalkableEndpoint):
		e.logger.Printf("no walkable node near %v or %v", start, goal)
		return nil, err
	case err != nil:
		e.logger.Printf("no path from %v to %v", start, goal)
		return nil, err
	}
	e.logger.Printf("path found from %v to %v with %d waypoints", start, goal, len(path))
	return path, nil
}

// GetNearestWalkablePosition returns the position of the graph node closest
// to point within the search radius
func (e *Engine) GetNearestWalkablePosition(point core.Vector2D) (core.Vector2D, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.planner == nil {
		return core.Vector2D{}, false
	}
	node, ok := e.planner.Nearest(point)
	if !ok {
		return core.Vector2D{}, false
	}
	return node.Position(), true
}

// IsWalkable checks a point against the region and the current obstacles
func (e *Engine) IsWalkable(point core.Vector2D) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.oracle != nil && e.oracle.IsWalkable(point)
}

// IsPathSafe checks a straight segment against the current obstacles
func (e *Engine) IsPathSafe(a, b core.Vector2D) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.oracle != nil && e.oracle.IsPathSafe(a, b)
}

// SetPathVisibility toggles path overlays on every agent
func (e *Engine) SetPathVisibility(visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.showPath = visible
	for _, a := range e.agents {
		a.overlay.SetVisible(visible)
		if visible {
			a.overlay.Show(a.follower.Remaining())
		}
	}
}

// PathVisible reports whether path overlays are shown
func (e *Engine) PathVisible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.showPath
}

// Simulation

// Tick advances moving obstacles and every agent by dt seconds. Agents are
// ticked in ID order.
func (e *Engine) Tick(dt float64) []AgentEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.world.Len() > 0 && dt > 0 {
		e.world.Step(dt)
		e.registry.Refresh()
	}
	e.syncLiveEdges()

	var events []AgentEvent
	for _, id := range e.agentIDs() {
		a := e.agents[id]
		event, err := a.follower.Tick(dt, e.gate)
		if event == follower.EventNone {
			continue
		}
		events = append(events, AgentEvent{AgentID: id, Event: event, Err: err})
	}
	return events
}

// GetStats returns a summary of the engine state
func (e *Engine) GetStats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := Stats{
		Mode:          e.mode,
		ObstacleCount: e.registry.Count(),
		AgentCount:    len(e.agents),
		Version:       e.registry.Version(),
	}
	if e.graph != nil {
		stats.NodeCount = e.graph.Len()
		stats.EdgeCount = e.graph.EdgeCount()
	}
	if e.planner != nil {
		stats.LiveEdges = e.planner.LiveEdges()
	}
	return stats
}

// Stats summarizes the engine state
type Stats struct {
	Mode          Mode
	NodeCount     int
	EdgeCount     int
	ObstacleCount int
	AgentCount    int
	Version       uint64 // Obstacle registry version
	LiveEdges     bool   // Obstacles changed since the graph was built
}
