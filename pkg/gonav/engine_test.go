package gonav

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gonav/internal/core"
	"gonav/internal/follower"
	"gonav/internal/scenario"
)

func TestLoadConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gonav.yaml")
	data := "grid:\n  grid_spacing: 0.5\nmovement:\n  move_speed: 2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Grid.Spacing != 0.5 || config.Movement.Speed != 2 {
		t.Fatalf("File values not applied: %+v", config)
	}
	defaults := DefaultConfig()
	if config.Grid.SafetyMargin != defaults.Grid.SafetyMargin || !config.Grid.StrictWalkability ||
		config.Movement.ArrivalThreshold != defaults.Movement.ArrivalThreshold || !config.Movement.ShowPath {
		t.Fatalf("Missing keys should keep defaults: %+v", config)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("grid:\n  grid_spacing: -1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	var configErr *core.ConfigError
	if _, err := LoadConfig(bad); !errors.As(err, &configErr) || configErr.Field != "grid_spacing" {
		t.Fatalf("Expected grid_spacing config error, got %v", err)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("Expected error for missing file")
	}
}

func TestBuildRequiresRegion(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Build(); !errors.Is(err, core.ErrConfiguration) {
		t.Fatalf("Expected configuration error without a region, got %v", err)
	}
	if _, err := e.FindPath(core.Vector2D{}, core.Vector2D{X: 1}); !errors.Is(err, ErrNoGraph) {
		t.Fatalf("Expected ErrNoGraph before building, got %v", err)
	}
	if err := e.SetRegion(nil); !errors.Is(err, core.ErrConfiguration) {
		t.Fatalf("Expected configuration error for nil region, got %v", err)
	}
}

func TestEngineFindPath(t *testing.T) {
	e := newCorridorEngine(t)

	path, err := e.FindPath(core.Vector2D{X: 0.3, Y: 0.4}, core.Vector2D{X: 8.8, Y: -0.3})
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	want := []core.Vector2D{{X: 0, Y: 0}, {X: 9, Y: 0}}
	if !samePath(path, want) {
		t.Fatalf("Expected %v, got %v", want, path)
	}

	nearest, ok := e.GetNearestWalkablePosition(core.Vector2D{X: 3.4, Y: 0.2})
	if !ok || nearest != (core.Vector2D{X: 3, Y: 0}) {
		t.Fatalf("Expected nearest walkable (3,0), got %v %v", nearest, ok)
	}

	if _, ok := e.GetNearestWalkablePosition(core.Vector2D{X: 50, Y: 50}); ok {
		t.Fatalf("Point far outside the search radius should have no nearest node")
	}

	if e.Mode() != ModeEdit {
		t.Fatalf("Expected edit mode after Build, got %v", e.Mode())
	}
}

func TestSaveAndLoadGraph(t *testing.T) {
	built := newCorridorEngine(t)
	path := filepath.Join(t.TempDir(), "corridor.yaml")
	if err := built.SaveGraph(path); err != nil {
		t.Fatalf("SaveGraph failed: %v", err)
	}

	e := newTestEngine(t)
	if err := e.SaveGraph(path); !errors.Is(err, ErrNoGraph) {
		t.Fatalf("Expected ErrNoGraph saving without a graph, got %v", err)
	}
	if err := e.LoadGraph(path); err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}

	if e.Mode() != ModePlay {
		t.Fatalf("Expected play mode after LoadGraph, got %v", e.Mode())
	}
	if got, want := e.GetStats().NodeCount, built.GetStats().NodeCount; got != want {
		t.Fatalf("Loaded graph has %d nodes, want %d", got, want)
	}

	result, err := e.FindPath(core.Vector2D{X: 0, Y: 0}, core.Vector2D{X: 9, Y: 0})
	if err != nil {
		t.Fatalf("FindPath on loaded graph failed: %v", err)
	}
	if !samePath(result, []core.Vector2D{{X: 0, Y: 0}, {X: 9, Y: 0}}) {
		t.Fatalf("Unexpected path on loaded graph: %v", result)
	}
}

func TestLoadGraphUsesSnapshotSpacing(t *testing.T) {
	built := newCorridorEngine(t)
	path := filepath.Join(t.TempDir(), "corridor.yaml")
	if err := built.SaveGraph(path); err != nil {
		t.Fatalf("SaveGraph failed: %v", err)
	}

	e, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if err := e.SetRegion(NewRect(-1, -1, 10, 1)); err != nil {
		t.Fatalf("SetRegion failed: %v", err)
	}
	// On the configured 0.25 lattice this point clears the strict probes
	probe := core.Vector2D{X: 0, Y: 0.6}
	if !e.IsWalkable(probe) {
		t.Fatalf("Expected %v to be walkable at spacing 0.25", probe)
	}

	if err := e.LoadGraph(path); err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	if e.Spacing() != 1 {
		t.Fatalf("Expected the snapshot spacing 1, got %v", e.Spacing())
	}
	if e.IsWalkable(probe) {
		t.Fatalf("Expected %v to be unwalkable at the snapshot spacing", probe)
	}

	if _, err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if e.Spacing() != 0.25 {
		t.Fatalf("Rebuilding should return to the configured spacing, got %v", e.Spacing())
	}
}

func TestReloadReplacesRegionFromGraphBounds(t *testing.T) {
	dir := t.TempDir()
	snapshots := make(map[float64]string)
	for _, maxX := range []float64{4, 10} {
		built := newTestEngine(t)
		if err := built.SetRegion(NewRect(-1, -1, maxX, 1)); err != nil {
			t.Fatalf("SetRegion failed: %v", err)
		}
		if _, err := built.Build(); err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		path := filepath.Join(dir, fmt.Sprintf("corridor-%v.yaml", maxX))
		if err := built.SaveGraph(path); err != nil {
			t.Fatalf("SaveGraph failed: %v", err)
		}
		snapshots[maxX] = path
	}

	e := newTestEngine(t)
	if err := e.LoadGraph(snapshots[4]); err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	far := core.Vector2D{X: 8, Y: 0}
	if e.IsWalkable(far) {
		t.Fatalf("Expected %v to lie outside the short corridor", far)
	}

	if err := e.LoadGraph(snapshots[10]); err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	if !e.IsWalkable(far) {
		t.Fatalf("Reloaded graph should widen the region to its bounds")
	}
	if _, err := e.FindPath(core.Vector2D{X: 0, Y: 0}, core.Vector2D{X: 9, Y: 0}); err != nil {
		t.Fatalf("FindPath on the reloaded graph failed: %v", err)
	}
}

func TestObstacleChangesEnableLiveEdges(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetRegion(NewRect(-1, -1, 10, 4)); err != nil {
		t.Fatalf("SetRegion failed: %v", err)
	}
	if _, err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if e.GetStats().LiveEdges {
		t.Fatalf("Fresh graph should not need live edge checks")
	}

	id, err := e.AddObstacle(NewRect(4.5, -1, 5.5, 0.5))
	if err != nil {
		t.Fatalf("AddObstacle failed: %v", err)
	}
	if !e.GetStats().LiveEdges {
		t.Fatalf("Adding an obstacle should enable live edge checks")
	}

	path, err := e.FindPath(core.Vector2D{X: 0, Y: 0}, core.Vector2D{X: 9, Y: 0})
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	for i := 1; i < len(path); i++ {
		if !e.IsPathSafe(path[i-1], path[i]) {
			t.Fatalf("Segment %v -> %v crosses the new obstacle", path[i-1], path[i])
		}
	}

	if err := e.RemoveObstacle(id); err != nil {
		t.Fatalf("RemoveObstacle failed: %v", err)
	}
	if err := e.RemoveObstacle(id); !errors.Is(err, core.ErrUnknownObstacle) {
		t.Fatalf("Expected ErrUnknownObstacle removing twice, got %v", err)
	}
	if e.ObstacleCount() != 0 {
		t.Fatalf("Expected no obstacles left, got %d", e.ObstacleCount())
	}
}

func TestAgentsMoveAndArrive(t *testing.T) {
	e := newCorridorEngine(t)
	if err := e.AddAgent("scout", core.Vector2D{X: 0, Y: 0}, 0); err != nil {
		t.Fatalf("AddAgent failed: %v", err)
	}
	if err := e.AddAgent("scout", core.Vector2D{}, 0); err == nil {
		t.Fatalf("Duplicate agent should be rejected")
	}

	if _, err := e.MoveSelected(core.Vector2D{X: 9, Y: 0}); !errors.Is(err, core.ErrUnknownAgent) {
		t.Fatalf("Expected error without selection, got %v", err)
	}
	if err := e.Select("scout"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if _, err := e.MoveSelected(core.Vector2D{X: 9, Y: 0}); err != nil {
		t.Fatalf("MoveSelected failed: %v", err)
	}

	state, err := e.GetAgent("scout")
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if !state.Selected || state.State != follower.Following || len(state.Overlay) == 0 {
		t.Fatalf("Unexpected agent state: %+v", state)
	}

	arrived := tickUntil(t, e, "scout", follower.EventArrived, 200)
	if !arrived {
		t.Fatalf("Agent never arrived")
	}
	state, _ = e.GetAgent("scout")
	if state.Position != (core.Vector2D{X: 9, Y: 0}) || state.State != follower.Idle || state.Overlay != nil {
		t.Fatalf("Unexpected state after arrival: %+v", state)
	}
}

func TestAgentLeavesSpawnAtRegionEdge(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetRegion(NewRect(0, 0, 10, 10)); err != nil {
		t.Fatalf("SetRegion failed: %v", err)
	}
	if _, err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	spawn := core.Vector2D{X: 0.05, Y: 5}
	if e.IsWalkable(spawn) {
		t.Fatalf("Expected the spawn point to be unwalkable")
	}
	if err := e.AddAgent("scout", spawn, 0); err != nil {
		t.Fatalf("AddAgent failed: %v", err)
	}
	if _, err := e.MoveAgent("scout", core.Vector2D{X: 8, Y: 5}); err != nil {
		t.Fatalf("MoveAgent failed: %v", err)
	}

	if !tickUntil(t, e, "scout", follower.EventArrived, 200) {
		t.Fatalf("Agent never left its spawn")
	}
	state, _ := e.GetAgent("scout")
	if state.Position != (core.Vector2D{X: 8, Y: 5}) {
		t.Fatalf("Expected arrival at (8, 5), got %v", state.Position)
	}
}

func TestGateStopsAgents(t *testing.T) {
	e := newCorridorEngine(t)
	if err := e.AddAgent("scout", core.Vector2D{X: 0, Y: 0}, 0); err != nil {
		t.Fatalf("AddAgent failed: %v", err)
	}
	if _, err := e.MoveAgent("scout", core.Vector2D{X: 9, Y: 0}); err != nil {
		t.Fatalf("MoveAgent failed: %v", err)
	}

	e.Gate().Block()
	events := e.Tick(0.1)
	if len(events) != 1 || events[0].Event != follower.EventStopped {
		t.Fatalf("Expected a single stop event, got %+v", events)
	}
	state, _ := e.GetAgent("scout")
	if state.State != follower.Idle || state.Position != (core.Vector2D{}) {
		t.Fatalf("Blocked agent should stay idle at its position: %+v", state)
	}
}

func TestEngineReplansAroundNewObstacle(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetRegion(NewRect(-1, -1, 10, 4)); err != nil {
		t.Fatalf("SetRegion failed: %v", err)
	}
	if _, err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := e.AddAgent("scout", core.Vector2D{X: 0, Y: 0}, 0); err != nil {
		t.Fatalf("AddAgent failed: %v", err)
	}
	if _, err := e.MoveAgent("scout", core.Vector2D{X: 9, Y: 0}); err != nil {
		t.Fatalf("MoveAgent failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		e.Tick(0.1)
	}

	block := NewRect(4.5, -1, 5.5, 0.5)
	if _, err := e.AddObstacle(block); err != nil {
		t.Fatalf("AddObstacle failed: %v", err)
	}

	replanned := false
	for i := 0; i < 2000; i++ {
		for _, ev := range e.Tick(0.1) {
			if ev.Err != nil {
				t.Fatalf("Tick reported error: %v", ev.Err)
			}
			if ev.Event == follower.EventReplanned {
				replanned = true
			}
		}
		state, _ := e.GetAgent("scout")
		if block.Contains(state.Position) {
			t.Fatalf("Agent entered the obstacle at %v", state.Position)
		}
		if state.State == follower.Idle {
			break
		}
	}

	state, _ := e.GetAgent("scout")
	if !replanned || state.Position != (core.Vector2D{X: 9, Y: 0}) {
		t.Fatalf("Expected a replan and arrival at (9,0), got replanned=%v state=%+v", replanned, state)
	}
}

func TestSetPathVisibility(t *testing.T) {
	e := newCorridorEngine(t)
	if err := e.AddAgent("scout", core.Vector2D{X: 0, Y: 0}, 0); err != nil {
		t.Fatalf("AddAgent failed: %v", err)
	}
	if _, err := e.MoveAgent("scout", core.Vector2D{X: 9, Y: 0}); err != nil {
		t.Fatalf("MoveAgent failed: %v", err)
	}

	e.SetPathVisibility(false)
	if state, _ := e.GetAgent("scout"); state.Overlay != nil {
		t.Fatalf("Hidden overlay should be empty, got %v", state.Overlay)
	}
	e.SetPathVisibility(true)
	state, _ := e.GetAgent("scout")
	if len(state.Overlay) == 0 || state.Overlay[len(state.Overlay)-1] != (core.Vector2D{X: 9, Y: 0}) {
		t.Fatalf("Shown overlay should end at the destination, got %v", state.Overlay)
	}
}

func TestLoadScenarioWithMovingObstacle(t *testing.T) {
	s, err := scenario.Parse([]byte(`
name: crossing
region: {kind: rect, min: {x: -1, y: -1}, max: {x: 10, y: 4}}
obstacles:
  - {kind: circle, center: {x: 2, y: 3}, radius: 0.4, velocity: {x: 1, y: 0}}
agents:
  - {name: scout, position: {x: 0, y: 0}}
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	e := newTestEngine(t)
	if err := e.LoadScenario(s); err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if _, err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if e.ObstacleCount() != 1 || len(e.Agents()) != 1 {
		t.Fatalf("Expected 1 obstacle and 1 agent, got %+v", e.GetStats())
	}

	before := e.GetStats().Version
	e.Tick(0.5)
	stats := e.GetStats()
	if stats.Version == before || !stats.LiveEdges {
		t.Fatalf("Moving obstacle should bump the registry version and enable live edges: %+v", stats)
	}
	if e.IsWalkable(core.Vector2D{X: 2.5, Y: 3}) {
		t.Fatalf("Obstacle should have moved onto (2.5,3)")
	}
}

func TestUnknownAgent(t *testing.T) {
	e := newCorridorEngine(t)
	if _, err := e.GetAgent("ghost"); !errors.Is(err, core.ErrUnknownAgent) {
		t.Fatalf("Expected ErrUnknownAgent, got %v", err)
	}
	if err := e.Select("ghost"); !errors.Is(err, core.ErrUnknownAgent) {
		t.Fatalf("Expected ErrUnknownAgent, got %v", err)
	}
	if _, err := e.MoveAgent("ghost", core.Vector2D{}); !errors.Is(err, core.ErrUnknownAgent) {
		t.Fatalf("Expected ErrUnknownAgent, got %v", err)
	}
}

func TestPointAlongPath(t *testing.T) {
	path := []core.Vector2D{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 4}}
	if got := PointAlongPath(path, 5); got != (core.Vector2D{X: 3, Y: 2}) {
		t.Fatalf("Expected (3,2), got %v", got)
	}
	if got := PointAlongPath(path, 100); got != path[2] {
		t.Fatalf("Expected clamp to end, got %v", got)
	}
	if PathLength(path) != 7 {
		t.Fatalf("Expected length 7, got %v", PathLength(path))
	}
}

// Helper functions

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	config := DefaultConfig()
	config.Grid.Spacing = 1
	config.Grid.SafetyMargin = 0.25
	e, err := NewEngine(config)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func newCorridorEngine(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(t)
	if err := e.SetRegion(NewRect(-1, -1, 10, 1)); err != nil {
		t.Fatalf("SetRegion failed: %v", err)
	}
	if _, err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return e
}

func tickUntil(t *testing.T, e *Engine, id string, want follower.Event, limit int) bool {
	t.Helper()
	for i := 0; i < limit; i++ {
		for _, ev := range e.Tick(0.1) {
			if ev.Err != nil {
				t.Fatalf("Tick reported error: %v", ev.Err)
			}
			if ev.AgentID == id && ev.Event == want {
				return true
			}
		}
	}
	return false
}

func samePath(a, b []core.Vector2D) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if core.Distance(a[i], b[i]) > 1e-9 {
			return false
		}
	}
	return true
}
