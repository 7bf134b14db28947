package gonav

import (
	"fmt"
	"sort"

	"gonav/internal/core"
	"gonav/internal/follower"
)

type agent struct {
	id       string
	follower *follower.Follower
	overlay  *follower.Overlay
}

// AgentState is a read-only view of an agent
type AgentState struct {
	ID          string
	Position    core.Vector2D
	State       follower.State
	Destination core.Vector2D
	HasPath     bool
	Path        []core.Vector2D // Waypoints not yet reached
	Overlay     []core.Vector2D // Displayed path, nil while hidden
	Selected    bool
}

// AgentEvent reports something an agent did during a tick
type AgentEvent struct {
	AgentID string
	Event   follower.Event
	Err     error // Set when replanning failed
}

// navigator hands followers whatever oracle and planner the engine
// currently holds. It is only called with the engine lock held.
type navigator struct {
	e *Engine
}

func (n navigator) IsWalkable(point core.Vector2D) bool {
	return n.e.oracle != nil && n.e.oracle.IsWalkable(point)
}

func (n navigator) IsPathSafe(a, b core.Vector2D) bool {
	return n.e.oracle != nil && n.e.oracle.IsPathSafe(a, b)
}

func (n navigator) IsPathClear(a, b core.Vector2D) bool {
	return n.e.oracle != nil && n.e.oracle.IsPathClear(a, b)
}

func (n navigator) Replan(from, destination core.Vector2D) ([]core.Vector2D, error) {
	if n.e.planner == nil {
		return nil, ErrNoGraph
	}
	return n.e.planner.Replan(from, destination)
}

// AddAgent spawns an idle agent. A zero speed uses the configured one.
func (e *Engine) AddAgent(id string, position core.Vector2D, speed float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == "" {
		return fmt.Errorf("agent id cannot be empty")
	}
	if _, exists := e.agents[id]; exists {
		return fmt.Errorf("agent %s already exists", id)
	}

	config := e.config.followerConfig()
	if speed > 0 {
		config.Speed = speed
	}
	nav := navigator{e: e}
	f, err := follower.New(position, config, nav, nav)
	if err != nil {
		return fmt.Errorf("agent %s: %w", id, err)
	}

	overlay := follower.NewOverlay(e.showPath)
	f.SetOverlay(overlay)
	f.SetLogger(e.logger)

	e.agents[id] = &agent{id: id, follower: f, overlay: overlay}
	return nil
}

// RemoveAgent deletes an agent, clearing the selection if it was selected
func (e *Engine) RemoveAgent(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.agents[id]; !exists {
		return fmt.Errorf("agent %s: %w", id, core.ErrUnknownAgent)
	}
	delete(e.agents, id)
	if e.selected == id {
		e.selected = ""
	}
	return nil
}

// GetAgent returns the state of one agent
func (e *Engine) GetAgent(id string) (AgentState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, exists := e.agents[id]
	if !exists {
		return AgentState{}, fmt.Errorf("agent %s: %w", id, core.ErrUnknownAgent)
	}
	return e.stateOf(a), nil
}

// Agents returns every agent sorted by ID
func (e *Engine) Agents() []AgentState {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.agentIDs()
	states := make([]AgentState, len(ids))
	for i, id := range ids {
		states[i] = e.stateOf(e.agents[id])
	}
	return states
}

// Select marks the agent that MoveSelected commands
func (e *Engine) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.agents[id]; !exists {
		return fmt.Errorf("agent %s: %w", id, core.ErrUnknownAgent)
	}
	e.selected = id
	return nil
}

// ClearSelection deselects the selected agent
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = ""
}

// Selected returns the selected agent ID
func (e *Engine) Selected() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, e.selected != ""
}

// MoveAgent plans from the agent's position to target and starts following
// the result. On failure the agent keeps whatever it was doing.
func (e *Engine) MoveAgent(id string, target core.Vector2D) ([]core.Vector2D, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, exists := e.agents[id]
	if !exists {
		return nil, fmt.Errorf("agent %s: %w", id, core.ErrUnknownAgent)
	}

	path, err := e.findPath(a.follower.Position(), target)
	if err != nil {
		return nil, err
	}
	if err := a.follower.Follow(path); err != nil {
		return nil, err
	}
	return path, nil
}

// MoveSelected sends the selected agent to target
func (e *Engine) MoveSelected(target core.Vector2D) ([]core.Vector2D, error) {
	id, ok := e.Selected()
	if !ok {
		return nil, fmt.Errorf("no agent selected: %w", core.ErrUnknownAgent)
	}
	return e.MoveAgent(id, target)
}

// StopAgent cancels the agent's path
func (e *Engine) StopAgent(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, exists := e.agents[id]
	if !exists {
		return fmt.Errorf("agent %s: %w", id, core.ErrUnknownAgent)
	}
	a.follower.Stop()
	return nil
}

func (e *Engine) stateOf(a *agent) AgentState {
	state := AgentState{
		ID:       a.id,
		Position: a.follower.Position(),
		State:    a.follower.State(),
		Path:     a.follower.Remaining(),
		Selected: a.id == e.selected,
	}
	if shown := a.overlay.Path(); shown != nil {
		state.Overlay = append([]core.Vector2D(nil), shown...)
	}
	state.Destination, state.HasPath = a.follower.Destination()
	return state
}

func (e *Engine) agentIDs() []string {
	ids := make([]string, 0, len(e.agents))
	for id := range e.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
