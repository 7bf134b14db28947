package follower

import (
	"errors"
	"fmt"
	"io"
	"log"

	"gonav/internal/core"
)

// State of a follower
type State int

const (
	Idle State = iota
	Following
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Following:
		return "following"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event reports what a tick did
type Event int

const (
	EventNone            Event = iota
	EventMoved                 // Agent advanced toward its waypoint
	EventWaypointReached       // Cursor moved to the next waypoint
	EventArrived               // Final waypoint reached, now idle
	EventReplanned             // Current segment became unsafe and a new path was adopted
	EventStopped               // Movement cancelled or replanning failed, now idle
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventMoved:
		return "moved"
	case EventWaypointReached:
		return "waypoint"
	case EventArrived:
		return "arrived"
	case EventReplanned:
		return "replanned"
	case EventStopped:
		return "stopped"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// SafetyChecker reports whether points and straight segments are traversable.
// IsPathClear only rejects segments that enter an obstacle or leave the
// region.
type SafetyChecker interface {
	IsWalkable(point core.Vector2D) bool
	IsPathSafe(a, b core.Vector2D) bool
	IsPathClear(a, b core.Vector2D) bool
}

// Planner produces a replacement path from the agent's position to its
// final destination
type Planner interface {
	Replan(from, destination core.Vector2D) ([]core.Vector2D, error)
}

// Config tunes movement
type Config struct {
	Speed            float64 // World units per second
	ArrivalThreshold float64 // Distance at which a waypoint counts as reached
	Dynamic          bool    // Re-check the current segment every tick and replan when it turns unsafe
}

// DefaultConfig returns the default movement settings
func DefaultConfig() Config {
	return Config{
		Speed:            5,
		ArrivalThreshold: 0.05,
		Dynamic:          true,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if !(c.Speed > 0) {
		return core.NewConfigError("move_speed", "must be positive, got %v", c.Speed)
	}
	if !(c.ArrivalThreshold >= 0) {
		return core.NewConfigError("arrival_threshold", "must be non-negative, got %v", c.ArrivalThreshold)
	}
	return nil
}

// Follower walks an agent along a waypoint path, one tick at a time
type Follower struct {
	position    core.Vector2D
	config      Config
	checker     SafetyChecker
	planner     Planner
	overlay     *Overlay
	logger      *log.Logger
	state       State
	path        []core.Vector2D
	cursor      int
	destination core.Vector2D
}

// New creates an idle follower at position. checker and planner are only
// used when dynamic replanning is enabled.
func New(position core.Vector2D, config Config, checker SafetyChecker, planner Planner) (*Follower, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Dynamic && (checker == nil || planner == nil) {
		return nil, core.NewConfigError("dynamic_obstacles", "needs a safety checker and a planner")
	}
	return &Follower{
		position: position,
		config:   config,
		checker:  checker,
		planner:  planner,
		overlay:  NewOverlay(false),
		logger:   log.New(io.Discard, "", 0),
	}, nil
}

// SetLogger directs debug output; nil discards it
func (f *Follower) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	f.logger = logger
}

// SetOverlay replaces the presentation overlay
func (f *Follower) SetOverlay(overlay *Overlay) {
	if overlay == nil {
		overlay = NewOverlay(false)
	}
	f.overlay = overlay
}

// Overlay returns the presentation overlay
func (f *Follower) Overlay() *Overlay { return f.overlay }

// SetDynamic toggles replanning on obstacle changes
func (f *Follower) SetDynamic(enabled bool) {
	f.config.Dynamic = enabled && f.checker != nil && f.planner != nil
}

// Position returns the agent position
func (f *Follower) Position() core.Vector2D { return f.position }

// SetPosition teleports the agent and stops any movement
func (f *Follower) SetPosition(p core.Vector2D) {
	f.position = p
	f.Stop()
}

// State returns the current state
func (f *Follower) State() State { return f.state }

// Destination returns the final waypoint of the active path
func (f *Follower) Destination() (core.Vector2D, bool) {
	return f.destination, f.state == Following
}

// Waypoint returns the waypoint currently steered toward
func (f *Follower) Waypoint() (core.Vector2D, bool) {
	if f.state != Following {
		return core.Vector2D{}, false
	}
	return f.path[f.cursor], true
}

// Remaining returns the waypoints not yet reached
func (f *Follower) Remaining() []core.Vector2D {
	if f.state != Following {
		return nil
	}
	out := make([]core.Vector2D, len(f.path)-f.cursor)
	copy(out, f.path[f.cursor:])
	return out
}

// Follow starts walking path. An empty path leaves the follower idle.
func (f *Follower) Follow(path []core.Vector2D) error {
	if len(path) == 0 {
		f.Stop()
		return fmt.Errorf("empty path: %w", core.ErrNoPath)
	}

	f.path = append([]core.Vector2D(nil), path...)
	f.cursor = 0
	f.destination = path[len(path)-1]
	f.state = Following
	f.overlay.Show(f.path)
	f.logger.Printf("following path with %d waypoints to %v", len(path), f.destination)
	return nil
}

// Stop halts movement immediately and clears the overlay
func (f *Follower) Stop() {
	f.state = Idle
	f.path = nil
	f.cursor = 0
	f.overlay.Clear()
}

// Tick advances the follower by dt seconds. permission is checked first;
// a denied permission cancels the current path. The returned error is
// non-nil only when replanning failed, in which case the follower is idle
// and has not moved.
func (f *Follower) Tick(dt float64, permission Permission) (Event, error) {
	if f.state != Following {
		return EventNone, nil
	}

	if permission != nil && !permission.MovementAllowed() {
		f.Stop()
		f.logger.Printf("movement blocked, stopping")
		return EventStopped, nil
	}

	target := f.path[f.cursor]
	distance := core.Distance(f.position, target)

	if distance <= f.config.ArrivalThreshold {
		f.cursor++
		if f.cursor >= len(f.path) {
			f.Stop()
			f.logger.Printf("destination %v reached", f.destination)
			return EventArrived, nil
		}
		return EventWaypointReached, nil
	}

	if f.config.Dynamic && !f.legSafe(target) {
		return f.replan()
	}

	if dt <= 0 {
		return EventNone, nil
	}

	step := f.config.Speed * dt
	if distance <= step {
		f.position = target
	} else {
		f.position = f.position.Add(target.Sub(f.position).Scale(step / distance))
	}
	return EventMoved, nil
}

// legSafe checks the segment from the agent to target. An agent standing
// off a walkable point (spawned at the region edge, or crowded by a moving
// obstacle) may step back onto the graph as long as target is walkable and
// the step does not cross an obstacle.
func (f *Follower) legSafe(target core.Vector2D) bool {
	if !f.checker.IsWalkable(f.position) {
		return f.checker.IsWalkable(target) && f.checker.IsPathClear(f.position, target)
	}
	return f.checker.IsPathSafe(f.position, target)
}

func (f *Follower) replan() (Event, error) {
	f.logger.Printf("segment %v -> %v blocked, replanning to %v", f.position, f.path[f.cursor], f.destination)

	destination := f.destination
	path, err := f.planner.Replan(f.position, destination)
	if err == nil && len(path) == 0 {
		err = core.ErrNoPath
	}
	if err == nil && !f.legSafe(path[0]) {
		err = fmt.Errorf("first waypoint %v is not reachable: %w", path[0], core.ErrNoPath)
	}
	if err != nil {
		f.Stop()
		f.logger.Printf("replanning failed: %v", err)
		if !errors.Is(err, core.ErrReplanFailed) {
			err = fmt.Errorf("%w: %w", core.ErrReplanFailed, err)
		}
		return EventStopped, err
	}

	f.path = append(f.path[:0], path...)
	f.cursor = 0
	f.destination = destination
	f.overlay.Show(f.path)
	f.logger.Printf("replanned with %d waypoints", len(path))
	return EventReplanned, nil
}
