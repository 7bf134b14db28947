package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"gonav/internal/core"
	"gonav/internal/geometry"
)

// Scenario describes a level to navigate: the walkable region, the
// obstacles inside it and the agents that start in it
type Scenario struct {
	Name      string      `yaml:"name"`
	Region    ShapeSpec   `yaml:"region"`
	Obstacles []ShapeSpec `yaml:"obstacles"`
	Agents    []AgentSpec `yaml:"agents"`
}

// ShapeSpec is one of rect, circle or polygon. Obstacles with a non-zero
// velocity become moving obstacles.
type ShapeSpec struct {
	Kind     string      `yaml:"kind" json:"kind"`
	Min      PointSpec   `yaml:"min" json:"min"`
	Max      PointSpec   `yaml:"max" json:"max"`
	Center   PointSpec   `yaml:"center" json:"center"`
	Radius   float64     `yaml:"radius" json:"radius"`
	Points   []PointSpec `yaml:"points" json:"points,omitempty"`
	Velocity *PointSpec  `yaml:"velocity" json:"velocity,omitempty"`
}

type PointSpec struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

type AgentSpec struct {
	Name     string    `yaml:"name"`
	Position PointSpec `yaml:"position"`
	Speed    float64   `yaml:"speed"`
}

const (
	KindRect    = "rect"
	KindCircle  = "circle"
	KindPolygon = "polygon"
)

// Load reads a scenario file
func Load(filename string) (*Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("scenario: load %s: %w", filename, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", filename, err)
	}
	return s, nil
}

// Parse decodes and validates scenario YAML
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every shape and agent
func (s *Scenario) Validate() error {
	if _, err := s.Region.Region(); err != nil {
		return fmt.Errorf("region: %w", err)
	}
	if s.Region.Velocity != nil {
		return core.NewConfigError("walkable_region", "cannot move")
	}
	for i, o := range s.Obstacles {
		if err := o.validate(); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
		if o.moving() && o.kind() == KindPolygon {
			return fmt.Errorf("obstacle %d: %w", i, core.NewConfigError("velocity", "polygons cannot move"))
		}
	}
	seen := make(map[string]bool, len(s.Agents))
	for i, a := range s.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent %d: %w", i, core.NewConfigError("name", "is required"))
		}
		if seen[a.Name] {
			return fmt.Errorf("agent %d: %w", i, core.NewConfigError("name", "duplicate %q", a.Name))
		}
		seen[a.Name] = true
		if a.Speed < 0 {
			return fmt.Errorf("agent %s: %w", a.Name, core.NewConfigError("speed", "must be non-negative, got %v", a.Speed))
		}
	}
	return nil
}

// Populate adds the scenario obstacles to world in file order
func (s *Scenario) Populate(world *geometry.PhysicsWorld) ([]*geometry.ShapeObstacle, error) {
	added := make([]*geometry.ShapeObstacle, 0, len(s.Obstacles))
	for i, o := range s.Obstacles {
		obstacle, err := o.addTo(world)
		if err != nil {
			for _, prev := range added {
				world.Remove(prev)
			}
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		added = append(added, obstacle)
	}
	return added, nil
}

// HasMovingObstacles reports whether any obstacle has a velocity
func (s *Scenario) HasMovingObstacles() bool {
	for _, o := range s.Obstacles {
		if o.moving() {
			return true
		}
	}
	return false
}

// Region converts the shape into a walkable region
func (s ShapeSpec) Region() (core.Region, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	switch s.kind() {
	case KindRect:
		return geometry.NewRect(s.Min.X, s.Min.Y, s.Max.X, s.Max.Y), nil
	case KindCircle:
		return geometry.NewCircle(s.Center.Vector(), s.Radius), nil
	default:
		poly, err := geometry.NewPolygon(vectors(s.Points))
		if err != nil {
			return nil, err
		}
		return poly, nil
	}
}

// Obstacle converts the shape into a static obstacle
func (s ShapeSpec) Obstacle() (core.Obstacle, error) {
	if s.moving() {
		return nil, core.NewConfigError("velocity", "moving obstacles need a physics world")
	}
	region, err := s.Region()
	if err != nil {
		return nil, err
	}
	return region.(core.Obstacle), nil
}

func (s ShapeSpec) addTo(world *geometry.PhysicsWorld) (*geometry.ShapeObstacle, error) {
	switch s.kind() {
	case KindRect:
		if s.moving() {
			rect := geometry.NewRect(s.Min.X, s.Min.Y, s.Max.X, s.Max.Y)
			center := rect.Box.Min.Add(rect.Box.Max).Scale(0.5)
			return world.AddMovingBox(center, rect.Box.Width(), rect.Box.Height(), s.Velocity.Vector()), nil
		}
		return world.AddStaticBox(geometry.NewRect(s.Min.X, s.Min.Y, s.Max.X, s.Max.Y).Bounds()), nil
	case KindCircle:
		if s.moving() {
			return world.AddMovingCircle(s.Center.Vector(), s.Radius, s.Velocity.Vector()), nil
		}
		return world.AddStaticCircle(s.Center.Vector(), s.Radius), nil
	case KindPolygon:
		return world.AddStaticPolygon(vectors(s.Points))
	default:
		return nil, core.NewConfigError("kind", "unknown shape %q", s.Kind)
	}
}

func (s ShapeSpec) validate() error {
	switch s.kind() {
	case KindRect:
		if !(s.Max.X > s.Min.X) || !(s.Max.Y > s.Min.Y) {
			return core.NewConfigError("max", "must exceed min on both axes")
		}
	case KindCircle:
		if !(s.Radius > 0) {
			return core.NewConfigError("radius", "must be positive, got %v", s.Radius)
		}
	case KindPolygon:
		if len(s.Points) < 3 {
			return core.NewConfigError("points", "polygon needs at least 3 points, got %d", len(s.Points))
		}
	case "":
		return core.NewConfigError("kind", "is required")
	default:
		return core.NewConfigError("kind", "unknown shape %q", s.Kind)
	}
	return nil
}

func (s ShapeSpec) kind() string {
	return strings.ToLower(strings.TrimSpace(s.Kind))
}

func (s ShapeSpec) moving() bool {
	return s.Velocity != nil && (s.Velocity.X != 0 || s.Velocity.Y != 0)
}

// Vector converts the point to a core vector
func (p PointSpec) Vector() core.Vector2D {
	return core.Vector2D{X: p.X, Y: p.Y}
}

func vectors(points []PointSpec) []core.Vector2D {
	out := make([]core.Vector2D, len(points))
	for i, p := range points {
		out[i] = p.Vector()
	}
	return out
}
