package transport

import (
	"encoding/json"

	"gonav/internal/core"
	"gonav/internal/scenario"
)

// Client request types
const (
	TypeFindPath       = "find_path"
	TypeNearest        = "nearest"
	TypeMove           = "move"
	TypeSelect         = "select"
	TypeAddObstacle    = "add_obstacle"
	TypeRemoveObstacle = "remove_obstacle"
	TypePathVisibility = "path_visibility"
	TypeSnapshot       = "snapshot"
)

// Server-only message types
const (
	TypePath            = "path"
	TypeMoved           = "moved"
	TypeSelected        = "selected"
	TypeObstacle        = "obstacle"
	TypeObstacleRemoved = "obstacle_removed"
	TypeAck             = "ack"
	TypeError           = "error"
)

type clientEnvelope struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Envelope is a typed server message
type Envelope struct {
	Type    string `json:"type"`
	Seq     uint64 `json:"seq,omitempty"` // Echoes the request seq
	Payload any    `json:"payload,omitempty"`
}

// Point is a position on the wire
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type findPathRequest struct {
	Start Point `json:"start"`
	Goal  Point `json:"goal"`
}

type nearestRequest struct {
	Point Point `json:"point"`
}

type moveRequest struct {
	AgentID string `json:"agent_id"`
	Target  Point  `json:"target"`
}

type selectRequest struct {
	AgentID string `json:"agent_id"`
}

type addObstacleRequest struct {
	Shape scenario.ShapeSpec `json:"shape"`
}

type removeObstacleRequest struct {
	ID uint64 `json:"id"`
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

// PathResponse carries a path answer
type PathResponse struct {
	AgentID string  `json:"agent_id,omitempty"`
	Path    []Point `json:"path"`
}

// NearestResponse carries a nearest-walkable answer
type NearestResponse struct {
	Point Point `json:"point"`
	Found bool  `json:"found"`
}

// ObstacleResponse carries an obstacle ID
type ObstacleResponse struct {
	ID uint64 `json:"id"`
}

// ErrorResponse reports a failed request
type ErrorResponse struct {
	Request string `json:"request"`
	Message string `json:"message"`
	NoPath  bool   `json:"no_path,omitempty"`
}

// Snapshot is the world state pushed after every tick
type Snapshot struct {
	Tick      uint64      `json:"tick"`
	Obstacles int         `json:"obstacles"`
	Agents    []AgentView `json:"agents"`
}

// AgentView is an agent as seen by clients
type AgentView struct {
	ID       string  `json:"id"`
	Position Point   `json:"position"`
	State    string  `json:"state"`
	Path     []Point `json:"path,omitempty"`
	Selected bool    `json:"selected,omitempty"`
}

// ToPoint converts a vector to its wire form
func ToPoint(v core.Vector2D) Point {
	return Point{X: v.X, Y: v.Y}
}

// ToPoints converts a path to its wire form
func ToPoints(path []core.Vector2D) []Point {
	out := make([]Point, len(path))
	for i, v := range path {
		out[i] = ToPoint(v)
	}
	return out
}

// Vector converts the point back to a vector
func (p Point) Vector() core.Vector2D {
	return core.Vector2D{X: p.X, Y: p.Y}
}
