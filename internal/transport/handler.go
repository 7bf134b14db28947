package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"gonav/internal/core"
)

// Navigator is the runtime query surface served over the socket
type Navigator interface {
	FindPath(start, goal core.Vector2D) ([]core.Vector2D, error)
	GetNearestWalkablePosition(point core.Vector2D) (core.Vector2D, bool)
	MoveAgent(id string, target core.Vector2D) ([]core.Vector2D, error)
	Select(id string) error
	AddObstacle(obstacle core.Obstacle) (uint64, error)
	RemoveObstacle(id uint64) error
	SetPathVisibility(visible bool)
	Snapshot() Snapshot
}

// Handler upgrades HTTP requests and serves one client per connection
type Handler struct {
	nav      Navigator
	hub      *Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a handler; a nil logger uses the standard one
func NewHandler(nav Navigator, hub *Hub, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		nav:    nav,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("navserver: ws upgrade failed: %v", err)
		return
	}

	client := &clientConn{conn: conn}
	h.hub.add(client)
	defer func() {
		h.hub.remove(client)
		_ = conn.Close()
	}()

	if err := client.send(Envelope{Type: TypeSnapshot, Payload: h.nav.Snapshot()}); err != nil {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope clientEnvelope
		if err := json.Unmarshal(payload, &envelope); err != nil {
			h.logger.Printf("navserver: discarding malformed message: %v", err)
			continue
		}

		reply := h.dispatch(envelope)
		reply.Seq = envelope.Seq
		if err := client.send(reply); err != nil {
			return
		}
	}
}

func (h *Handler) dispatch(envelope clientEnvelope) Envelope {
	switch envelope.Type {
	case TypeFindPath:
		var req findPathRequest
		if err := decode(envelope, &req); err != nil {
			return failure(envelope.Type, err)
		}
		path, err := h.nav.FindPath(req.Start.Vector(), req.Goal.Vector())
		if err != nil {
			return failure(envelope.Type, err)
		}
		return Envelope{Type: TypePath, Payload: PathResponse{Path: ToPoints(path)}}

	case TypeNearest:
		var req nearestRequest
		if err := decode(envelope, &req); err != nil {
			return failure(envelope.Type, err)
		}
		point, ok := h.nav.GetNearestWalkablePosition(req.Point.Vector())
		return Envelope{Type: TypeNearest, Payload: NearestResponse{Point: ToPoint(point), Found: ok}}

	case TypeMove:
		var req moveRequest
		if err := decode(envelope, &req); err != nil {
			return failure(envelope.Type, err)
		}
		path, err := h.nav.MoveAgent(req.AgentID, req.Target.Vector())
		if err != nil {
			return failure(envelope.Type, err)
		}
		return Envelope{Type: TypeMoved, Payload: PathResponse{AgentID: req.AgentID, Path: ToPoints(path)}}

	case TypeSelect:
		var req selectRequest
		if err := decode(envelope, &req); err != nil {
			return failure(envelope.Type, err)
		}
		if err := h.nav.Select(req.AgentID); err != nil {
			return failure(envelope.Type, err)
		}
		return Envelope{Type: TypeSelected, Payload: req}

	case TypeAddObstacle:
		var req addObstacleRequest
		if err := decode(envelope, &req); err != nil {
			return failure(envelope.Type, err)
		}
		obstacle, err := req.Shape.Obstacle()
		if err != nil {
			return failure(envelope.Type, err)
		}
		id, err := h.nav.AddObstacle(obstacle)
		if err != nil {
			return failure(envelope.Type, err)
		}
		return Envelope{Type: TypeObstacle, Payload: ObstacleResponse{ID: id}}

	case TypeRemoveObstacle:
		var req removeObstacleRequest
		if err := decode(envelope, &req); err != nil {
			return failure(envelope.Type, err)
		}
		if err := h.nav.RemoveObstacle(req.ID); err != nil {
			return failure(envelope.Type, err)
		}
		return Envelope{Type: TypeObstacleRemoved, Payload: ObstacleResponse{ID: req.ID}}

	case TypePathVisibility:
		var req visibilityRequest
		if err := decode(envelope, &req); err != nil {
			return failure(envelope.Type, err)
		}
		h.nav.SetPathVisibility(req.Visible)
		return Envelope{Type: TypeAck, Payload: req}

	case TypeSnapshot:
		return Envelope{Type: TypeSnapshot, Payload: h.nav.Snapshot()}

	default:
		return failure(envelope.Type, fmt.Errorf("unknown request type %q", envelope.Type))
	}
}

func decode(envelope clientEnvelope, v any) error {
	if len(envelope.Payload) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(envelope.Payload, v); err != nil {
		return fmt.Errorf("decode %s: %w", envelope.Type, err)
	}
	return nil
}

func failure(request string, err error) Envelope {
	return Envelope{Type: TypeError, Payload: ErrorResponse{
		Request: request,
		Message: err.Error(),
		NoPath:  errors.Is(err, core.ErrNoPath),
	}}
}
