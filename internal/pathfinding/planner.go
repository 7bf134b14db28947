package pathfinding

import (
	"fmt"

	"gonav/internal/core"
	"gonav/internal/navigation"
)

// Planner answers point-to-point path requests on one graph: it snaps the
// endpoints to nodes, runs A* and simplifies the result against the oracle.
type Planner struct {
	graph      *navigation.Graph
	oracle     *navigation.Oracle
	finder     *AStarPathfinder
	snapRadius int
	liveEdges  bool
}

// NewPlanner creates a planner. snapRadius is the nearest-node scan radius
// in lattice cells.
func NewPlanner(graph *navigation.Graph, oracle *navigation.Oracle, snapRadius int) *Planner {
	return &Planner{
		graph:      graph,
		oracle:     oracle,
		finder:     NewAStarPathfinder(),
		snapRadius: snapRadius,
	}
}

// Graph returns the graph searched by the planner
func (p *Planner) Graph() *navigation.Graph { return p.graph }

// Oracle returns the oracle used for safety checks
func (p *Planner) Oracle() *navigation.Oracle { return p.oracle }

// Pathfinder exposes the underlying A* search for tuning
func (p *Planner) Pathfinder() *AStarPathfinder { return p.finder }

// SetLiveEdges makes every search re-check connections and snapped nodes
// against the oracle. Enable it once obstacles have changed since the graph
// was built.
func (p *Planner) SetLiveEdges(enabled bool) {
	p.liveEdges = enabled
}

// LiveEdges reports whether connections are re-checked during search
func (p *Planner) LiveEdges() bool { return p.liveEdges }

// Nearest returns the closest node to point within the snap radius
func (p *Planner) Nearest(point core.Vector2D) (*navigation.Node, bool) {
	var accept func(*navigation.Node) bool
	if p.liveEdges {
		accept = func(n *navigation.Node) bool { return p.oracle.IsWalkable(n.Position()) }
	}
	return p.graph.Nearest(point, p.snapRadius, accept)
}

// Plan snaps start and goal to their nearest nodes, searches and returns
// the simplified path
func (p *Planner) Plan(start, goal core.Vector2D) ([]core.Vector2D, error) {
	startNode, ok := p.Nearest(start)
	if !ok {
		return nil, fmt.Errorf("start %v: %w", start, core.ErrUnwalkableEndpoint)
	}
	goalNode, ok := p.Nearest(goal)
	if !ok {
		return nil, fmt.Errorf("goal %v: %w", goal, core.ErrUnwalkableEndpoint)
	}

	return p.search(startNode, goalNode, p.liveEdges)
}

// Replan finds a fresh route from the agent's current position to its
// final destination, routing around obstacles that appeared after the
// graph was built. The first waypoint is the agent's snapped node, dropped
// when the agent can head straight for the next one.
func (p *Planner) Replan(from, destination core.Vector2D) ([]core.Vector2D, error) {
	// From an unwalkable position no segment is safe; a walkable node
	// reachable without crossing an obstacle gets the agent back onto the graph
	fromWalkable := p.oracle.IsWalkable(from)
	startNode, ok := p.graph.Nearest(from, p.snapRadius, func(n *navigation.Node) bool {
		if !p.oracle.IsWalkable(n.Position()) {
			return false
		}
		if !fromWalkable {
			return p.oracle.IsPathClear(from, n.Position())
		}
		return p.oracle.IsPathSafe(from, n.Position())
	})
	if !ok {
		return nil, fmt.Errorf("%w: no safe node near %v: %w", core.ErrReplanFailed, from, core.ErrUnwalkableEndpoint)
	}

	goalNode, ok := p.graph.NodeAt(destination)
	if !ok || !p.oracle.IsWalkable(goalNode.Position()) {
		goalNode, ok = p.graph.Nearest(destination, p.snapRadius, func(n *navigation.Node) bool {
			return p.oracle.IsWalkable(n.Position())
		})
		if !ok {
			return nil, fmt.Errorf("%w: destination %v: %w", core.ErrReplanFailed, destination, core.ErrUnwalkableEndpoint)
		}
	}

	path, err := p.search(startNode, goalNode, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrReplanFailed, err)
	}

	if len(path) >= 2 && p.oracle.IsPathSafe(from, path[1]) {
		path = path[1:]
	}
	return path, nil
}

func (p *Planner) search(start, goal *navigation.Node, live bool) ([]core.Vector2D, error) {
	if live {
		prev := p.finder.filter
		p.finder.SetEdgeFilter(func(from, to *navigation.Node) bool {
			if prev != nil && !prev(from, to) {
				return false
			}
			return p.oracle.IsPathSafe(from.Position(), to.Position())
		})
		defer p.finder.SetEdgeFilter(prev)
	}

	nodes, err := p.finder.FindNodePath(p.graph, start, goal)
	if err != nil {
		return nil, err
	}
	return Optimize(Positions(nodes), p.oracle), nil
}
