package pathfinding

import (
	"container/heap"
	"fmt"

	"gonav/internal/core"
	"gonav/internal/navigation"
)

// EdgeFilter vetoes a connection during search. It is consulted once per
// relaxation, so it sees the world as it is while the search runs.
type EdgeFilter func(from, to *navigation.Node) bool

// AStarPathfinder implements the A* pathfinding algorithm over a navigation graph
type AStarPathfinder struct {
	heuristic core.HeuristicFunc
	filter    EdgeFilter
	maxNodes  int // 0 means search until the open set is exhausted
}

// NewAStarPathfinder creates a new A* pathfinder with the Euclidean heuristic
func NewAStarPathfinder() *AStarPathfinder {
	return &AStarPathfinder{
		heuristic: EuclideanDistance,
	}
}

// SetHeuristic sets the heuristic function
func (a *AStarPathfinder) SetHeuristic(heuristic core.HeuristicFunc) {
	if heuristic == nil {
		heuristic = EuclideanDistance
	}
	a.heuristic = heuristic
}

// SetEdgeFilter installs a runtime connection check; nil removes it
func (a *AStarPathfinder) SetEdgeFilter(filter EdgeFilter) {
	a.filter = filter
}

// SetMaxNodes bounds the number of nodes expanded per search
func (a *AStarPathfinder) SetMaxNodes(maxNodes int) {
	a.maxNodes = maxNodes
}

// FindPath finds a path between the nodes stored under the discretized
// start and goal. No nearest-node search is done here; snap arbitrary
// points with Graph.Nearest first.
func (a *AStarPathfinder) FindPath(graph *navigation.Graph, start, goal core.Vector2D) ([]core.Vector2D, error) {
	startNode, ok := graph.NodeAt(start)
	if !ok {
		return nil, fmt.Errorf("start %v: %w", start, core.ErrUnwalkableEndpoint)
	}
	goalNode, ok := graph.NodeAt(goal)
	if !ok {
		return nil, fmt.Errorf("goal %v: %w", goal, core.ErrUnwalkableEndpoint)
	}

	nodes, err := a.FindNodePath(graph, startNode, goalNode)
	if err != nil {
		return nil, err
	}
	return Positions(nodes), nil
}

// FindNodePath runs A* between two nodes of graph. Search state on every
// node is reset first, so calls are independent of each other.
func (a *AStarPathfinder) FindNodePath(graph *navigation.Graph, start, goal *navigation.Node) ([]*navigation.Node, error) {
	graph.ResetSearch()

	openSet := &NodePriorityQueue{}
	heap.Init(openSet)

	start.G = 0
	start.H = a.heuristic(start.Position(), goal.Position())
	heap.Push(openSet, start)

	nodesExplored := 0

	for openSet.Len() > 0 {
		if a.maxNodes > 0 && nodesExplored >= a.maxNodes {
			return nil, fmt.Errorf("search limit of %d nodes reached: %w", a.maxNodes, core.ErrNoPath)
		}

		current := heap.Pop(openSet).(*navigation.Node)
		current.Closed = true
		nodesExplored++

		if current == goal {
			return reconstructPath(current), nil
		}

		for _, neighbor := range current.Connections() {
			if neighbor.Closed {
				continue
			}
			if a.filter != nil && !a.filter(current, neighbor) {
				continue
			}

			tentativeG := current.G + core.Distance(current.Position(), neighbor.Position())
			if tentativeG >= neighbor.G {
				continue
			}

			neighbor.Parent = current
			neighbor.G = tentativeG
			neighbor.H = a.heuristic(neighbor.Position(), goal.Position())
			openSet.Update(neighbor)
		}
	}

	return nil, fmt.Errorf("from %v to %v (explored %d nodes): %w",
		start.Position(), goal.Position(), nodesExplored, core.ErrNoPath)
}

// Positions maps nodes to their world positions
func Positions(nodes []*navigation.Node) []core.Vector2D {
	path := make([]core.Vector2D, len(nodes))
	for i, n := range nodes {
		path[i] = n.Position()
	}
	return path
}

// reconstructPath walks parent links from goal back to start
func reconstructPath(goal *navigation.Node) []*navigation.Node {
	var path []*navigation.Node
	for current := goal; current != nil; current = current.Parent {
		path = append(path, current)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}
