package pathfinding

import (
	"container/heap"
	"math"

	"gonav/internal/core"
	"gonav/internal/navigation"
)

// FlowField holds exact shortest-path costs from every node of a graph to
// the nearest of a set of goals, computed with Dijkstra's algorithm. It
// keeps its own cost table and never touches node search state.
type FlowField struct {
	graph *navigation.Graph
	cost  []float64 // Indexed by node ID
	next  []int     // Neighbor ID one step closer to a goal, -1 at goals and unreachable nodes
}

// NewFlowField computes the field toward goals
func NewFlowField(graph *navigation.Graph, goals ...*navigation.Node) *FlowField {
	ff := &FlowField{
		graph: graph,
		cost:  make([]float64, graph.Len()),
		next:  make([]int, graph.Len()),
	}
	for i := range ff.cost {
		ff.cost[i] = math.Inf(1)
		ff.next[i] = -1
	}

	queue := &costQueue{}
	for _, goal := range goals {
		if goal == nil {
			continue
		}
		ff.cost[goal.ID()] = 0
		heap.Push(queue, costEntry{id: goal.ID(), cost: 0})
	}

	nodes := graph.Nodes()
	for queue.Len() > 0 {
		entry := heap.Pop(queue).(costEntry)
		if entry.cost > ff.cost[entry.id] {
			continue // stale entry
		}

		current := nodes[entry.id]
		for _, neighbor := range current.Connections() {
			cost := entry.cost + core.Distance(current.Position(), neighbor.Position())
			if cost < ff.cost[neighbor.ID()] {
				ff.cost[neighbor.ID()] = cost
				ff.next[neighbor.ID()] = current.ID()
				heap.Push(queue, costEntry{id: neighbor.ID(), cost: cost})
			}
		}
	}

	return ff
}

// DistanceField returns Dijkstra costs from goal to every node, indexed by
// node ID. Unreachable nodes cost +Inf.
func DistanceField(graph *navigation.Graph, goal *navigation.Node) []float64 {
	return NewFlowField(graph, goal).cost
}

// Cost returns the shortest-path cost from node to the nearest goal
func (ff *FlowField) Cost(node *navigation.Node) float64 {
	return ff.cost[node.ID()]
}

// Reachable reports whether node can reach any goal
func (ff *FlowField) Reachable(node *navigation.Node) bool {
	return !math.IsInf(ff.cost[node.ID()], 1)
}

// Next returns the neighbor one step closer to a goal
func (ff *FlowField) Next(node *navigation.Node) (*navigation.Node, bool) {
	id := ff.next[node.ID()]
	if id < 0 {
		return nil, false
	}
	return ff.graph.Nodes()[id], true
}

// Trace follows the field from node to its goal
func (ff *FlowField) Trace(node *navigation.Node) []core.Vector2D {
	if !ff.Reachable(node) {
		return nil
	}
	path := []core.Vector2D{node.Position()}
	for current, ok := ff.Next(node); ok; current, ok = ff.Next(current) {
		path = append(path, current.Position())
	}
	return path
}

type costEntry struct {
	id   int
	cost float64
}

type costQueue []costEntry

func (q costQueue) Len() int { return len(q) }

func (q costQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].id < q[j].id
}

func (q costQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *costQueue) Push(x interface{}) { *q = append(*q, x.(costEntry)) }

func (q *costQueue) Pop() interface{} {
	old := *q
	n := len(old)
	entry := old[n-1]
	*q = old[:n-1]
	return entry
}
