package pathfinding

import (
	"container/heap"

	"gonav/internal/navigation"
)

// NodePriorityQueue implements a min-heap of navigation nodes ordered by F.
// Ties prefer the lower H, then the lower node ID, so the pop order is
// fully determined by the graph.
type NodePriorityQueue []*navigation.Node

func (pq NodePriorityQueue) Len() int { return len(pq) }

func (pq NodePriorityQueue) Less(i, j int) bool {
	fi, fj := pq[i].F(), pq[j].F()
	if fi != fj {
		return fi < fj
	}
	if pq[i].H != pq[j].H {
		return pq[i].H < pq[j].H
	}
	return pq[i].ID() < pq[j].ID()
}

func (pq NodePriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].QueueIndex = i
	pq[j].QueueIndex = j
}

func (pq *NodePriorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*navigation.Node)
	node.QueueIndex = n
	*pq = append(*pq, node)
}

func (pq *NodePriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil       // avoid memory leak
	node.QueueIndex = -1 // for safety
	*pq = old[0 : n-1]
	return node
}

// Update re-establishes the heap invariant after node's cost changed,
// pushing it when it is not queued
func (pq *NodePriorityQueue) Update(node *navigation.Node) {
	if node.QueueIndex < 0 {
		heap.Push(pq, node)
		return
	}
	heap.Fix(pq, node.QueueIndex)
}
