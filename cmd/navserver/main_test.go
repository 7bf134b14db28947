package main

import (
	"path/filepath"
	"testing"
	"time"

	"gonav/internal/geometry"
	"gonav/internal/navigation"
	"gonav/pkg/gonav"
)

func TestWatchGraphReloadsRewrittenSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navgraph.yaml")
	if err := navigation.SaveFile(path, corridorGraph(t, 4)); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	engine, err := gonav.NewEngine(gonav.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if err := engine.LoadGraph(path); err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}

	stop, err := watchGraph(engine, path)
	if err != nil {
		t.Fatalf("watchGraph failed: %v", err)
	}
	defer stop()

	for round, length := range []int{9, 4, 12, 6} {
		want := corridorGraph(t, length)
		if err := navigation.SaveFile(path, want); err != nil {
			t.Fatalf("Round %d: SaveFile failed: %v", round, err)
		}
		waitForNodes(t, engine, want.Len(), round)
	}

	// A burst of rewrites settles on the last one
	for _, length := range []int{3, 8, 5} {
		if err := navigation.SaveFile(path, corridorGraph(t, length)); err != nil {
			t.Fatalf("SaveFile failed: %v", err)
		}
	}
	waitForNodes(t, engine, corridorGraph(t, 5).Len(), -1)
}

// Helper functions

func corridorGraph(t *testing.T, length int) *navigation.Graph {
	t.Helper()
	region := geometry.NewRect(-1, -1, float64(length), 1)
	graph, err := navigation.BuildGraph(region, nil, 1, 0.25)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}
	return graph
}

func waitForNodes(t *testing.T, engine *gonav.Engine, want, round int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if engine.GetStats().NodeCount == want {
			// Stay put once reached
			time.Sleep(3 * 100 * time.Millisecond)
			if got := engine.GetStats().NodeCount; got != want {
				t.Fatalf("Round %d: engine moved on to %d nodes, want %d", round, got, want)
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("Round %d: engine has %d nodes, snapshot has %d", round, engine.GetStats().NodeCount, want)
}
