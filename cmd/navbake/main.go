// Command navbake builds a navigation graph from a scenario file and writes
// the snapshot that navserver loads in play mode.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gonav/internal/navigation"
	"gonav/internal/pathfinding"
	"gonav/internal/scenario"
	"gonav/pkg/gonav"
)

func main() {
	scenarioPath := flag.String("scenario", "", "scenario YAML file")
	configPath := flag.String("config", "", "engine config YAML file (defaults when empty)")
	out := flag.String("out", "navgraph.yaml", "output snapshot (.yaml or .json)")
	spacing := flag.Float64("spacing", 0, "override grid spacing")
	margin := flag.Float64("margin", -1, "override safety margin")
	debug := flag.Bool("debug", false, "log build details")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: navbake -scenario level.yaml [-out navgraph.yaml]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	config := gonav.DefaultConfig()
	if *configPath != "" {
		loaded, err := gonav.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("navbake: %v", err)
		}
		config = loaded
	}
	if *spacing > 0 {
		config.Grid.Spacing = *spacing
	}
	if *margin >= 0 {
		config.Grid.SafetyMargin = *margin
	}
	config.Debug = config.Debug || *debug

	s, err := scenario.Load(*scenarioPath)
	if err != nil {
		log.Fatalf("navbake: %v", err)
	}
	if s.HasMovingObstacles() {
		log.Printf("navbake: moving obstacles are baked at their start positions")
	}

	engine, err := gonav.NewEngine(config)
	if err != nil {
		log.Fatalf("navbake: %v", err)
	}
	if err := engine.LoadScenario(s); err != nil {
		log.Fatalf("navbake: %v", err)
	}

	stats, err := engine.Build()
	if err != nil {
		log.Fatalf("navbake: build failed: %v", err)
	}
	if stats.Nodes == 0 {
		log.Fatalf("navbake: no walkable nodes in %s", *scenarioPath)
	}

	if err := engine.SaveGraph(*out); err != nil {
		log.Fatalf("navbake: %v", err)
	}

	fmt.Printf("scenario:    %s\n", s.Name)
	fmt.Printf("candidates:  %d\n", stats.Candidates)
	fmt.Printf("nodes:       %d (%d probed, %d isolated removed)\n", stats.Nodes, stats.Probed, stats.Removed)
	fmt.Printf("edges:       %d\n", stats.Edges)
	fmt.Printf("components:  %d\n", navigation.Components(engine.Graph()))
	fmt.Printf("written:     %s\n", *out)

	reportSpawns(engine.Graph(), s, config.Grid.SearchRadius)
}

// reportSpawns prints how much of the graph each agent can reach from where
// it starts
func reportSpawns(graph *navigation.Graph, s *scenario.Scenario, radius int) {
	for _, a := range s.Agents {
		spawn, ok := graph.Nearest(a.Position.Vector(), radius, nil)
		if !ok {
			log.Printf("navbake: agent %s spawns off the graph at (%.2f, %.2f)", a.Name, a.Position.X, a.Position.Y)
			continue
		}

		field := pathfinding.NewFlowField(graph, spawn)
		reachable := 0
		for _, n := range graph.Nodes() {
			if field.Reachable(n) {
				reachable++
			}
		}
		fmt.Printf("agent %-8s reaches %d/%d nodes\n", a.Name, reachable, graph.Len())
	}
}
