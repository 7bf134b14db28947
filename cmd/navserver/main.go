// Command navserver runs the navigation engine in play mode. It loads a
// baked graph snapshot, reloads it whenever the file changes, ticks agents
// at a fixed rate and serves queries over a WebSocket at /ws.
package main

import (
	"flag"
	"log"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"gonav/internal/scenario"
	"gonav/internal/transport"
	"gonav/pkg/gonav"
)

type engineNavigator struct {
	*gonav.Engine
	tick *atomic.Uint64
}

func (n engineNavigator) Snapshot() transport.Snapshot {
	agents := n.Agents()
	snapshot := transport.Snapshot{
		Tick:      n.tick.Load(),
		Obstacles: n.ObstacleCount(),
		Agents:    make([]transport.AgentView, len(agents)),
	}
	for i, a := range agents {
		snapshot.Agents[i] = transport.AgentView{
			ID:       a.ID,
			Position: transport.ToPoint(a.Position),
			State:    a.State.String(),
			Path:     transport.ToPoints(a.Overlay),
			Selected: a.Selected,
		}
	}
	return snapshot
}

func main() {
	addr := flag.String("addr", ":8790", "listen address")
	graphPath := flag.String("graph", "navgraph.yaml", "baked graph snapshot")
	scenarioPath := flag.String("scenario", "", "scenario with region, obstacles and agents")
	configPath := flag.String("config", "", "engine config YAML file")
	tickRate := flag.Float64("tick-rate", 20, "simulation ticks per second")
	watch := flag.Bool("watch", true, "reload the graph when the snapshot changes")
	flag.Parse()

	config := gonav.DefaultConfig()
	if *configPath != "" {
		loaded, err := gonav.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("navserver: %v", err)
		}
		config = loaded
	}
	if !(*tickRate > 0) {
		log.Fatalf("navserver: tick-rate must be positive, got %v", *tickRate)
	}

	engine, err := gonav.NewEngine(config)
	if err != nil {
		log.Fatalf("navserver: %v", err)
	}
	if *scenarioPath != "" {
		s, err := scenario.Load(*scenarioPath)
		if err != nil {
			log.Fatalf("navserver: %v", err)
		}
		if err := engine.LoadScenario(s); err != nil {
			log.Fatalf("navserver: %v", err)
		}
	}
	if err := engine.LoadGraph(*graphPath); err != nil {
		log.Fatalf("navserver: %v", err)
	}
	log.Printf("navserver: loaded %s with %d nodes", *graphPath, engine.GetStats().NodeCount)

	if *watch {
		stop, err := watchGraph(engine, *graphPath)
		if err != nil {
			log.Fatalf("navserver: watch %s: %v", *graphPath, err)
		}
		defer stop()
	}

	var tick atomic.Uint64
	nav := engineNavigator{Engine: engine, tick: &tick}
	hub := transport.NewHub()
	go runTickLoop(engine, hub, nav, &tick, *tickRate)

	http.Handle("/ws", transport.NewHandler(nav, hub, log.Default()))

	log.Printf("navserver: listening on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("navserver: listen failed: %v", err)
	}
}

func runTickLoop(engine *gonav.Engine, hub *transport.Hub, nav engineNavigator, tick *atomic.Uint64, rate float64) {
	interval := time.Duration(float64(time.Second) / rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for now := range ticker.C {
		dt := now.Sub(last).Seconds()
		last = now

		for _, ev := range engine.Tick(dt) {
			if ev.Err != nil {
				log.Printf("navserver: agent %s: %v", ev.AgentID, ev.Err)
			}
		}
		tick.Add(1)

		if hub.Len() > 0 {
			hub.Broadcast(transport.Envelope{Type: transport.TypeSnapshot, Payload: nav.Snapshot()})
		}
	}
}

// watchGraph reloads the snapshot in place whenever it is rewritten
func watchGraph(engine *gonav.Engine, graphPath string) (func(), error) {
	target, err := filepath.Abs(graphPath)
	if err != nil {
		return nil, err
	}
	w, err := scenario.NewWatcher(filepath.Dir(target))
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case name, ok := <-w.Events:
				if !ok {
					return
				}
				if abs, err := filepath.Abs(name); err != nil || abs != target {
					continue
				}
				if err := engine.LoadGraph(target); err != nil {
					log.Printf("navserver: reload %s failed: %v", target, err)
					continue
				}
				log.Printf("navserver: reloaded %s with %d nodes", target, engine.GetStats().NodeCount)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("navserver: watch error: %v", err)
			}
		}
	}()

	return func() { _ = w.Close() }, nil
}
