package navigation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"gonav/internal/core"
)

// GraphData is the persisted form of a graph. Connections are indices into
// Nodes; links are made symmetric again on load.
type GraphData struct {
	GridSpacing float64    `yaml:"grid_spacing" json:"grid_spacing"`
	Bounds      BoundsData `yaml:"bounds" json:"bounds"`
	Nodes       []NodeData `yaml:"nodes" json:"nodes"`
}

type BoundsData struct {
	Min PointData `yaml:"min" json:"min"`
	Max PointData `yaml:"max" json:"max"`
}

type PointData struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

type NodeData struct {
	Position    PointData `yaml:"position" json:"position"`
	Connections []int     `yaml:"connections,flow" json:"connections"`
}

// Format selects the snapshot encoding
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFor picks the encoding from a file extension; anything other than
// .json is YAML
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Snapshot converts a graph to its persisted form
func Snapshot(graph *Graph) GraphData {
	data := GraphData{
		GridSpacing: graph.spacing,
		Bounds: BoundsData{
			Min: toPoint(graph.bounds.Min),
			Max: toPoint(graph.bounds.Max),
		},
		Nodes: make([]NodeData, len(graph.order)),
	}

	for i, n := range graph.order {
		links := make([]int, len(n.connections))
		for j, c := range n.connections {
			links[j] = c.id
		}
		data.Nodes[i] = NodeData{Position: toPoint(n.position), Connections: links}
	}

	return data
}

// FromData rebuilds a graph verbatim from its persisted form
func FromData(data GraphData) (*Graph, error) {
	if !(data.GridSpacing > 0) || math.IsInf(data.GridSpacing, 0) {
		return nil, fmt.Errorf("%w: grid_spacing %v", core.ErrCorruptGraph, data.GridSpacing)
	}

	if !finite(data.Bounds.Min) || !finite(data.Bounds.Max) {
		return nil, fmt.Errorf("%w: bounds %v", core.ErrCorruptGraph, data.Bounds)
	}

	bounds := core.AABB{Min: fromPoint(data.Bounds.Min), Max: fromPoint(data.Bounds.Max)}
	graph, err := NewGraph(data.GridSpacing, bounds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorruptGraph, err)
	}

	for i, nd := range data.Nodes {
		if !finite(nd.Position) {
			return nil, fmt.Errorf("%w: node %d at non-finite position %v", core.ErrCorruptGraph, i, nd.Position)
		}
		if _, err := graph.Insert(fromPoint(nd.Position)); err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", core.ErrCorruptGraph, i, err)
		}
	}

	for i, nd := range data.Nodes {
		node := graph.order[i]
		for _, j := range nd.Connections {
			if j < 0 || j >= len(graph.order) {
				return nil, fmt.Errorf("%w: node %d links to missing node %d", core.ErrCorruptGraph, i, j)
			}
			if j == i {
				return nil, fmt.Errorf("%w: node %d links to itself", core.ErrCorruptGraph, i)
			}
			node.AddConnection(graph.order[j])
		}
	}

	return graph, nil
}

// Encode writes the graph snapshot to w
func Encode(w io.Writer, graph *Graph, format Format) error {
	data := Snapshot(graph)

	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// Decode reads a graph snapshot from r
func Decode(r io.Reader, format Format) (*Graph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var data GraphData
	if format == FormatJSON {
		err = json.Unmarshal(raw, &data)
	} else {
		err = yaml.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorruptGraph, err)
	}

	return FromData(data)
}

// SaveFile writes the graph to path, choosing the format by extension
func SaveFile(path string, graph *Graph) error {
	var buf bytes.Buffer
	if err := Encode(&buf, graph, FormatFor(path)); err != nil {
		return fmt.Errorf("navigation: encode %s: %w", path, err)
	}
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("navigation: write %s: %w", path, err)
	}
	return nil
}

// writeAtomic replaces path in one rename so readers never see a partial
// snapshot. The temp file lives next to path and has a non-data extension.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile reads a graph written by SaveFile
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("navigation: open %s: %w", path, err)
	}
	defer f.Close()

	graph, err := Decode(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("navigation: load %s: %w", path, err)
	}
	return graph, nil
}

func finite(p PointData) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func toPoint(v core.Vector2D) PointData { return PointData{X: v.X, Y: v.Y} }

func fromPoint(p PointData) core.Vector2D { return core.Vector2D{X: p.X, Y: p.Y} }
