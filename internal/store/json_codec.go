package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/anthropics/codegraph/internal/model"
)

// textEdge and textGraph give §6's literal on-disk text shape
// ({"nodes": [...], "edges": [...], "file_index": {...}}) a concrete Go
// form, independent of model.Graph's in-memory adjacency caches.
type textEdge struct {
	CallerID string `json:"caller_id"`
	CalleeID string `json:"callee_id"`
	SiteID   string `json:"site_id"`
}

type textGraph struct {
	Nodes     []*model.Entity                        `json:"nodes"`
	CallSites []*model.CallSite                      `json:"call_sites"`
	Edges     []textEdge                              `json:"edges"`
	FileIndex map[string]*model.FileContribution      `json:"file_index"`
}

// SaveText serializes a graph to the human-readable JSON backend.
func SaveText(path string, g *model.Graph) error {
	tg := textGraph{
		Nodes:     sortedEntities(g),
		CallSites: sortedCallSites(g),
		FileIndex: g.FileIndex,
	}
	for ek := range g.Edges {
		tg.Edges = append(tg.Edges, textEdge{CallerID: ek.CallerID, CalleeID: ek.CalleeID, SiteID: ek.SiteID})
	}
	sort.Slice(tg.Edges, func(i, j int) bool {
		if tg.Edges[i].CallerID != tg.Edges[j].CallerID {
			return tg.Edges[i].CallerID < tg.Edges[j].CallerID
		}
		if tg.Edges[i].CalleeID != tg.Edges[j].CalleeID {
			return tg.Edges[i].CalleeID < tg.Edges[j].CalleeID
		}
		return tg.Edges[i].SiteID < tg.Edges[j].SiteID
	})

	data, err := json.MarshalIndent(tg, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal graph: %w", err)
	}
	return atomicWrite(path, data)
}

// LoadText loads a graph previously saved with SaveText. A missing file
// yields an empty graph (first build for this project).
func LoadText(path string) (*model.Graph, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewGraph(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read graph: %w", err)
	}

	var tg textGraph
	if err := json.Unmarshal(data, &tg); err != nil {
		return nil, fmt.Errorf("store: parse graph: %w", err)
	}

	g := model.NewGraph()
	for _, e := range tg.Nodes {
		g.Entities[e.ID] = e
	}
	for _, cs := range tg.CallSites {
		g.CallSites[cs.ID] = cs
	}
	for _, e := range tg.Edges {
		g.Edges[model.EdgeKey{CallerID: e.CallerID, CalleeID: e.CalleeID, SiteID: e.SiteID}] = struct{}{}
	}
	if tg.FileIndex != nil {
		g.FileIndex = tg.FileIndex
	}
	g.Reindex()
	return g, nil
}

func sortedEntities(g *model.Graph) []*model.Entity {
	out := make([]*model.Entity, 0, len(g.Entities))
	for _, e := range g.Entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedCallSites(g *model.Graph) []*model.CallSite {
	out := make([]*model.CallSite, 0, len(g.CallSites))
	for _, cs := range g.CallSites {
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
