// Package graphbuild implements the graph builder (C3): merging one
// file's normalized entities and call sites into the project-wide graph,
// then resolving call sites to edges by best-effort syntactic matching.
package graphbuild

import (
	"strings"

	"github.com/anthropics/codegraph/internal/model"
)

// MergeFile applies the merge protocol for one file: drop its previous
// contribution, insert the new entities and call sites, then attempt to
// resolve every call site (old and new survivors included would be
// wrong — only the call sites just inserted are resolved here, since
// RemoveFile already dropped the previous ones along with their edges).
func MergeFile(g *model.Graph, filePath string, entities []model.Entity, callSites []model.CallSite) {
	g.RemoveFile(filePath)

	entityIDs := make([]string, 0, len(entities))
	for i := range entities {
		e := entities[i]
		g.AddEntity(&e)
		entityIDs = append(entityIDs, e.ID)
	}

	callSiteIDs := make([]string, 0, len(callSites))
	for i := range callSites {
		cs := callSites[i]
		g.AddCallSite(&cs)
		callSiteIDs = append(callSiteIDs, cs.ID)
		resolve(g, &cs)
	}

	g.FileIndex[filePath] = &model.FileContribution{EntityIDs: entityIDs, CallSiteIDs: callSiteIDs}
}

// resolve implements the best-effort syntactic call resolution rules:
// collect every entity sharing the callee's name, then narrow by
// receiver type or same-namespace proximity to the caller. Ties are
// kept, not broken: every surviving candidate gets its own edge.
func resolve(g *model.Graph, cs *model.CallSite) {
	candidates := g.EntitiesByName(cs.CalleeName)
	if len(candidates) == 0 {
		return
	}

	caller, ok := g.Entities[cs.CallerEntityID]
	if !ok {
		return
	}

	var survivors []*model.Entity
	if cs.ReceiverType != "" {
		survivors = filterByReceiver(g, candidates, cs.ReceiverType)
		if len(survivors) == 0 {
			// Unknown/complex receiver: fall back to name-only matching
			// rather than dropping the call site unresolved (Open
			// Question #1).
			survivors = candidates
		}
	} else {
		survivors = filterBySameScope(candidates, caller)
		if len(survivors) == 0 {
			survivors = candidates
		}
	}

	for _, callee := range survivors {
		g.AddEdge(cs.CallerEntityID, callee.ID, cs.ID)
	}
}

// filterByReceiver prefers candidates whose parent entity's short name
// matches receiverType, or whose namespace ends with its trailing
// segment (covers qualified receivers like "Ns::X" or "pkg.Type").
func filterByReceiver(g *model.Graph, candidates []*model.Entity, receiverType string) []*model.Entity {
	trailing := lastSegment(receiverType)
	var out []*model.Entity
	for _, c := range candidates {
		if c.ParentEntityID != "" {
			if parent, ok := g.Entities[c.ParentEntityID]; ok && parent.Name == trailing {
				out = append(out, c)
				continue
			}
		}
		if c.Namespace != "" && lastSegment(c.Namespace) == trailing {
			out = append(out, c)
		}
	}
	return out
}

// filterBySameScope prefers candidates in the same file, or sharing a
// namespace prefix with the caller, when no receiver type is available.
func filterBySameScope(candidates []*model.Entity, caller *model.Entity) []*model.Entity {
	var sameFile, sameNamespace []*model.Entity
	for _, c := range candidates {
		if c.FilePath == caller.FilePath {
			sameFile = append(sameFile, c)
		}
		if caller.Namespace != "" && c.Namespace != "" && strings.HasPrefix(c.Namespace, caller.Namespace) {
			sameNamespace = append(sameNamespace, c)
		}
	}
	if len(sameFile) > 0 {
		return sameFile
	}
	return sameNamespace
}

func lastSegment(qualified string) string {
	if i := strings.LastIndex(qualified, "::"); i >= 0 {
		return qualified[i+2:]
	}
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
