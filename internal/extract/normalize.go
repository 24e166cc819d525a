package extract

import (
	"strings"

	"github.com/google/uuid"

	"github.com/anthropics/codegraph/internal/model"
)

// namespaceSeparator returns the language-appropriate scope separator
// used when flattening a RawEntity's Namespace chain (§4.2).
func namespaceSeparator(language string) string {
	switch language {
	case "cpp", "rust":
		return "::"
	default: // java, python, typescript, javascript, c
		return "."
	}
}

// Diagnostics counts non-fatal normalization failures (§4.2 "Failure").
type Diagnostics struct {
	DroppedEntities int
	DroppedCalls    int
}

// Normalize is C2: it converts one file's raw symbol stream into the
// uniform Entity / CallSite records of the shared data model, assigning
// every entity a fresh random id (ids need not be stable across builds).
func Normalize(raw *RawFile) ([]model.Entity, []model.CallSite, Diagnostics) {
	var diag Diagnostics
	sep := namespaceSeparator(raw.Language)

	entities := make([]model.Entity, 0, len(raw.Entities))
	ids := make([]string, len(raw.Entities))
	byName := make(map[string][]int) // name -> indices of class/struct/interface/module entities in this file

	for i, re := range raw.Entities {
		if re.Name == "" || !recognizedKind(re.Kind) {
			diag.DroppedEntities++
			ids[i] = ""
			continue
		}
		if re.LineStart > re.LineEnd {
			re.LineEnd = re.LineStart
		}

		id := uuid.NewString()
		ids[i] = id

		entities = append(entities, model.Entity{
			ID:            id,
			Name:          re.Name,
			Kind:          re.Kind,
			FilePath:      raw.FilePath,
			LineStart:     re.LineStart,
			LineEnd:       re.LineEnd,
			Language:      raw.Language,
			Namespace:     strings.Join(re.Namespace, sep),
			Parameters:    re.Parameters,
			ReturnType:    re.ReturnType,
			SourceSnippet: re.Snippet,
			Annotations:   re.Annotations,
		})

		if isScopeKind(re.Kind) {
			byName[re.Name] = append(byName[re.Name], len(entities)-1)
		}
	}

	// Second pass: attach parent_entity_id by same-file scope membership.
	entityIdx := 0
	for i, re := range raw.Entities {
		if ids[i] == "" {
			continue
		}
		if re.ParentScopeName != "" {
			if cands, ok := byName[re.ParentScopeName]; ok && len(cands) > 0 {
				entities[entityIdx].ParentEntityID = entities[cands[0]].ID
			}
		}
		entityIdx++
	}

	callSites := make([]model.CallSite, 0, len(raw.Calls))
	for _, rc := range raw.Calls {
		if rc.CallerIndex < 0 || rc.CallerIndex >= len(ids) || ids[rc.CallerIndex] == "" {
			diag.DroppedCalls++
			continue
		}
		callSites = append(callSites, model.CallSite{
			ID:             uuid.NewString(),
			CallerEntityID: ids[rc.CallerIndex],
			CalleeName:     rc.CalleeName,
			ReceiverType:   rc.ReceiverType,
			FilePath:       raw.FilePath,
			LineNumber:     rc.Line,
		})
	}

	return entities, callSites, diag
}

func recognizedKind(k model.Kind) bool {
	switch k {
	case model.KindFunction, model.KindMethod, model.KindClass, model.KindStruct,
		model.KindInterface, model.KindModule, model.KindOther:
		return true
	default:
		return false
	}
}

func isScopeKind(k model.Kind) bool {
	switch k {
	case model.KindClass, model.KindStruct, model.KindInterface, model.KindModule:
		return true
	default:
		return false
	}
}
