package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/anthropics/codegraph/internal/model"
)

// binaryMagic/binaryVersion guard against loading a file written by an
// incompatible version of the binary codec.
const (
	binaryMagic   uint32 = 0x43474231 // "CGB1"
	binaryVersion uint32 = 1
)

// SaveBinary serializes a graph to the compact length-prefixed binary
// backend: a flat sequence of length-prefixed string/int fields, no
// reflection, no code generation (§1.2).
func SaveBinary(path string, g *model.Graph) error {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, binaryMagic); err != nil {
		return fmt.Errorf("store: write magic: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, binaryVersion); err != nil {
		return fmt.Errorf("store: write version: %w", err)
	}

	entities := sortedEntities(g)
	writeUint32(&buf, uint32(len(entities)))
	for _, e := range entities {
		writeEntity(&buf, e)
	}

	sites := sortedCallSites(g)
	writeUint32(&buf, uint32(len(sites)))
	for _, cs := range sites {
		writeCallSite(&buf, cs)
	}

	edges := make([]model.EdgeKey, 0, len(g.Edges))
	for ek := range g.Edges {
		edges = append(edges, ek)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].CallerID != edges[j].CallerID {
			return edges[i].CallerID < edges[j].CallerID
		}
		if edges[i].CalleeID != edges[j].CalleeID {
			return edges[i].CalleeID < edges[j].CalleeID
		}
		return edges[i].SiteID < edges[j].SiteID
	})
	writeUint32(&buf, uint32(len(edges)))
	for _, ek := range edges {
		writeString(&buf, ek.CallerID)
		writeString(&buf, ek.CalleeID)
		writeString(&buf, ek.SiteID)
	}

	paths := make([]string, 0, len(g.FileIndex))
	for path := range g.FileIndex {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	writeUint32(&buf, uint32(len(paths)))
	for _, path := range paths {
		contrib := g.FileIndex[path]
		writeString(&buf, path)
		writeUint32(&buf, uint32(len(contrib.EntityIDs)))
		for _, id := range contrib.EntityIDs {
			writeString(&buf, id)
		}
		writeUint32(&buf, uint32(len(contrib.CallSiteIDs)))
		for _, id := range contrib.CallSiteIDs {
			writeString(&buf, id)
		}
	}

	return atomicWrite(path, buf.Bytes())
}

// LoadBinary loads a graph previously saved with SaveBinary. A missing
// file yields an empty graph (first build for this project).
func LoadBinary(path string) (*model.Graph, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewGraph(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read graph: %w", err)
	}

	r := bytes.NewReader(data)
	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("store: read magic: %w", err)
	}
	if magic != binaryMagic {
		return nil, fmt.Errorf("store: bad binary graph magic %x", magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("store: read version: %w", err)
	}
	if version != binaryVersion {
		return nil, fmt.Errorf("store: unsupported binary graph version %d", version)
	}

	g := model.NewGraph()

	entityCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < entityCount; i++ {
		e, err := readEntity(r)
		if err != nil {
			return nil, err
		}
		g.Entities[e.ID] = e
	}

	siteCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < siteCount; i++ {
		cs, err := readCallSite(r)
		if err != nil {
			return nil, err
		}
		g.CallSites[cs.ID] = cs
	}

	edgeCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < edgeCount; i++ {
		callerID, err := readString(r)
		if err != nil {
			return nil, err
		}
		calleeID, err := readString(r)
		if err != nil {
			return nil, err
		}
		siteID, err := readString(r)
		if err != nil {
			return nil, err
		}
		g.Edges[model.EdgeKey{CallerID: callerID, CalleeID: calleeID, SiteID: siteID}] = struct{}{}
	}

	fileCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	g.FileIndex = make(map[string]*model.FileContribution, fileCount)
	for i := uint32(0); i < fileCount; i++ {
		path, err := readString(r)
		if err != nil {
			return nil, err
		}
		contrib := &model.FileContribution{}
		entIDCount, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < entIDCount; j++ {
			id, err := readString(r)
			if err != nil {
				return nil, err
			}
			contrib.EntityIDs = append(contrib.EntityIDs, id)
		}
		siteIDCount, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < siteIDCount; j++ {
			id, err := readString(r)
			if err != nil {
				return nil, err
			}
			contrib.CallSiteIDs = append(contrib.CallSiteIDs, id)
		}
		g.FileIndex[path] = contrib
	}

	g.Reindex()
	return g, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, fmt.Errorf("store: read uint32: %w", err)
	}
	return v, nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("store: read string body: %w", err)
	}
	return string(b), nil
}

func writeEntity(buf *bytes.Buffer, e *model.Entity) {
	writeString(buf, e.ID)
	writeString(buf, e.Name)
	writeString(buf, string(e.Kind))
	writeString(buf, e.FilePath)
	writeUint32(buf, uint32(e.LineStart))
	writeUint32(buf, uint32(e.LineEnd))
	writeString(buf, e.Language)
	writeString(buf, e.Namespace)
	writeString(buf, e.ParentEntityID)
	writeString(buf, e.ReturnType)
	writeString(buf, e.SourceSnippet)

	writeUint32(buf, uint32(len(e.Parameters)))
	for _, p := range e.Parameters {
		writeString(buf, p.Name)
		writeString(buf, p.TypeName)
	}

	writeUint32(buf, uint32(len(e.Annotations)))
	for _, a := range e.Annotations {
		writeString(buf, a)
	}
}

func readEntity(r io.Reader) (*model.Entity, error) {
	e := &model.Entity{}
	var err error
	if e.ID, err = readString(r); err != nil {
		return nil, err
	}
	if e.Name, err = readString(r); err != nil {
		return nil, err
	}
	kind, err := readString(r)
	if err != nil {
		return nil, err
	}
	e.Kind = model.Kind(kind)
	if e.FilePath, err = readString(r); err != nil {
		return nil, err
	}
	lineStart, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	e.LineStart = int(lineStart)
	lineEnd, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	e.LineEnd = int(lineEnd)
	if e.Language, err = readString(r); err != nil {
		return nil, err
	}
	if e.Namespace, err = readString(r); err != nil {
		return nil, err
	}
	if e.ParentEntityID, err = readString(r); err != nil {
		return nil, err
	}
	if e.ReturnType, err = readString(r); err != nil {
		return nil, err
	}
	if e.SourceSnippet, err = readString(r); err != nil {
		return nil, err
	}

	paramCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < paramCount; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		typeName, err := readString(r)
		if err != nil {
			return nil, err
		}
		e.Parameters = append(e.Parameters, model.Param{Name: name, TypeName: typeName})
	}

	annCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < annCount; i++ {
		a, err := readString(r)
		if err != nil {
			return nil, err
		}
		e.Annotations = append(e.Annotations, a)
	}

	return e, nil
}

func writeCallSite(buf *bytes.Buffer, cs *model.CallSite) {
	writeString(buf, cs.ID)
	writeString(buf, cs.CallerEntityID)
	writeString(buf, cs.CalleeName)
	writeString(buf, cs.ReceiverType)
	writeString(buf, cs.FilePath)
	writeUint32(buf, uint32(cs.LineNumber))
}

func readCallSite(r io.Reader) (*model.CallSite, error) {
	cs := &model.CallSite{}
	var err error
	if cs.ID, err = readString(r); err != nil {
		return nil, err
	}
	if cs.CallerEntityID, err = readString(r); err != nil {
		return nil, err
	}
	if cs.CalleeName, err = readString(r); err != nil {
		return nil, err
	}
	if cs.ReceiverType, err = readString(r); err != nil {
		return nil, err
	}
	if cs.FilePath, err = readString(r); err != nil {
		return nil, err
	}
	line, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	cs.LineNumber = int(line)
	return cs, nil
}
