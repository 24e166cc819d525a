// Package httpapi exposes codegraph's command surface (§6) as a thin
// net/http JSON service: build, init, the query_* family, investigate,
// and draw_call_graph, plus a health check. Routing and request
// decoding are the only concerns here; every operation itself delegates
// to internal/buildengine and internal/store.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anthropics/codegraph/internal/buildengine"
	"github.com/anthropics/codegraph/internal/config"
	"github.com/anthropics/codegraph/internal/graph"
	"github.com/anthropics/codegraph/internal/model"
	"github.com/anthropics/codegraph/internal/store"
)

// Server implements http.Handler for codegraph's JSON API. It keeps one
// hydrated ProjectStore per project_id alive in memory across requests,
// reopening it from disk only the first time a project is touched or
// after a build (§5 "Shared resources").
type Server struct {
	logger *zap.SugaredLogger
	cache  *store.QueryCache

	mu       sync.Mutex
	projects map[string]*store.ProjectStore
	configs  map[string]*config.Config

	mux *http.ServeMux
}

// NewServer builds a Server. defaultCfg sizes the shared query cache
// (TTL and entry bound) and is otherwise unused: per-request project_dir
// values are resolved against their own .codegraph/config.yaml via
// internal/config.Load, and a project without one gets
// config.DefaultConfig(), not defaultCfg.
func NewServer(defaultCfg *config.Config, logger *zap.SugaredLogger) (*Server, error) {
	cache, err := store.NewQueryCache(defaultCfg.CacheTTLS, defaultCfg.MaxCacheEntries)
	if err != nil {
		return nil, fmt.Errorf("httpapi: init query cache: %w", err)
	}

	s := &Server{
		logger:   logger,
		cache:    cache,
		projects: make(map[string]*store.ProjectStore),
		configs:  make(map[string]*config.Config),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/build", s.handleBuild)
	mux.HandleFunc("/init", s.handleInit)
	mux.HandleFunc("/query/call-graph", s.handleQueryCallGraph)
	mux.HandleFunc("/query/hierarchical-graph", s.handleQueryHierarchicalGraph)
	mux.HandleFunc("/query/snippet", s.handleQuerySnippet)
	mux.HandleFunc("/query/skeleton", s.handleQuerySkeleton)
	mux.HandleFunc("/investigate", s.handleInvestigate)
	mux.HandleFunc("/draw-call-graph", s.handleDrawCallGraph)
	s.mux = mux

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close releases the server's query cache.
func (s *Server) Close() error {
	return s.cache.Close()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// projectConfig loads (and memoizes) the config governing projectDir.
func (s *Server) projectConfig(projectDir string) (*config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.configs[projectDir]; ok {
		return cfg, nil
	}
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	s.configs[projectDir] = cfg
	return cfg, nil
}

// openProject resolves projectDir's project_id and returns its
// in-memory ProjectStore, reusing an already-open handle when present.
func (s *Server) openProject(projectDir string) (*store.ProjectStore, *store.ProjectMeta, error) {
	cfg, err := s.projectConfig(projectDir)
	if err != nil {
		return nil, nil, err
	}

	reg, err := store.OpenRegistry(cfg.StateRoot)
	if err != nil {
		return nil, nil, err
	}
	meta, err := reg.Resolve(projectDir)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ps, ok := s.projects[meta.ProjectID]; ok {
		return ps, meta, nil
	}

	backend := store.BackendText
	if cfg.Serialization == "binary" {
		backend = store.BackendBinary
	}
	ps, err := store.Open(cfg.StateRoot, meta.ProjectID, backend)
	if err != nil {
		return nil, nil, err
	}
	s.projects[meta.ProjectID] = ps
	return ps, meta, nil
}

// invalidateProject drops any in-memory handle and cached query results
// for a project, forcing the next request to re-hydrate from disk. Used
// after a build changes the persisted graph out from under a stale
// in-memory copy.
func (s *Server) invalidateProject(projectID string) {
	s.mu.Lock()
	delete(s.projects, projectID)
	s.mu.Unlock()
	s.cache.InvalidateProject(projectID)
}

// --- /build ---

type buildRequest struct {
	ProjectDir      string   `json:"project_dir"`
	ForceRebuild    bool     `json:"force_rebuild"`
	ExcludePatterns []string `json:"exclude_patterns"`
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectDir == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("project_dir is required"))
		return
	}

	cfg, err := s.projectConfig(req.ProjectDir)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), buildTimeout(cfg))
	defer cancel()

	stats, err := buildengine.Build(ctx, req.ProjectDir, cfg, req.ForceRebuild, req.ExcludePatterns, s.logger)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.invalidateProject(stats.ProjectID)
	writeJSON(w, http.StatusOK, stats)
}

func buildTimeout(cfg *config.Config) time.Duration {
	// A whole-project build has no hard deadline in §4.4, but an HTTP
	// request needs one; size it generously off the per-file timeout.
	return time.Duration(cfg.PerFileParseTimeoutS) * time.Second * 200
}

// --- /init ---

type initRequest struct {
	ProjectDir string `json:"project_dir"`
}

type initResponse struct {
	ProjectID      string      `json:"project_id"`
	ProjectDir     string      `json:"project_dir"`
	FirstParsedAt  time.Time   `json:"first_parsed_at"`
	LastParsedAt   time.Time   `json:"last_parsed_at"`
	Stats          model.Stats `json:"stats"`
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectDir == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("project_dir is required"))
		return
	}

	ps, meta, err := s.openProject(req.ProjectDir)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, initResponse{
		ProjectID:     meta.ProjectID,
		ProjectDir:    meta.ProjectDir,
		FirstParsedAt: meta.FirstParsedAt,
		LastParsedAt:  meta.LastParsedAt,
		Stats:         ps.GetStats(),
	})
}

// --- /query/call-graph ---

type callGraphRequest struct {
	ProjectDir   string `json:"project_dir"`
	FilePath     string `json:"file_path"`
	FunctionName string `json:"function_name"`
	MaxDepth     int    `json:"max_depth"`
}

type callGraphEntity struct {
	Entity  *model.Entity           `json:"entity"`
	Callers []*model.Entity         `json:"callers"`
	Callees []*model.Entity         `json:"callees"`
	Tree    *model.HierarchicalNode `json:"call_tree,omitempty"`
}

func (s *Server) handleQueryCallGraph(w http.ResponseWriter, r *http.Request) {
	var req callGraphRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectDir == "" || req.FilePath == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("project_dir and file_path are required"))
		return
	}

	ps, meta, err := s.openProject(req.ProjectDir)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	cacheKey := fmt.Sprintf("call-graph:%s:%s:%d", req.FilePath, req.FunctionName, req.MaxDepth)
	if cached, ok := s.cache.Get(meta.ProjectID, cacheKey); ok {
		writeRawJSON(w, http.StatusOK, cached)
		return
	}

	var entities []*model.Entity
	if req.FunctionName != "" {
		e, ok := ps.FindEntityByNameInFile(req.FilePath, req.FunctionName)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("%w: function %q not found in %s", store.ErrUnknownEntity, req.FunctionName, req.FilePath))
			return
		}
		entities = []*model.Entity{e}
	} else {
		entities = ps.EntitiesInFile(req.FilePath)
	}

	results := make([]callGraphEntity, 0, len(entities))
	for _, e := range entities {
		result := callGraphEntity{Entity: e, Callers: ps.CallersOf(e.ID), Callees: ps.CalleesOf(e.ID)}
		if req.MaxDepth > 0 {
			if tree, err := ps.CallChain(e.ID, req.MaxDepth); err == nil {
				result.Tree = tree
			}
		}
		results = append(results, result)
	}

	payload, err := json.Marshal(results)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.cache.Put(meta.ProjectID, cacheKey, string(payload))
	writeRawJSON(w, http.StatusOK, string(payload))
}

// --- /query/hierarchical-graph ---

type hierarchicalGraphRequest struct {
	ProjectDir      string `json:"project_dir"`
	FilePath        string `json:"file_path"`
	RootFunction    string `json:"root_function"`
	MaxDepth        int    `json:"max_depth"`
	IncludeFileInfo bool   `json:"include_file_info"`
}

func (s *Server) handleQueryHierarchicalGraph(w http.ResponseWriter, r *http.Request) {
	var req hierarchicalGraphRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectDir == "" || req.FilePath == "" || req.RootFunction == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("project_dir, file_path, and root_function are required"))
		return
	}
	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = model.DefaultCallChainDepth
	}

	ps, meta, err := s.openProject(req.ProjectDir)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	cacheKey := fmt.Sprintf("hier:%s:%s:%d:%v", req.FilePath, req.RootFunction, maxDepth, req.IncludeFileInfo)
	if cached, ok := s.cache.Get(meta.ProjectID, cacheKey); ok {
		writeRawJSON(w, http.StatusOK, cached)
		return
	}

	root, ok := ps.FindEntityByNameInFile(req.FilePath, req.RootFunction)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: function %q not found in %s", store.ErrUnknownEntity, req.RootFunction, req.FilePath))
		return
	}

	tree, err := ps.CallChain(root.ID, maxDepth)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !req.IncludeFileInfo {
		stripFileInfo(tree)
	}

	payload, err := json.Marshal(tree)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.cache.Put(meta.ProjectID, cacheKey, string(payload))
	writeRawJSON(w, http.StatusOK, string(payload))
}

func stripFileInfo(n *model.HierarchicalNode) {
	if n == nil {
		return
	}
	n.FilePath = ""
	n.LineStart = 0
	n.LineEnd = 0
	for _, c := range n.Children {
		stripFileInfo(c)
	}
}

// --- /query/snippet ---

type snippetRequest struct {
	ProjectDir   string `json:"project_dir"`
	FilePath     string `json:"file_path"`
	FunctionName string `json:"function_name"`
	ContextLines int    `json:"context_lines"`
}

type snippetResponse struct {
	Snippet string `json:"snippet"`
}

func (s *Server) handleQuerySnippet(w http.ResponseWriter, r *http.Request) {
	var req snippetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectDir == "" || req.FilePath == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("project_dir and file_path are required"))
		return
	}

	ps, _, err := s.openProject(req.ProjectDir)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	snippet, err := ps.CodeSnippet(req.FilePath, req.FunctionName, req.ContextLines)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snippetResponse{Snippet: snippet})
}

// --- /query/skeleton ---

type skeletonRequest struct {
	ProjectDir string   `json:"project_dir"`
	FilePaths  []string `json:"file_path"`
}

type skeletonResponse struct {
	Skeletons map[string]string `json:"skeletons"`
}

func (s *Server) handleQuerySkeleton(w http.ResponseWriter, r *http.Request) {
	var req skeletonRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectDir == "" || len(req.FilePaths) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("project_dir and file_path are required"))
		return
	}

	ps, _, err := s.openProject(req.ProjectDir)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	out := make(map[string]string, len(req.FilePaths))
	for _, f := range req.FilePaths {
		out[f] = ps.CodeSkeleton(f)
	}
	writeJSON(w, http.StatusOK, skeletonResponse{Skeletons: out})
}

// --- /investigate ---

type investigateRequest struct {
	ProjectDir string `json:"project_dir"`
	TopN       int    `json:"top_n"`
}

func (s *Server) handleInvestigate(w http.ResponseWriter, r *http.Request) {
	var req investigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectDir == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("project_dir is required"))
		return
	}
	topN := req.TopN
	if topN <= 0 {
		topN = 10
	}

	ps, meta, err := s.openProject(req.ProjectDir)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	cacheKey := fmt.Sprintf("investigate:%d", topN)
	if cached, ok := s.cache.Get(meta.ProjectID, cacheKey); ok {
		writeRawJSON(w, http.StatusOK, cached)
		return
	}

	summary := ps.Investigate(topN)
	payload, err := json.Marshal(summary)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.cache.Put(meta.ProjectID, cacheKey, string(payload))
	writeRawJSON(w, http.StatusOK, string(payload))
}

// --- /draw-call-graph ---

func (s *Server) handleDrawCallGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projectDir := q.Get("project_dir")
	filePath := q.Get("file_path")
	functionName := q.Get("function_name")
	if projectDir == "" || filePath == "" || functionName == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("project_dir, file_path, and function_name are required"))
		return
	}
	maxDepth := queryInt(q, "max_depth", model.DefaultCallChainDepth)
	maxNodes := queryInt(q, "max_nodes", 30)

	ps, _, err := s.openProject(projectDir)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	root, ok := ps.FindEntityByNameInFile(filePath, functionName)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: function %q not found in %s", store.ErrUnknownEntity, functionName, filePath))
		return
	}

	tree, err := ps.CallChain(root.ID, maxDepth)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	opts := graph.DefaultDiagramOptions()
	opts.MaxNodes = maxNodes
	writeJSON(w, http.StatusOK, graph.BuildPayload(tree, opts))
}
