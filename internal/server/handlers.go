package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/scrawl/pkg/ai"
	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/export"
	"github.com/matzehuels/scrawl/pkg/graph"
	"github.com/matzehuels/scrawl/pkg/pipeline"
	"github.com/matzehuels/scrawl/pkg/store"
)

// =============================================================================
// Wire Types
// =============================================================================

// generateRequest is the body of POST /api/v1/generate.
type generateRequest struct {
	Prompt     string   `json:"prompt"`
	Type       string   `json:"type,omitempty"`
	Style      string   `json:"style,omitempty"`
	Direction  string   `json:"direction,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	Title      string   `json:"title,omitempty"`
	Background string   `json:"background,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"`
}

// generateResponse is the wire form of a pipeline result. Artifact bytes
// are base64 in JSON.
type generateResponse struct {
	Graph     graph.Graph       `json:"graph"`
	GraphHash string            `json:"graph_hash"`
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
	Usage     ai.Usage          `json:"usage"`
	Stats     statsPayload      `json:"stats"`
	Cache     cachePayload      `json:"cache"`
}

type statsPayload struct {
	Nodes      int   `json:"nodes"`
	Edges      int   `json:"edges"`
	Crossings  int   `json:"crossings"`
	GenerateMS int64 `json:"generate_ms"`
	LayoutMS   int64 `json:"layout_ms"`
	ExportMS   int64 `json:"export_ms"`
}

type cachePayload struct {
	Generate bool `json:"generate"`
	Layout   bool `json:"layout"`
	Export   bool `json:"export"`
}

type layoutRequest struct {
	Graph     graph.Graph `json:"graph"`
	Style     string      `json:"style,omitempty"`
	Direction string      `json:"direction,omitempty"`
}

type layoutResponse struct {
	Graph     graph.Graph `json:"graph"`
	Crossings int         `json:"crossings"`
	Cached    bool        `json:"cached"`
}

type exportRequest struct {
	Graph      graph.Graph `json:"graph"`
	Formats    []string    `json:"formats,omitempty"`
	Title      string      `json:"title,omitempty"`
	Background string      `json:"background,omitempty"`
	Detailed   bool        `json:"detailed,omitempty"`
}

type exportResponse struct {
	Artifacts map[string][]byte `json:"artifacts"`
	Cached    bool              `json:"cached"`
}

type diagramCreateRequest struct {
	Title string      `json:"title"`
	Graph graph.Graph `json:"graph"`
}

// diagramUpdateRequest uses pointers so absent fields leave the stored
// value untouched.
type diagramUpdateRequest struct {
	Title *string      `json:"title,omitempty"`
	Graph *graph.Graph `json:"graph,omitempty"`
}

type diagramListResponse struct {
	Diagrams []store.Summary `json:"diagrams"`
}

// =============================================================================
// Pipeline Handlers
// =============================================================================

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Prompt:     req.Prompt,
		Type:       req.Type,
		Style:      req.Style,
		Direction:  req.Direction,
		Formats:    req.Formats,
		Title:      req.Title,
		Background: req.Background,
		Detailed:   req.Detailed,
		Refresh:    req.Refresh,
		Logger:     s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Graph:     result.Graph,
		GraphHash: result.GraphHash,
		Artifacts: result.Artifacts,
		Usage:     result.Usage,
		Stats: statsPayload{
			Nodes:      result.Stats.NodeCount,
			Edges:      result.Stats.EdgeCount,
			Crossings:  result.Stats.Crossings,
			GenerateMS: result.Stats.GenerateTime.Milliseconds(),
			LayoutMS:   result.Stats.LayoutTime.Milliseconds(),
			ExportMS:   result.Stats.ExportTime.Milliseconds(),
		},
		Cache: cachePayload{
			Generate: result.CacheInfo.GenerateHit,
			Layout:   result.CacheInfo.LayoutHit,
			Export:   result.CacheInfo.ExportHit,
		},
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.Graph.Validate(); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph"))
		return
	}

	placed, cached, err := s.runner.LayoutWithCacheInfo(r.Context(), req.Graph, pipeline.Options{
		Type:      req.Graph.Type,
		Style:     req.Style,
		Direction: req.Direction,
		Logger:    s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		Graph:     placed,
		Crossings: pipeline.Crossings(placed),
		Cached:    cached,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.Graph.Validate(); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph"))
		return
	}

	artifacts, cached, err := s.runner.ExportWithCacheInfo(r.Context(), req.Graph, pipeline.Options{
		Formats:    req.Formats,
		Title:      req.Title,
		Background: req.Background,
		Detailed:   req.Detailed,
		Logger:     s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// A single artifact is returned raw so the endpoint can be curled
	// straight into a file.
	if len(artifacts) == 1 {
		for name, data := range artifacts {
			f, _ := export.ParseFormat(name)
			w.Header().Set("Content-Type", export.ContentType(f))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
		}
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{Artifacts: artifacts, Cached: cached})
}

// =============================================================================
// Diagram Handlers
// =============================================================================

func (s *Server) handleDiagramCreate(w http.ResponseWriter, r *http.Request) {
	var req diagramCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	d := store.New(req.Title, req.Graph)
	if err := s.store.Save(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleDiagramList(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diagramListResponse{Diagrams: summaries})
}

func (s *Server) handleDiagramGet(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDiagramUpdate(w http.ResponseWriter, r *http.Request) {
	var req diagramUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Graph != nil {
		d.Graph = *req.Graph
		d.Type = req.Graph.Type
	}
	d.Touch()

	if err := s.store.Save(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDiagramDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
