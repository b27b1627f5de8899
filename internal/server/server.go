// Package server exposes the generator over HTTP: an HTML form and a JSON API.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/output"
	"github.com/dhabedank/brdgen/internal/render"
	"github.com/dhabedank/brdgen/internal/store"
)

//go:embed templates/*
var templatesFS embed.FS

// maxBodyBytes bounds request bodies; pasted BRDs can be large.
const maxBodyBytes = 4 << 20

// Server is the HTTP server for the document API and form.
type Server struct {
	gen       *generator.Generator
	store     *store.Store // optional
	log       *zap.Logger
	templates *template.Template
	addr      string
}

// New creates a server. st may be nil to disable history.
func New(gen *generator.Generator, st *store.Store, log *zap.Logger, addr string) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{gen: gen, store: st, log: log, templates: tmpl, addr: addr}, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// UI
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /generate", s.handleGenerateForm)

	// API
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/classify", s.handleClassify)
	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("GET /api/documents/{id}/body", s.handleDocumentBody)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return corsMiddleware(requestIDMiddleware(s.loggingMiddleware(mux)))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second, // AI generation can be slow
	}

	s.log.Info("server starting", zap.String("addr", s.addr), zap.Bool("history", s.store != nil))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		DefaultProject string
		Documents      []store.Record
	}{DefaultProject: core.DefaultProject}

	if s.store != nil {
		docs, err := s.store.List(r.Context(), store.Filter{Limit: 10})
		if err != nil {
			s.log.Warn("list documents", zap.Error(err))
		}
		data.Documents = docs
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index", data); err != nil {
		s.log.Error("render index", zap.Error(err))
	}
}

// generateRequest is the JSON body of POST /api/generate.
type generateRequest struct {
	core.Input
	Type   string `json:"type"`   // BRD (default) or FRD
	Format string `json:"format"` // html (default) or markdown
}

type generateResponse struct {
	output.Export
	ID string `json:"id,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res, id, err := s.generate(r.Context(), req)
	if err != nil {
		s.writeGenerateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Export: output.NewExport(res), ID: id})
}

func (s *Server) handleGenerateForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	version, _ := strconv.Atoi(r.FormValue("version"))
	req := generateRequest{
		Input: core.Input{
			Project:           r.FormValue("project"),
			Version:           version,
			Scope:             r.FormValue("scope"),
			Objectives:        r.FormValue("objectives"),
			Budget:            r.FormValue("budget"),
			BriefRequirements: r.FormValue("requirements"),
			Assumptions:       r.FormValue("assumptions"),
			Constraints:       r.FormValue("constraints"),
			Validations:       r.FormValue("validations"),
			BRDText:           r.FormValue("brd"),
		},
		Type: r.FormValue("type"),
	}

	res, _, err := s.generate(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(res.Document.HTML))
}

// generate validates the request, runs the generator and records the
// document when history is enabled.
func (s *Server) generate(ctx context.Context, req generateRequest) (*generator.Result, string, error) {
	docType, err := core.ParseDocType(req.Type)
	if err != nil {
		return nil, "", err
	}
	format, err := render.ParseFormat(req.Format)
	if err != nil {
		return nil, "", &core.ValidationError{Field: "format", Message: err.Error()}
	}
	if err := req.Input.Validate(); err != nil {
		return nil, "", err
	}
	if docType == core.DocFRD && strings.TrimSpace(req.BRDText) == "" && strings.TrimSpace(req.BriefRequirements) == "" {
		return nil, "", &core.ValidationError{Field: "brd", Message: "FRD conversion needs BRD text"}
	}

	in := req.Input
	if s.store != nil && in.Version == 0 {
		project := in.Normalized().Project
		if in.Version, err = s.store.NextVersion(ctx, project, docType); err != nil {
			return nil, "", err
		}
	}

	res, err := s.gen.Generate(ctx, generator.Request{
		Name:   requestID(ctx),
		Input:  in,
		Type:   docType,
		Format: format,
	})
	if err != nil {
		return nil, "", err
	}

	var id string
	if s.store != nil {
		wr, err := output.NewStoreAdapter(s.store, string(format)).Write(ctx, res, output.Config{})
		if err != nil {
			return nil, "", err
		}
		id = wr.ID
	}
	return res, id, nil
}

func (s *Server) writeGenerateError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("generate", zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type classifyResponse struct {
	Domain core.Domain        `json:"domain"`
	Label  string             `json:"label"`
	Scores []core.DomainScore `json:"scores"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	e := s.gen.Engine()
	domain, scores := e.Scores(req.Text)
	writeJSON(w, http.StatusOK, classifyResponse{
		Domain: domain,
		Label:  e.Profile(domain).Label,
		Scores: scores,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "document history is disabled")
		return
	}

	q := r.URL.Query()
	f := store.Filter{Project: q.Get("project")}
	if t := q.Get("type"); t != "" {
		dt, err := core.ParseDocType(t)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Type = dt
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	docs, err := s.store.List(r.Context(), f)
	if err != nil {
		s.log.Error("list documents", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if ok {
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleDocumentBody(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ct := "text/html; charset=utf-8"
	if rec.Format == string(render.Markdown) {
		ct = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", ct)
	w.Write([]byte(rec.Body))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*store.Record, bool) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "document history is disabled")
		return nil, false
	}
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		s.log.Error("get document", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return nil, false
	}
	return rec, true
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
