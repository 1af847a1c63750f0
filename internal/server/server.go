// Package server exposes job start and status endpoints over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/julianshen/docsynth/internal/generator"
	"github.com/julianshen/docsynth/internal/jobs"
	"github.com/julianshen/docsynth/internal/wiki"
)

// maxBodyBytes bounds POST /jobs request bodies.
const maxBodyBytes = 1 << 16

// Starter launches a background generation run and returns its job id.
type Starter interface {
	Start(cfg wiki.Config) string
}

// StartRequest is the body of POST /jobs.
type StartRequest struct {
	Dir    string `json:"dir"`
	Output string `json:"output,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

// StartResponse is the body of a 202 reply to POST /jobs.
type StartResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the job API.
type Handler struct {
	runner   Starter
	jobs     jobs.Store
	defaults wiki.Config
	mux      *http.ServeMux
}

// NewHandler creates a Handler. defaults supplies the scan options, mode and
// output directory for requests that leave them out.
func NewHandler(runner Starter, store jobs.Store, defaults wiki.Config) *Handler {
	h := &Handler{
		runner:   runner,
		jobs:     store,
		defaults: defaults,
		mux:      http.NewServeMux(),
	}
	h.mux.HandleFunc("POST /jobs", h.startJob)
	h.mux.HandleFunc("GET /jobs/{id}", h.getJob)
	h.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) startJob(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.Dir == "" {
		writeError(w, http.StatusBadRequest, errors.New("dir is required"))
		return
	}

	cfg := h.defaults
	cfg.Dir = req.Dir
	switch {
	case req.Output != "":
		cfg.OutputDir = req.Output
	case cfg.OutputDir == "" || !filepath.IsAbs(cfg.OutputDir):
		out := cfg.OutputDir
		if out == "" {
			out = "docs"
		}
		cfg.OutputDir = filepath.Join(req.Dir, out)
	}
	if req.Mode != "" {
		mode, err := generator.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		cfg.Mode = mode
	}

	id := h.runner.Start(cfg)
	log.Printf("started job %s for %s", id, cfg.Dir)
	writeJSON(w, http.StatusAccepted, StartResponse{ID: id})
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.PathValue("id"))
	if errors.Is(err, jobs.ErrJobNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARNING: writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
