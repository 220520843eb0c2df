package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/content-forge/internal/gateway"
	"github.com/fpang/content-forge/internal/history"
	"github.com/fpang/content-forge/internal/ingest"
	"github.com/fpang/content-forge/internal/pipeline"
)

// maxUploadBytes bounds media uploads. Inline Gemini payloads top out around
// 20MB after base64 expansion, so anything bigger would fail downstream anyway.
const maxUploadBytes = 32 << 20

type server struct {
	orch *pipeline.Orchestrator
}

func newServer(orch *pipeline.Orchestrator) *server {
	return &server{orch: orch}
}

// GET /api/state
func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, s.orch.Snapshot())
}

// GET /api/history
func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, s.orch.Snapshot().History)
}

// POST /api/media (multipart: media file + optional platform field)
//
// The pipeline runs in the background; the handler returns as soon as the
// upload is accepted. Clients poll /api/state for phase transitions.
func (s *server) handleSubmitMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		httpError(w, http.StatusBadRequest, "media file is required")
		return
	}
	defer file.Close()

	platform := gateway.PlatformYouTube
	if p := r.FormValue("platform"); p != "" {
		platform, err = gateway.ParsePlatform(p)
		if err != nil {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	mimeType, err := ingest.MIMEFromExtension(strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		httpError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	// Empty source path: the client filename is untrusted and points at
	// nothing on this machine, so non-image uploads get no preview rather
	// than a handle that would feed a client-chosen path to ServeFile.
	payload, err := ingest.FromBytes(data, mimeType, "")
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestID := requestIDFromContext(r.Context())
	go func() {
		// Detached from the request context: the run outlives the response.
		if _, err := s.orch.SubmitMedia(context.Background(), payload, platform); err != nil {
			if errors.Is(err, pipeline.ErrSuperseded) {
				log.Debug().Str("request_id", requestID).Msg("Run superseded by a newer upload")
				return
			}
			log.Error().Err(err).Str("request_id", requestID).Msg("Pipeline run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status":    string(pipeline.PhaseAnalyzing),
		"requestId": requestID,
	})
}

// GET /api/media/preview
func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := s.orch.Snapshot()
	if snap.PreviewPath == "" {
		httpError(w, http.StatusNotFound, "no media held")
		return
	}

	// http.ServeFile handles Content-Type and caching headers.
	http.ServeFile(w, r, snap.PreviewPath)
}

// POST /api/platform {"platform": "Twitter"}
func (s *server) handleChangePlatform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Platform string `json:"platform"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	platform, err := gateway.ParsePlatform(req.Platform)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	seo, err := s.orch.ChangePlatform(r.Context(), platform)
	switch {
	case errors.Is(err, pipeline.ErrNoAnalysis):
		httpError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, pipeline.ErrSuperseded):
		httpError(w, http.StatusConflict, "superseded by a newer upload")
		return
	case err != nil:
		httpError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, seo)
}

// POST /api/forge {"prompt": "..."}
func (s *server) handleForge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		httpError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	rendered, err := s.orch.ForgeThumbnail(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, gateway.ErrNoImage) {
			httpError(w, http.StatusBadGateway, "model returned no image for this prompt")
			return
		}
		httpError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rendered)
}

// POST /api/recall {"id": "run-..."}
func (s *server) handleRecall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &req); err != nil || req.ID == "" {
		httpError(w, http.StatusBadRequest, "id is required")
		return
	}

	record, err := s.orch.RecallRun(req.ID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			httpError(w, http.StatusNotFound, err.Error())
			return
		}
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, record)
}
