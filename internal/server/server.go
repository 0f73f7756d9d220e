// Package server exposes the composer over HTTP: atlas catalog lookups,
// preset CRUD, document validation, and point/geometry projection through a
// preset's composite router.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/paulmach/orb/geojson"

	"github.com/pspoerri/atlas-composer/internal/atlas"
	"github.com/pspoerri/atlas-composer/internal/composite"
	"github.com/pspoerri/atlas-composer/internal/geostream"
	"github.com/pspoerri/atlas-composer/internal/logger"
	"github.com/pspoerri/atlas-composer/internal/preset"
)

// Server wires the preset service behind a chi router.
type Server struct {
	Log     *slog.Logger
	Presets *preset.Service
}

// New returns a server over the given service.
func New(log *slog.Logger, presets *preset.Service) *Server {
	return &Server{Log: log, Presets: presets}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.AccessMiddleware(s.Log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/atlases", s.handleListAtlases)
		r.Get("/atlases/{id}", s.handleGetAtlas)
		r.Get("/atlases/{id}/presets", s.handleListPresets)

		r.Get("/presets/{name}", s.handleGetPreset)
		r.Post("/presets/{name}", s.handleSavePreset)
		r.Delete("/presets/{name}", s.handleDeletePreset)

		r.Post("/compose/validate", s.handleValidate)
		r.Post("/compose/project", s.handleProject)
		r.Post("/compose/invert", s.handleInvert)
		r.Post("/compose/geojson", s.handleGeoJSON)
	})
	return r
}

func (s *Server) handleListAtlases(w http.ResponseWriter, r *http.Request) {
	atlases, err := atlas.All()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, atlases)
}

func (s *Server) handleGetAtlas(w http.ResponseWriter, r *http.Request) {
	a, err := atlas.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := atlas.Get(id)
	if err != nil {
		s.fail(w, http.StatusNotFound, err)
		return
	}

	type presetInfo struct {
		Name    string `json:"name"`
		Builtin bool   `json:"builtin"`
	}
	var out []presetInfo
	out = append(out, presetInfo{Name: a.DefaultPreset, Builtin: true})
	if s.Presets.Store != nil {
		stored, err := s.Presets.Store.List(r.Context(), id)
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		for _, p := range stored {
			out = append(out, presetInfo{Name: p.Name})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	res, err := s.Presets.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, preset.ErrNotFound) {
			s.fail(w, http.StatusNotFound, err)
		} else {
			s.fail(w, http.StatusInternalServerError, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       res.OK,
		"atlasId":  res.AtlasID,
		"errors":   res.Errors,
		"warnings": res.Warnings,
		"document": json.RawMessage(res.Document),
	})
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.Presets.Save(r.Context(), chi.URLParam(r, "name"), body)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	status := http.StatusOK
	if !res.OK {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]any{
		"ok":       res.OK,
		"errors":   res.Errors,
		"warnings": res.Warnings,
	})
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if s.Presets.Store == nil {
		s.fail(w, http.StatusNotImplemented, errors.New("no preset store configured"))
		return
	}
	if err := s.Presets.Store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleValidate runs the codec over a posted document without persisting
// anything. Always 200; the body carries the verdict.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	res := s.Presets.Codec.Decode(body)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       res.OK,
		"errors":   res.Errors,
		"warnings": res.Warnings,
	})
}

type pointsRequest struct {
	Preset string       `json:"preset"`
	Points [][2]float64 `json:"points"`
}

// pointsResponse mirrors the request order; misses are null.
type pointsResponse struct {
	Points []*[2]float64 `json:"points"`
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	comp, req, ok := s.composeRequest(w, r)
	if !ok {
		return
	}
	resp := pointsResponse{Points: make([]*[2]float64, len(req.Points))}
	for i, p := range req.Points {
		if x, y, ok := comp.Forward(p[0], p[1]); ok {
			resp.Points[i] = &[2]float64{x, y}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInvert(w http.ResponseWriter, r *http.Request) {
	comp, req, ok := s.composeRequest(w, r)
	if !ok {
		return
	}
	resp := pointsResponse{Points: make([]*[2]float64, len(req.Points))}
	for i, p := range req.Points {
		if lon, lat, ok := comp.Invert(p[0], p[1]); ok {
			resp.Points[i] = &[2]float64{lon, lat}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Preset     string          `json:"preset"`
		Collection json.RawMessage `json:"collection"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	fc, err := geojson.UnmarshalFeatureCollection(req.Collection)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	comp, ok := s.loadComposite(w, r, req.Preset)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, geostream.ProjectCollection(comp, fc))
}

func (s *Server) composeRequest(w http.ResponseWriter, r *http.Request) (*composite.Composite, pointsRequest, bool) {
	var req pointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return nil, req, false
	}
	comp, ok := s.loadComposite(w, r, req.Preset)
	return comp, req, ok
}

func (s *Server) loadComposite(w http.ResponseWriter, r *http.Request, name string) (*composite.Composite, bool) {
	if name == "" {
		s.fail(w, http.StatusBadRequest, errors.New("preset is required"))
		return nil, false
	}
	res, err := s.Presets.Load(r.Context(), name)
	if err != nil {
		if errors.Is(err, preset.ErrNotFound) {
			s.fail(w, http.StatusNotFound, err)
		} else {
			s.fail(w, http.StatusInternalServerError, err)
		}
		return nil, false
	}
	if !res.OK {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "preset has errors",
			"errors": res.Errors,
		})
		return nil, false
	}
	return res.Composite, true
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.Log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
