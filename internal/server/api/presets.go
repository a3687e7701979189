// Package api provides the JSON HTTP handlers for presets, snapshots, and
// live tuning.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/felice68russo-ops/Suspended-Reality/internal/config"
	"github.com/felice68russo-ops/Suspended-Reality/internal/store"
)

// Tuner is the pipeline surface the tuning handlers need.
type Tuner interface {
	CurrentParams() config.Config
	ApplyParams(config.Config)
}

// PresetHandler handles HTTP requests for preset resources.
type PresetHandler struct {
	store *store.Store
	tuner Tuner
}

// NewPresetHandler creates a new PresetHandler. The tuner may be nil, in
// which case the apply endpoint returns an error.
func NewPresetHandler(s *store.Store, t Tuner) *PresetHandler {
	return &PresetHandler{store: s, tuner: t}
}

// ServeHTTP routes preset requests.
// Expected paths: /api/presets, /api/presets/{id}, /api/presets/{id}/apply.
func (h *PresetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/presets")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/apply"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.apply(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type presetRequest struct {
	Name   string `json:"name"`
	Config string `json:"config"`
}

type presetResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Config    string `json:"config"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listPresetsResponse struct {
	Presets []presetResponse `json:"presets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toPresetResponse(p *store.Preset) presetResponse {
	return presetResponse{
		ID:        p.ID,
		Name:      p.Name,
		Config:    p.Config,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// validatePresetConfig checks that the preset body is parseable TOML over
// the known knobs.
func validatePresetConfig(body string) error {
	cfg := config.Default()
	_, err := toml.Decode(body, &cfg)
	return err
}

// list handles GET /api/presets.
func (h *PresetHandler) list(w http.ResponseWriter, r *http.Request) {
	presets, err := h.store.Presets().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list presets")
		return
	}

	response := listPresetsResponse{
		Presets: make([]presetResponse, 0, len(presets)),
	}
	for _, p := range presets {
		response.Presets = append(response.Presets, toPresetResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/presets/{id}.
func (h *PresetHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	preset, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	writeJSON(w, http.StatusOK, toPresetResponse(preset))
}

// create handles POST /api/presets.
func (h *PresetHandler) create(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if err := validatePresetConfig(req.Config); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid preset config: "+err.Error())
		return
	}

	preset := &store.Preset{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Config: req.Config,
	}

	if err := h.store.Presets().Create(preset); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create preset")
		return
	}

	writeJSON(w, http.StatusCreated, toPresetResponse(preset))
}

// update handles PUT /api/presets/{id}.
func (h *PresetHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	preset, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	var req presetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" {
		preset.Name = req.Name
	}
	if req.Config != "" {
		if err := validatePresetConfig(req.Config); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid preset config: "+err.Error())
			return
		}
		preset.Config = req.Config
	}

	if err := h.store.Presets().Update(preset); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update preset")
		return
	}

	writeJSON(w, http.StatusOK, toPresetResponse(preset))
}

// delete handles DELETE /api/presets/{id}.
func (h *PresetHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Presets().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete preset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// apply handles POST /api/presets/{id}/apply. The preset's TOML is decoded
// over the current knobs, clamped, and handed to the pipeline.
func (h *PresetHandler) apply(w http.ResponseWriter, r *http.Request, id string) {
	if h.tuner == nil {
		writeError(w, http.StatusServiceUnavailable, "Pipeline not running")
		return
	}

	preset, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	cfg := h.tuner.CurrentParams()
	if _, err := toml.Decode(preset.Config, &cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Preset config is corrupt: "+err.Error())
		return
	}
	cfg.Clamp()
	h.tuner.ApplyParams(cfg)

	writeJSON(w, http.StatusOK, map[string]string{"applied": preset.ID})
}
