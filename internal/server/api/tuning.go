package api

import (
	"encoding/json"
	"net/http"
)

// ConfigHandler exposes the live tuning knobs: GET returns the active
// values, PUT replaces them (clamped).
type ConfigHandler struct {
	tuner Tuner
}

// NewConfigHandler creates a new ConfigHandler for the given tuner.
func NewConfigHandler(t Tuner) *ConfigHandler {
	return &ConfigHandler{tuner: t}
}

// ServeHTTP handles GET and PUT requests to /api/config.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.tuner.CurrentParams())
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// put decodes a partial knob update over the current values. Unknown
// fields are rejected so typos surface instead of silently doing nothing.
func (h *ConfigHandler) put(w http.ResponseWriter, r *http.Request) {
	cfg := h.tuner.CurrentParams()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid config: "+err.Error())
		return
	}

	cfg.Clamp()
	h.tuner.ApplyParams(cfg)

	writeJSON(w, http.StatusOK, cfg)
}
