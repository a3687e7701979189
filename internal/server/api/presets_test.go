package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felice68russo-ops/Suspended-Reality/internal/config"
	"github.com/felice68russo-ops/Suspended-Reality/internal/store"
)

// stubTuner records applied params.
type stubTuner struct {
	cfg     config.Config
	applied int
}

func (t *stubTuner) CurrentParams() config.Config { return t.cfg }
func (t *stubTuner) ApplyParams(c config.Config)  { t.cfg = c; t.applied++ }

func newPresetHandler(t *testing.T) (*PresetHandler, *stubTuner) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	tuner := &stubTuner{cfg: config.Default()}
	return NewPresetHandler(s, tuner), tuner
}

func createPreset(t *testing.T, h *PresetHandler, name, cfg string) presetResponse {
	t.Helper()

	body, _ := json.Marshal(presetRequest{Name: name, Config: cfg})
	req := httptest.NewRequest(http.MethodPost, "/api/presets", strings.NewReader(string(body)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create preset status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp presetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid create response: %v", err)
	}
	return resp
}

func TestPresets_CreateAndGet(t *testing.T) {
	h, _ := newPresetHandler(t)

	created := createPreset(t, h, "heavy smear", "smear_intensity = 0.95\n")
	if created.ID == "" {
		t.Fatal("created preset has empty id")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/presets/"+created.ID, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", w.Code)
	}

	var got presetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid get response: %v", err)
	}
	if got.Name != "heavy smear" || got.Config != "smear_intensity = 0.95\n" {
		t.Errorf("get = %+v", got)
	}
}

func TestPresets_CreateValidation(t *testing.T) {
	h, _ := newPresetHandler(t)

	// Missing name.
	req := httptest.NewRequest(http.MethodPost, "/api/presets",
		strings.NewReader(`{"config": ""}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("nameless preset status = %d, want 400", w.Code)
	}

	// Config that is not TOML.
	req = httptest.NewRequest(http.MethodPost, "/api/presets",
		strings.NewReader(`{"name": "bad", "config": "{not toml"}`))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid-TOML preset status = %d, want 400", w.Code)
	}
}

func TestPresets_List(t *testing.T) {
	h, _ := newPresetHandler(t)

	createPreset(t, h, "one", "")
	createPreset(t, h, "two", "")

	req := httptest.NewRequest(http.MethodGet, "/api/presets", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}

	var resp listPresetsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid list response: %v", err)
	}
	if len(resp.Presets) != 2 {
		t.Errorf("list returned %d presets, want 2", len(resp.Presets))
	}
}

func TestPresets_UpdateAndDelete(t *testing.T) {
	h, _ := newPresetHandler(t)

	created := createPreset(t, h, "before", "decay_rate = 0.02\n")

	req := httptest.NewRequest(http.MethodPut, "/api/presets/"+created.ID,
		strings.NewReader(`{"name": "after"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", w.Code)
	}

	var updated presetResponse
	json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Name != "after" {
		t.Errorf("updated name = %q, want \"after\"", updated.Name)
	}
	if updated.Config != "decay_rate = 0.02\n" {
		t.Errorf("update changed config: %q", updated.Config)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/presets/"+created.ID, nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/presets/"+created.ID, nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestPresets_Apply(t *testing.T) {
	h, tuner := newPresetHandler(t)

	created := createPreset(t, h, "tuned", "grab_radius = 0.4\ndecay_rate = 99.0\n")

	req := httptest.NewRequest(http.MethodPost, "/api/presets/"+created.ID+"/apply", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("apply status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if tuner.applied != 1 {
		t.Fatalf("ApplyParams called %d times, want 1", tuner.applied)
	}
	if tuner.cfg.GrabRadius != 0.4 {
		t.Errorf("applied grab_radius = %f, want 0.4", tuner.cfg.GrabRadius)
	}
	// Out-of-range preset values are clamped before applying.
	if tuner.cfg.DecayRate != 0.1 {
		t.Errorf("applied decay_rate = %f, want clamped to 0.1", tuner.cfg.DecayRate)
	}
	// Knobs the preset does not mention keep their current values.
	if tuner.cfg.SmearIntensity != config.Default().SmearIntensity {
		t.Errorf("applied smear_intensity = %f, want default", tuner.cfg.SmearIntensity)
	}
}

func TestPresets_ApplyNotFound(t *testing.T) {
	h, _ := newPresetHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/presets/missing/apply", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("apply missing preset status = %d, want 404", w.Code)
	}
}
