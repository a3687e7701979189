package api

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/felice68russo-ops/Suspended-Reality/internal/store"
)

// stubFrames serves a fixed frame.
type stubFrames struct {
	frame *image.RGBA
}

func (s *stubFrames) LatestFrame() *image.RGBA { return s.frame }

func newSnapshotHandler(t *testing.T) (*SnapshotHandler, *stubFrames, string) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	frame := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for i := range frame.Pix {
		frame.Pix[i] = 0xc0
	}

	dir := filepath.Join(t.TempDir(), "snapshots")
	frames := &stubFrames{frame: frame}
	return NewSnapshotHandler(s, frames, dir), frames, dir
}

func TestSnapshots_Create(t *testing.T) {
	h, _, dir := newSnapshotHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/snapshots", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp snapshotResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid create response: %v", err)
	}
	if resp.Width != 64 || resp.Height != 32 {
		t.Errorf("snapshot size = %dx%d, want 64x32", resp.Width, resp.Height)
	}

	info, err := os.Stat(resp.Path)
	if err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("snapshot file is empty")
	}
	if filepath.Dir(resp.Path) != dir {
		t.Errorf("snapshot written to %q, want under %q", resp.Path, dir)
	}
}

func TestSnapshots_CreateRescaled(t *testing.T) {
	h, _, _ := newSnapshotHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/snapshots?width=32", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp snapshotResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Width != 32 || resp.Height != 16 {
		t.Errorf("rescaled size = %dx%d, want 32x16", resp.Width, resp.Height)
	}
}

func TestSnapshots_CreateInvalidWidth(t *testing.T) {
	h, _, _ := newSnapshotHandler(t)

	for _, q := range []string{"width=0", "width=99999", "width=abc"} {
		req := httptest.NewRequest(http.MethodPost, "/api/snapshots?"+q, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("create with %s status = %d, want 400", q, w.Code)
		}
	}
}

func TestSnapshots_CreateWithoutFrame(t *testing.T) {
	h, frames, _ := newSnapshotHandler(t)
	frames.frame = nil

	req := httptest.NewRequest(http.MethodPost, "/api/snapshots", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("create without frame status = %d, want 503", w.Code)
	}
}

func TestSnapshots_ListGetDelete(t *testing.T) {
	h, _, _ := newSnapshotHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/snapshots", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var created snapshotResponse
	json.Unmarshal(w.Body.Bytes(), &created)

	req = httptest.NewRequest(http.MethodGet, "/api/snapshots", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	var list listSnapshotsResponse
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Snapshots) != 1 {
		t.Fatalf("list returned %d snapshots, want 1", len(list.Snapshots))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/snapshots/"+created.ID, nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/snapshots/"+created.ID, nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}

	// The file is gone too.
	if _, err := os.Stat(created.Path); !os.IsNotExist(err) {
		t.Errorf("snapshot file still present after delete: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/snapshots/"+created.ID, nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}
