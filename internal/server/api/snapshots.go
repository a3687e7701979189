package api

import (
	"errors"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/felice68russo-ops/Suspended-Reality/internal/store"
)

// FrameProvider is the pipeline surface the snapshot handler needs.
type FrameProvider interface {
	LatestFrame() *image.RGBA
}

// SnapshotHandler exports rendered frames to disk as lossless WebP and
// records them in the store.
type SnapshotHandler struct {
	store  *store.Store
	frames FrameProvider
	dir    string
}

// NewSnapshotHandler creates a new SnapshotHandler writing into dir.
func NewSnapshotHandler(s *store.Store, f FrameProvider, dir string) *SnapshotHandler {
	return &SnapshotHandler{store: s, frames: f, dir: dir}
}

// ServeHTTP routes snapshot requests.
// Expected paths: /api/snapshots, /api/snapshots/{id}.
func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/snapshots")
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

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type snapshotResponse struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt string `json:"created_at"`
}

type listSnapshotsResponse struct {
	Snapshots []snapshotResponse `json:"snapshots"`
}

func toSnapshotResponse(sn *store.Snapshot) snapshotResponse {
	return snapshotResponse{
		ID:        sn.ID,
		Path:      sn.Path,
		Width:     sn.Width,
		Height:    sn.Height,
		CreatedAt: sn.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// list handles GET /api/snapshots.
func (h *SnapshotHandler) list(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.store.Snapshots().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}

	response := listSnapshotsResponse{
		Snapshots: make([]snapshotResponse, 0, len(snapshots)),
	}
	for _, sn := range snapshots {
		response.Snapshots = append(response.Snapshots, toSnapshotResponse(sn))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/snapshots/{id}.
func (h *SnapshotHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sn, err := h.store.Snapshots().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Snapshot not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get snapshot")
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotResponse(sn))
}

// create handles POST /api/snapshots. The latest rendered frame is encoded
// as lossless WebP; an optional width query parameter rescales it.
func (h *SnapshotHandler) create(w http.ResponseWriter, r *http.Request) {
	frame := h.frames.LatestFrame()
	if frame == nil {
		writeError(w, http.StatusServiceUnavailable, "No frame rendered yet")
		return
	}

	if widthStr := r.URL.Query().Get("width"); widthStr != "" {
		width, err := strconv.Atoi(widthStr)
		if err != nil || width < 16 || width > 4096 {
			writeError(w, http.StatusBadRequest, "Invalid width")
			return
		}
		frame = rescale(frame, width)
	}

	if err := os.MkdirAll(h.dir, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create snapshot dir")
		return
	}

	id := uuid.New().String()
	path := filepath.Join(h.dir, id+".webp")

	file, err := os.Create(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create snapshot file")
		return
	}
	if err := nativewebp.Encode(file, frame, nil); err != nil {
		file.Close()
		os.Remove(path)
		writeError(w, http.StatusInternalServerError, "Failed to encode snapshot")
		return
	}
	if err := file.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to write snapshot")
		return
	}

	sn := &store.Snapshot{
		ID:     id,
		Path:   path,
		Width:  frame.Bounds().Dx(),
		Height: frame.Bounds().Dy(),
	}
	if err := h.store.Snapshots().Create(sn); err != nil {
		os.Remove(path)
		writeError(w, http.StatusInternalServerError, "Failed to record snapshot")
		return
	}

	writeJSON(w, http.StatusCreated, toSnapshotResponse(sn))
}

// delete handles DELETE /api/snapshots/{id}, removing the record and the
// file on disk.
func (h *SnapshotHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	sn, err := h.store.Snapshots().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Snapshot not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get snapshot")
		return
	}

	if err := h.store.Snapshots().Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete snapshot")
		return
	}
	os.Remove(sn.Path)

	w.WriteHeader(http.StatusNoContent)
}

// rescale resizes the frame to the given width, keeping the aspect ratio,
// with bilinear filtering.
func rescale(src *image.RGBA, width int) *image.RGBA {
	b := src.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
