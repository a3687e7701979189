package server

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"net/http"
	"time"
)

// streamInterval caps the MJPEG stream at ~15 FPS. The stream is a
// monitoring view, not the primary output path.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the rendered output as an MJPEG stream.
type StreamHandler struct {
	pipeline Pipeline
}

// NewStreamHandler creates a new StreamHandler reading rendered frames
// from the pipeline.
func NewStreamHandler(p Pipeline) *StreamHandler {
	return &StreamHandler{pipeline: p}
}

// ServeHTTP streams MJPEG frames to the client until it disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var buf bytes.Buffer
	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame := h.pipeline.LatestFrame()
		if frame == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		buf.Reset()
		if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: 85}); err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.Bytes())
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(streamInterval)
	}
}
