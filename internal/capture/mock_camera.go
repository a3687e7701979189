package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera is a Camera implementation backed by a fixed frame sequence,
// used by tests and the end-to-end suite.
type MockCamera struct {
	mu      sync.Mutex
	frames  []gocv.Mat
	index   int
	loop    bool
	running bool
	fps     int
}

// NewMockCamera creates a mock camera that plays the given frames in order.
// With loop set, playback wraps around instead of running dry.
func NewMockCamera(frames []gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

// Open marks the camera as running.
func (m *MockCamera) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	return nil
}

// Close marks the camera as stopped. The frames themselves belong to the
// caller and are not released here.
func (m *MockCamera) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	return nil
}

// ReadFrame returns a clone of the next frame in the sequence.
func (m *MockCamera) ReadFrame() (*gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil, ErrCameraNotOpen
	}
	if len(m.frames) == 0 {
		return nil, errors.New("mock camera has no frames")
	}
	if m.index >= len(m.frames) {
		if !m.loop {
			return nil, errors.New("mock camera ran out of frames")
		}
		m.index = 0
	}

	frame := m.frames[m.index].Clone()
	m.index++
	return &frame, nil
}

// SetFPS sets the reported frame rate.
func (m *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	m.mu.Lock()
	m.fps = fps
	m.mu.Unlock()
}

// FPS returns the reported frame rate.
func (m *MockCamera) FPS() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}

// IsOpen returns true while the mock camera is running.
func (m *MockCamera) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Rewind restarts playback from the first frame.
func (m *MockCamera) Rewind() {
	m.mu.Lock()
	m.index = 0
	m.mu.Unlock()
}
