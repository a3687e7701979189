// Package engine orchestrates the distortion pipeline: camera frames in,
// classified hand state through physics and the accumulation field, rendered
// frames out.
package engine

import (
	"image"
	"log"
	"sync"
	"time"

	"github.com/felice68russo-ops/Suspended-Reality/internal/capture"
	"github.com/felice68russo-ops/Suspended-Reality/internal/composite"
	"github.com/felice68russo-ops/Suspended-Reality/internal/config"
	"github.com/felice68russo-ops/Suspended-Reality/internal/detector"
	"github.com/felice68russo-ops/Suspended-Reality/internal/field"
	"github.com/felice68russo-ops/Suspended-Reality/internal/gesture"
	"github.com/felice68russo-ops/Suspended-Reality/internal/physics"
	"github.com/felice68russo-ops/Suspended-Reality/internal/sink"
)

// idleTimeout is how long the pipeline waits without motion before dropping
// to the idle tick rate.
const idleTimeout = 2 * time.Second

// Engine owns the pipeline state and the tick loop.
type Engine struct {
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	classifier *gesture.Classifier
	springs    [gesture.NumSlots]*physics.State
	field      *field.Field
	renderer   *composite.Renderer
	sinks      *sink.Pool

	mu      sync.RWMutex
	cfg     config.Config
	enabled bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// latest published tick outputs, read by the HTTP layer
	outMu       sync.RWMutex
	latestFrame *image.RGBA
	latestHands [gesture.NumSlots]gesture.HandPoint
	engineTime  float64
}

// New creates an Engine with the given camera, detector, and tuning knobs.
// Sinks may be nil.
func New(camera capture.Camera, det detector.Detector, sinks *sink.Pool, cfg config.Config) *Engine {
	cfg.Clamp()

	e := &Engine{
		camera:     camera,
		motion:     capture.NewMotionDetector(),
		detector:   det,
		classifier: gesture.NewClassifier(),
		field:      field.New(cfg.FieldWidth, cfg.FieldHeight),
		renderer:   composite.NewRenderer(cfg.Workers),
		sinks:      sinks,
		cfg:        cfg,
	}
	for i := range e.springs {
		e.springs[i] = physics.NewState()
	}
	return e
}

// SetEnabled enables or disables the pipeline. While disabled, frames pass
// through unprocessed and the simulation state is reset.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	wasEnabled := e.enabled
	e.enabled = enabled
	e.mu.Unlock()

	if wasEnabled && !enabled {
		e.resetState()
	}
}

// IsEnabled returns whether the pipeline is currently enabled.
func (e *Engine) IsEnabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enabled
}

// resetState clears the simulation so re-enabling starts from neutral.
func (e *Engine) resetState() {
	e.classifier.Reset()
	for _, s := range e.springs {
		s.Reset()
	}
	e.field.Clear()
	e.motion.Reset()
}

// CurrentParams returns the active tuning knobs.
func (e *Engine) CurrentParams() config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// ApplyParams replaces the tuning knobs. They take effect at the top of the
// next tick; a tick in flight finishes with the knobs it started with.
func (e *Engine) ApplyParams(cfg config.Config) {
	cfg.Clamp()

	e.mu.Lock()
	resize := cfg.FieldWidth != e.cfg.FieldWidth || cfg.FieldHeight != e.cfg.FieldHeight
	e.cfg = cfg
	e.mu.Unlock()

	if resize {
		e.mu.Lock()
		e.field = field.New(cfg.FieldWidth, cfg.FieldHeight)
		e.mu.Unlock()
	}
}

// LatestFrame returns the most recently rendered frame, or nil before the
// first tick.
func (e *Engine) LatestFrame() *image.RGBA {
	e.outMu.RLock()
	defer e.outMu.RUnlock()
	return e.latestFrame
}

// LatestHands returns the engine time and hand state of the latest tick.
func (e *Engine) LatestHands() (float64, [gesture.NumSlots]gesture.HandPoint) {
	e.outMu.RLock()
	defer e.outMu.RUnlock()
	return e.engineTime, e.latestHands
}

// FieldStats summarizes the accumulation field.
func (e *Engine) FieldStats() field.Stats {
	e.mu.RLock()
	f := e.field
	e.mu.RUnlock()
	return f.Stats()
}

// Start opens the camera and begins the tick loop.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopCh != nil {
		return nil
	}

	if err := e.camera.Open(); err != nil {
		return err
	}
	e.camera.SetFPS(e.cfg.IdleFPS)

	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	go e.run(e.stopCh, e.doneCh)

	log.Println("Pipeline started")
	return nil
}

// Stop halts the tick loop and releases resources. It waits for a tick in
// flight to finish before closing the camera and detector, and is a no-op
// when the loop is not running.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopCh == nil {
		e.mu.Unlock()
		return
	}
	close(e.stopCh)
	e.stopCh = nil
	done := e.doneCh
	e.doneCh = nil
	e.mu.Unlock()

	<-done

	if err := e.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	e.motion.Close()
	if e.detector != nil {
		if err := e.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	e.resetState()

	log.Println("Pipeline stopped")
}
