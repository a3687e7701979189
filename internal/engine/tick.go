package engine

import (
	"image"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/felice68russo-ops/Suspended-Reality/internal/capture"
	"github.com/felice68russo-ops/Suspended-Reality/internal/composite"
	"github.com/felice68russo-ops/Suspended-Reality/internal/config"
	"github.com/felice68russo-ops/Suspended-Reality/internal/detector"
	"github.com/felice68russo-ops/Suspended-Reality/internal/field"
	"github.com/felice68russo-ops/Suspended-Reality/internal/gesture"
	"github.com/felice68russo-ops/Suspended-Reality/internal/sink"
)

// brushIntensityGain is the per-tick intensity gain the field brushes use.
// It saturates a held stroke in a handful of ticks without letting a single
// fast swipe blow straight to full intensity.
const brushIntensityGain = 0.5

// run is the tick loop. It reads frames at the idle rate until motion shows
// up, then at the target rate until motion has been absent for idleTimeout.
// done is closed on exit so Stop can wait out a tick in flight.
func (e *Engine) run(stopCh, done chan struct{}) {
	defer close(done)

	activeMode := false
	lastMotion := time.Now()
	lastTick := time.Now()

	cfg := e.CurrentParams()
	ticker := time.NewTicker(time.Second / time.Duration(cfg.IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTick).Seconds()
			lastTick = now

			cfg := e.CurrentParams()

			frame, err := e.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				// A missing frame is a tick with no hands: gesture state
				// decays, springs rebound, the field keeps fading.
				if e.IsEnabled() {
					e.Tick(cfg, nil, nil, dt)
				}
				continue
			}

			if e.motion.Detect(frame) {
				lastMotion = now
				if !activeMode {
					activeMode = true
					e.camera.SetFPS(cfg.TargetFPS)
					ticker.Reset(time.Second / time.Duration(cfg.TargetFPS))
					log.Println("Switched to active mode")
				}
			} else if activeMode && now.Sub(lastMotion) > idleTimeout {
				activeMode = false
				e.camera.SetFPS(cfg.IdleFPS)
				ticker.Reset(time.Second / time.Duration(cfg.IdleFPS))
				log.Println("Switched to idle mode")
			}

			if !e.IsEnabled() {
				e.passthrough(frame)
				continue
			}

			hands, err := e.detector.Detect(frame)
			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				hands = nil
			}

			src, err := capture.ToRGBA(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error converting frame: %v", err)
				src = nil
			}

			e.Tick(cfg, src, hands, dt)
		}
	}
}

// passthrough publishes the frame unprocessed.
func (e *Engine) passthrough(frame *gocv.Mat) {
	src, err := capture.ToRGBA(frame)
	frame.Close()
	if err != nil {
		log.Printf("Error converting frame: %v", err)
		return
	}

	dst := image.NewRGBA(src.Bounds())
	composite.Passthrough(dst, composite.NewImageSource(src))

	e.outMu.Lock()
	e.latestFrame = dst
	e.latestHands = e.classifier.HandPoints()
	e.outMu.Unlock()
}

// Tick runs one full pipeline step. It is the unit the loop and the tests
// share: classify, integrate, accumulate, render, publish. src may be nil
// when no frame is available; the simulation still advances and the previous
// output frame stays published.
func (e *Engine) Tick(cfg config.Config, src *image.RGBA, hands []detector.HandLandmarks, dt float64) {
	e.classifier.Update(hands)

	var compHands [gesture.NumSlots]composite.Hand
	brushes := make([]field.Brush, 0, gesture.NumSlots)

	for i := range e.springs {
		state := e.classifier.Slot(i)
		e.springs[i].Update(state, cfg.StretchStiffness, cfg.ReboundElasticity, dt)

		compHands[i] = composite.Hand{
			Gesture:   state.Gesture,
			X:         state.X,
			Y:         state.Y,
			Proximity: state.Proximity,
			AnchorX:   e.springs[i].AnchorX,
			AnchorY:   e.springs[i].AnchorY,
			StretchX:  e.springs[i].StretchX,
			StretchY:  e.springs[i].StretchY,
		}
		brushes = append(brushes, field.Brush{
			X:  state.IndexTip.X,
			Y:  state.IndexTip.Y,
			VX: state.IndexTip.VX,
			VY: state.IndexTip.VY,
		})
	}

	e.mu.RLock()
	f := e.field
	e.mu.RUnlock()

	f.Step(field.Params{
		DecayRate:     cfg.DecayRate,
		BrushRadius:   cfg.BrushRadius,
		IntensityGain: brushIntensityGain,
	}, brushes)

	e.outMu.RLock()
	engineTime := e.engineTime
	e.outMu.RUnlock()
	engineTime += dt * cfg.AnimationSpeed

	var dst *image.RGBA
	if src != nil {
		in := &composite.Inputs{
			Params: composite.Params{
				Reflection:         cfg.Reflection,
				RefractionIndex:    cfg.RefractionIndex,
				DistortionStrength: cfg.DistortionStrength,
				WaveHeight:         cfg.WaveHeight,
				RippleStrength:     cfg.RippleStrength,
				GrabRadius:         cfg.GrabRadius,
				BlendSoftness:      cfg.BlendSoftness,
				SmearIntensity:     cfg.SmearIntensity,
				ColorBleed:         cfg.ColorBleed,
			},
			Time:   engineTime,
			Hands:  compHands,
			Field:  f,
			Source: composite.NewImageSource(src),
		}

		dst = image.NewRGBA(src.Bounds())
		e.renderer.Render(dst, in)
	}

	handPoints := e.classifier.HandPoints()

	e.outMu.Lock()
	if dst != nil {
		e.latestFrame = dst
	}
	e.latestHands = handPoints
	e.engineTime = engineTime
	e.outMu.Unlock()

	if e.sinks != nil {
		e.sinks.Broadcast(sink.Frame{Time: engineTime, Hands: handPoints})
	}
}
