// Package physics converts pinch gestures into stretch vectors via a
// spring-damper model with a two-state drag machine per hand.
package physics

import "github.com/felice68russo-ops/Suspended-Reality/internal/gesture"

// Integration constants.
const (
	// DefaultStiffness is the spring constant pulling stretch back to zero.
	DefaultStiffness = 10.0

	// maxStep clamps the integration delta time so a long frame gap cannot
	// destabilize the spring.
	maxStep = 0.1

	// restThreshold is the combined squared stretch + squared velocity below
	// which both are snapped to exactly zero, guaranteeing termination.
	restThreshold = 1e-6
)

// State holds the spring-damper state for one hand slot.
type State struct {
	AnchorX    float64
	AnchorY    float64
	StretchX   float64
	StretchY   float64
	VelocityX  float64
	VelocityY  float64
	IsDragging bool
}

// NewState creates a State with the anchor at screen center and the spring
// at rest.
func NewState() *State {
	return &State{AnchorX: 0.5, AnchorY: 0.5}
}

// Reset returns the state to its startup values.
func (s *State) Reset() {
	*s = State{AnchorX: 0.5, AnchorY: 0.5}
}

// Update advances the state by one tick. hand supplies the current gesture
// and smoothed position; stiffness and elasticity are the live tuning knobs
// (elasticity maps to damping as 5·(1.05−elasticity)); dt is the tick's
// delta time in seconds.
//
// State machine:
//   - Idle→Dragging on the gesture becoming PINCH: the anchor snaps to the
//     current position and stretch/velocity are zeroed.
//   - Dragging: stretch is the raw anchor-to-position delta, not integrated.
//   - Dragging→Idle when the gesture leaves PINCH.
//   - Idle: a damped spring pulls stretch toward zero with a semi-implicit
//     Euler step, snapping to exact rest below restThreshold.
func (s *State) Update(hand gesture.HandState, stiffness, elasticity, dt float64) {
	pinching := hand.Gesture == gesture.Pinch

	if pinching && !s.IsDragging {
		s.IsDragging = true
		s.AnchorX = hand.X
		s.AnchorY = hand.Y
		s.StretchX = 0
		s.StretchY = 0
		s.VelocityX = 0
		s.VelocityY = 0
	} else if !pinching && s.IsDragging {
		s.IsDragging = false
	}

	if s.IsDragging {
		s.StretchX = hand.X - s.AnchorX
		s.StretchY = hand.Y - s.AnchorY
		return
	}

	s.integrate(stiffness, elasticity, dt)
}

// integrate runs one damped-spring step toward zero stretch.
func (s *State) integrate(stiffness, elasticity, dt float64) {
	if dt <= 0 {
		return
	}
	if dt > maxStep {
		dt = maxStep
	}
	if stiffness <= 0 {
		stiffness = DefaultStiffness
	}

	damping := 5.0 * (1.05 - elasticity)

	ax := -stiffness*s.StretchX - damping*s.VelocityX
	ay := -stiffness*s.StretchY - damping*s.VelocityY

	// Semi-implicit Euler: velocity first, then position with the new
	// velocity.
	s.VelocityX += ax * dt
	s.VelocityY += ay * dt
	s.StretchX += s.VelocityX * dt
	s.StretchY += s.VelocityY * dt

	energy := s.StretchX*s.StretchX + s.StretchY*s.StretchY +
		s.VelocityX*s.VelocityX + s.VelocityY*s.VelocityY
	if energy < restThreshold {
		s.StretchX = 0
		s.StretchY = 0
		s.VelocityX = 0
		s.VelocityY = 0
	}
}

// AtRest reports whether the spring has fully settled.
func (s *State) AtRest() bool {
	return !s.IsDragging &&
		s.StretchX == 0 && s.StretchY == 0 &&
		s.VelocityX == 0 && s.VelocityY == 0
}
