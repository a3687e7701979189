// Package gesture classifies raw hand landmarks into discrete gestures and
// maintains the temporally smoothed per-hand state the rest of the pipeline
// consumes.
package gesture

import (
	"math"

	"github.com/felice68russo-ops/Suspended-Reality/internal/detector"
)

// Gesture is the discrete classification of a hand's pose.
type Gesture int

const (
	// None means no recognized gesture (including no hand at all).
	None Gesture = iota
	// Palm means an open hand with the back facing the camera.
	Palm
	// Pinch means thumb and index tips in contact.
	Pinch
)

// String returns the canonical wire name of the gesture.
func (g Gesture) String() string {
	switch g {
	case Palm:
		return "PALM"
	case Pinch:
		return "PINCH"
	default:
		return "NONE"
	}
}

// NumSlots is the fixed number of hand slots. Both slots exist at all times;
// undetected hands decay toward neutral rather than being removed.
const NumSlots = 2

// Classification thresholds and smoothing factors. Distances are in
// normalized image units; the proximity scale is an empirical mapping of
// apparent hand size to camera distance.
const (
	pinchThreshold     = 0.05
	extensionMargin    = 1.1
	orientationEpsilon = 0.002
	proximityOffset    = 0.05
	proximityScale     = 0.20
	minHandSize        = 1e-6

	positionAlpha  = 0.25
	proximityAlpha = 0.10
	velocityAlpha  = 0.30

	// velocityScale converts the raw per-tick index-tip displacement into a
	// usable velocity magnitude.
	velocityScale = 50.0
)

// Fingertip carries the index fingertip position and its smoothed velocity.
type Fingertip struct {
	X  float64
	Y  float64
	VX float64
	VY float64
}

// HandState is the persistent per-slot state updated every tick. It survives
// ticks where the hand is lost, decaying toward neutral instead of resetting.
type HandState struct {
	Gesture   Gesture
	X         float64 // smoothed anchor position, [0,1]
	Y         float64
	Proximity float64 // smoothed camera-distance estimate, [0,1]
	IndexTip  Fingertip

	prevTipX float64
	prevTipY float64
	tipValid bool
}

// HandPoint is the canonical per-hand record exported unchanged to
// rendering, audio and UI collaborators.
type HandPoint struct {
	Gesture  string        `json:"gesture"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Z        float64       `json:"z"`
	IndexTip FingertipJSON `json:"indexTip"`
}

// FingertipJSON is the wire form of a fingertip sample.
type FingertipJSON struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Classifier turns per-frame landmark observations into smoothed HandStates
// for a fixed pair of hand slots. Slot assignment is positional: the first
// detected hand feeds slot 0, the second slot 1.
type Classifier struct {
	slots [NumSlots]HandState
}

// NewClassifier creates a Classifier with both slots at their neutral state:
// centered position, zero proximity, no gesture.
func NewClassifier() *Classifier {
	c := &Classifier{}
	c.Reset()
	return c
}

// Reset restores both slots to their startup state.
func (c *Classifier) Reset() {
	for i := range c.slots {
		c.slots[i] = HandState{X: 0.5, Y: 0.5}
	}
}

// Update processes one tick of landmark observations. hands may hold zero,
// one, or two entries; slots without an observation decay toward neutral.
// Classification is best-effort and never fails: degenerate geometry is
// treated as "no gesture".
func (c *Classifier) Update(hands []detector.HandLandmarks) {
	for i := range c.slots {
		if i < len(hands) {
			c.updateOccupied(&c.slots[i], &hands[i])
		} else {
			c.updateVacant(&c.slots[i])
		}
	}
}

// Slot returns a copy of the state for the given slot index.
func (c *Classifier) Slot(i int) HandState {
	return c.slots[i]
}

// HandPoints returns the canonical exported pair of hand records.
func (c *Classifier) HandPoints() [NumSlots]HandPoint {
	var out [NumSlots]HandPoint
	for i, s := range c.slots {
		out[i] = HandPoint{
			Gesture: s.Gesture.String(),
			X:       s.X,
			Y:       s.Y,
			Z:       s.Proximity,
			IndexTip: FingertipJSON{
				X:  s.IndexTip.X,
				Y:  s.IndexTip.Y,
				VX: s.IndexTip.VX,
				VY: s.IndexTip.VY,
			},
		}
	}
	return out
}

func (c *Classifier) updateOccupied(s *HandState, h *detector.HandLandmarks) {
	size := h.Size()
	if size < minHandSize {
		// Collapsed landmarks; the slot is effectively unobserved.
		c.updateVacant(s)
		return
	}

	// Proximity from apparent hand size
	targetProximity := clamp01((size - proximityOffset) / proximityScale)

	// Gesture resolution, pinch first
	gesture := None
	switch {
	case h.PinchDistance() < pinchThreshold:
		gesture = Pinch
	case h.ExtendedFingerCount(extensionMargin) >= 5 && isBackFacing(h):
		gesture = Palm
	}

	// Anchor target: thumb/index midpoint while pinching, middle-finger
	// base otherwise
	var targetX, targetY float64
	if gesture == Pinch {
		thumb := h.Points[detector.ThumbTip]
		index := h.Points[detector.IndexTip]
		targetX = (thumb.X + index.X) / 2
		targetY = (thumb.Y + index.Y) / 2
	} else {
		targetX = h.Points[detector.MiddleMCP].X
		targetY = h.Points[detector.MiddleMCP].Y
	}

	s.Gesture = gesture
	s.X += positionAlpha * (targetX - s.X)
	s.Y += positionAlpha * (targetY - s.Y)
	s.Proximity += proximityAlpha * (targetProximity - s.Proximity)

	// Index fingertip velocity: raw per-tick displacement scaled, then
	// smoothed to suppress detector jitter while keeping swipe direction.
	tip := h.Points[detector.IndexTip]
	if s.tipValid {
		rawVX := (tip.X - s.prevTipX) * velocityScale
		rawVY := (tip.Y - s.prevTipY) * velocityScale
		s.IndexTip.VX += velocityAlpha * (rawVX - s.IndexTip.VX)
		s.IndexTip.VY += velocityAlpha * (rawVY - s.IndexTip.VY)
	}
	s.IndexTip.X = tip.X
	s.IndexTip.Y = tip.Y
	s.prevTipX = tip.X
	s.prevTipY = tip.Y
	s.tipValid = true
}

// updateVacant decays an unobserved slot: gesture drops to None, proximity
// eases toward zero, velocity is zeroed so a lost hand cannot keep smearing,
// and the last known position is retained.
func (c *Classifier) updateVacant(s *HandState) {
	s.Gesture = None
	s.Proximity += proximityAlpha * (0 - s.Proximity)
	s.IndexTip.VX = 0
	s.IndexTip.VY = 0
	s.tipValid = false
}

// isBackFacing tests whether the back of the hand faces the camera. The
// cross-product sign convention mirrors between handedness labels.
func isBackFacing(h *detector.HandLandmarks) bool {
	cross := h.PalmCross()
	if h.Handedness == "Left" {
		cross = -cross
	}
	return cross < -orientationEpsilon
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
