// Package detector provides hand landmark acquisition for the gesture pipeline.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point with x, y in normalized image coordinates
// and z as MediaPipe's relative depth estimate.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceXY returns the Euclidean distance to other in the image plane.
// MediaPipe z lives on a different scale than x/y, so geometric tests that
// compare against image-plane thresholds ignore it.
func (p Point3D) DistanceXY(other Point3D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// fingerTips and fingerMids pair each fingertip with its mid joint
// (PIP for the four fingers, IP for the thumb) for extension tests.
var (
	fingerTips = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}
	fingerMids = [5]int{ThumbIP, IndexPIP, MiddlePIP, RingPIP, PinkyPIP}
)

// ExtendedFingerCount returns how many fingers have their tip farther from
// the wrist than the corresponding mid joint by the given margin (e.g. 1.1
// means the tip must be at least 10% farther out than the mid joint).
func (h *HandLandmarks) ExtendedFingerCount(margin float64) int {
	wrist := h.Points[Wrist]
	count := 0
	for i := 0; i < 5; i++ {
		tipDist := h.Points[fingerTips[i]].DistanceXY(wrist)
		midDist := h.Points[fingerMids[i]].DistanceXY(wrist)
		if tipDist > margin*midDist {
			count++
		}
	}
	return count
}

// PalmCross returns the z component of the 2D cross product of the
// wrist→indexMCP and wrist→pinkyMCP vectors. Its sign encodes which side of
// the hand faces the camera; the convention is mirrored between left and
// right hands.
func (h *HandLandmarks) PalmCross() float64 {
	wrist := h.Points[Wrist]
	ix := h.Points[IndexMCP].X - wrist.X
	iy := h.Points[IndexMCP].Y - wrist.Y
	px := h.Points[PinkyMCP].X - wrist.X
	py := h.Points[PinkyMCP].Y - wrist.Y
	return ix*py - iy*px
}

// PinchDistance returns the image-plane distance between thumb tip and
// index tip.
func (h *HandLandmarks) PinchDistance() float64 {
	return h.Points[ThumbTip].DistanceXY(h.Points[IndexTip])
}

// Size estimates apparent hand size as the wrist to middle-finger-base
// distance. It is the basis for the proximity approximation of camera
// distance.
func (h *HandLandmarks) Size() float64 {
	return h.Points[Wrist].DistanceXY(h.Points[MiddleMCP])
}
