package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Translated returns a copy of the landmarks shifted by (dx, dy) in
// normalized image coordinates. Useful for positioning fixtures.
func (h HandLandmarks) Translated(dx, dy float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}

// OpenPalmBackLandmarks returns a preset right hand with all five fingers
// extended and the back of the hand facing the camera. The wrist sits at
// (0.5, 0.8) and the middle-finger base at (0.5, 0.66).
func OpenPalmBackLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.59, Y: 0.72, Z: 0.02}
	landmarks.Points[ThumbIP] = Point3D{X: 0.62, Y: 0.68, Z: 0.02}
	landmarks.Points[ThumbTip] = Point3D{X: 0.70, Y: 0.60, Z: 0.02}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.58, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.57, Y: 0.48, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.40, Z: 0.0}

	// Middle finger extended upward
	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.55, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.45, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.35, Z: 0.0}

	// Ring finger extended upward
	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.44, Y: 0.58, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.43, Y: 0.48, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.40, Z: 0.0}

	// Pinky finger extended upward
	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.38, Y: 0.62, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.365, Y: 0.55, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.48, Z: 0.0}

	return landmarks
}

// OpenPalmFrontLandmarks returns the mirror of OpenPalmBackLandmarks: the
// same right hand with the palm facing the camera. All fingers are extended
// but the orientation test fails, so this must not classify as an open palm.
func OpenPalmFrontLandmarks() HandLandmarks {
	landmarks := OpenPalmBackLandmarks()
	for i := range landmarks.Points {
		landmarks.Points[i].X = 1.0 - landmarks.Points[i].X
	}
	return landmarks
}

// PinchLandmarks returns a preset right hand with thumb and index tips
// touching and the remaining fingers curled. The pinch midpoint sits at
// (0.525, 0.545).
func PinchLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}

	// Thumb reaching toward the index tip
	landmarks.Points[ThumbCMC] = Point3D{X: 0.54, Y: 0.76, Z: 0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.56, Y: 0.70, Z: 0.01}
	landmarks.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.62, Z: 0.01}
	landmarks.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.55, Z: 0.01}

	// Index finger meeting the thumb
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.62, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.57, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.53, Y: 0.54, Z: 0.0}

	// Middle finger curled
	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: -0.01}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.60, Z: -0.03}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.49, Y: 0.63, Z: -0.03}
	landmarks.Points[MiddleTip] = Point3D{X: 0.48, Y: 0.66, Z: -0.02}

	// Ring finger curled
	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: -0.01}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.62, Z: -0.03}
	landmarks.Points[RingDIP] = Point3D{X: 0.44, Y: 0.65, Z: -0.03}
	landmarks.Points[RingTip] = Point3D{X: 0.43, Y: 0.68, Z: -0.02}

	// Pinky finger curled
	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: -0.01}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.65, Z: -0.03}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.39, Y: 0.68, Z: -0.03}
	landmarks.Points[PinkyTip] = Point3D{X: 0.38, Y: 0.70, Z: -0.02}

	return landmarks
}

// RelaxedLandmarks returns a preset right hand with fingers loosely curled:
// no pinch, no open palm. Classifies as no gesture.
func RelaxedLandmarks() HandLandmarks {
	landmarks := PinchLandmarks()

	// Separate thumb and index so the pinch test fails
	landmarks.Points[ThumbTip] = Point3D{X: 0.60, Y: 0.64, Z: 0.01}
	landmarks.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.68, Z: 0.01}
	landmarks.Points[IndexTip] = Point3D{X: 0.52, Y: 0.58, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.54, Y: 0.60, Z: 0.0}

	return landmarks
}
