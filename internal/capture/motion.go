package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection defaults. The detector only needs to answer "is anyone
// in front of the camera", so the threshold is coarse on purpose.
const (
	// DefaultMotionThreshold is the fraction of changed pixels that counts
	// as motion.
	DefaultMotionThreshold = 0.01
	// pixelDiffThreshold is the per-pixel gray delta that counts as changed.
	pixelDiffThreshold = 25
	blurKernelSize     = 21
)

// MotionDetector compares consecutive frames and reports whether enough of
// the image changed. The engine uses it to drop to the idle tick rate when
// nobody is interacting.
type MotionDetector struct {
	mu        sync.Mutex
	prevGray  gocv.Mat
	hasPrev   bool
	threshold float64
}

// NewMotionDetector creates a motion detector with the default threshold.
func NewMotionDetector() *MotionDetector {
	return &MotionDetector{
		prevGray:  gocv.NewMat(),
		threshold: DefaultMotionThreshold,
	}
}

// SetThreshold sets the changed-pixel fraction that counts as motion.
// Values outside (0, 1] are ignored.
func (m *MotionDetector) SetThreshold(t float64) {
	if t <= 0 || t > 1 {
		return
	}
	m.mu.Lock()
	m.threshold = t
	m.mu.Unlock()
}

// Detect reports whether the frame differs from the previous one by more
// than the threshold. The first frame never counts as motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	gocv.GaussianBlur(gray, &gray, image.Pt(blurKernelSize, blurKernelSize), 0, 0, gocv.BorderDefault)

	if !m.hasPrev {
		gray.CopyTo(&m.prevGray)
		m.hasPrev = true
		return false
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, m.prevGray, &diff)
	gocv.Threshold(diff, &diff, pixelDiffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(diff)
	total := diff.Rows() * diff.Cols()

	gray.CopyTo(&m.prevGray)

	if total == 0 {
		return false
	}
	return float64(changed)/float64(total) >= m.threshold
}

// Reset forgets the previous frame so the next Detect call re-baselines.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	m.hasPrev = false
	m.mu.Unlock()
}

// Close releases the detector's internal buffers.
func (m *MotionDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prevGray.Close()
}
