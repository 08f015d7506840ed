package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many frames were passed to Detect.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// fist returns a right hand with the four fingers curled below the wrist.
// The thumb joints are filled in by the callers.
func fist() HandLandmarks {
	h := HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.50, Z: 0.0}

	h.Points[IndexMCP] = Point3D{X: 0.45, Y: 0.62, Z: -0.02}
	h.Points[IndexPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.03}
	h.Points[IndexDIP] = Point3D{X: 0.47, Y: 0.66, Z: -0.03}
	h.Points[IndexTip] = Point3D{X: 0.47, Y: 0.62, Z: -0.02}

	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.62, Z: -0.02}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.69, Z: -0.03}
	h.Points[MiddleDIP] = Point3D{X: 0.52, Y: 0.67, Z: -0.03}
	h.Points[MiddleTip] = Point3D{X: 0.52, Y: 0.63, Z: -0.02}

	h.Points[RingMCP] = Point3D{X: 0.55, Y: 0.62, Z: -0.02}
	h.Points[RingPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.03}
	h.Points[RingDIP] = Point3D{X: 0.57, Y: 0.66, Z: -0.03}
	h.Points[RingTip] = Point3D{X: 0.57, Y: 0.62, Z: -0.02}

	h.Points[PinkyMCP] = Point3D{X: 0.59, Y: 0.61, Z: -0.02}
	h.Points[PinkyPIP] = Point3D{X: 0.59, Y: 0.66, Z: -0.03}
	h.Points[PinkyDIP] = Point3D{X: 0.61, Y: 0.64, Z: -0.03}
	h.Points[PinkyTip] = Point3D{X: 0.61, Y: 0.61, Z: -0.02}

	return h
}

func withThumb(cmc, mcp, ip, tip Point3D) HandLandmarks {
	h := fist()
	h.Points[ThumbCMC] = cmc
	h.Points[ThumbMCP] = mcp
	h.Points[ThumbIP] = ip
	h.Points[ThumbTip] = tip
	return h
}

// ThumbsUpLandmarks returns a fist with the thumb straight and pointing up the image.
func ThumbsUpLandmarks() HandLandmarks {
	return withThumb(
		Point3D{X: 0.50, Y: 0.45, Z: 0.0},
		Point3D{X: 0.50, Y: 0.40, Z: 0.0},
		Point3D{X: 0.50, Y: 0.33, Z: 0.0},
		Point3D{X: 0.50, Y: 0.25, Z: 0.0},
	)
}

// ThumbsDownLandmarks returns a fist with the thumb straight and pointing down the image.
func ThumbsDownLandmarks() HandLandmarks {
	return withThumb(
		Point3D{X: 0.47, Y: 0.55, Z: 0.0},
		Point3D{X: 0.46, Y: 0.60, Z: 0.0},
		Point3D{X: 0.46, Y: 0.67, Z: 0.0},
		Point3D{X: 0.46, Y: 0.75, Z: 0.0},
	)
}

// ThumbsSidewaysLandmarks returns a fist with the thumb straight and horizontal.
func ThumbsSidewaysLandmarks() HandLandmarks {
	return withThumb(
		Point3D{X: 0.55, Y: 0.50, Z: 0.0},
		Point3D{X: 0.60, Y: 0.50, Z: 0.0},
		Point3D{X: 0.67, Y: 0.50, Z: 0.0},
		Point3D{X: 0.75, Y: 0.50, Z: 0.0},
	)
}

// CurledThumbLandmarks returns a closed fist with the thumb folded over the fingers.
func CurledThumbLandmarks() HandLandmarks {
	return withThumb(
		Point3D{X: 0.50, Y: 0.45, Z: 0.0},
		Point3D{X: 0.50, Y: 0.40, Z: 0.0},
		Point3D{X: 0.47, Y: 0.38, Z: 0.0},
		Point3D{X: 0.47, Y: 0.43, Z: 0.0},
	)
}

// DiagonalThumbLandmarks returns a straight thumb pointing up and to the side,
// an orientation between the vertical and sideways bands.
func DiagonalThumbLandmarks() HandLandmarks {
	return withThumb(
		Point3D{X: 0.54, Y: 0.48, Z: 0.0},
		Point3D{X: 0.58, Y: 0.46, Z: 0.0},
		Point3D{X: 0.64, Y: 0.43, Z: 0.0},
		Point3D{X: 0.70, Y: 0.40, Z: 0.0},
	)
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	h := HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	h.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	h.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	h.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	h.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	h.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	h.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	h.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	h.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	h.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	h.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	h.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	h.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	h.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	h.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	h.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	h.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return h
}

// WithoutDepth returns a copy of h with every z removed.
func WithoutDepth(h HandLandmarks) HandLandmarks {
	out := h
	out.Points = make([]Point3D, len(h.Points))
	for i, p := range h.Points {
		out.Points[i] = Point3D{X: p.X, Y: p.Y, Z: math.NaN()}
	}
	return out
}
