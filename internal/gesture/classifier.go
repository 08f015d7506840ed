package gesture

import (
	"math"

	"github.com/ayusman/flashgesture/internal/detector"
)

// PoseClassifier maps one hand to a Symbol. Implementations are pure.
type PoseClassifier interface {
	Classify(hand *detector.HandLandmarks) Symbol
}

// ClassifierConfig holds the geometric thresholds.
type ClassifierConfig struct {
	// ThumbExtendedAngle is the joint angle at the thumb MCP, in degrees, that a thumb must
	// exceed to count as extended. A straight thumb measures 180.
	ThumbExtendedAngle float64

	// VerticalThreshold bounds the thumb/palm alignment for up and down.
	VerticalThreshold float64

	// SidewaysThreshold bounds the alignment magnitude for sideways.
	SidewaysThreshold float64

	// Fallback2D classifies poses without depth using screen-space geometry instead of
	// returning None.
	Fallback2D bool

	// Thumb2DAngle is the extended-thumb angle used by the 2D fallback.
	Thumb2DAngle float64

	// Offset2D is the wrist-relative thumb displacement, in palm lengths, the 2D fallback
	// needs before it commits to a direction.
	Offset2D float64
}

// DefaultClassifierConfig returns the calibrated thresholds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		ThumbExtendedAngle: 150,
		VerticalThreshold:  0.7,
		SidewaysThreshold:  0.3,
		Fallback2D:         false,
		Thumb2DAngle:       120,
		Offset2D:           0.5,
	}
}

// required lists the landmarks the 3D method reads.
var required = []int{
	detector.Wrist,
	detector.ThumbCMC,
	detector.ThumbMCP,
	detector.ThumbIP,
	detector.ThumbTip,
	detector.IndexMCP,
	detector.PinkyMCP,
}

// Classifier is the geometric thumb classifier.
type Classifier struct {
	config ClassifierConfig
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(config ClassifierConfig) *Classifier {
	return &Classifier{config: config}
}

// Config returns the thresholds in use.
func (c *Classifier) Config() ClassifierConfig {
	return c.config
}

// Classify returns the thumb gesture shown by hand.
//
// A missing hand, a hand with fewer than detector.NumLandmarks points or without depth on a
// required landmark yields None, unless Fallback2D is set and only depth is missing.
// Classify never returns an error and never panics on degenerate input.
func (c *Classifier) Classify(hand *detector.HandLandmarks) Symbol {
	if !hand.Complete() {
		return None
	}
	if !hand.Has3D(required...) {
		if c.config.Fallback2D && onlyDepthMissing(hand) {
			return classify2D(hand, c.config)
		}
		return None
	}

	p := hand.Points
	angle, ok := jointAngle(p[detector.ThumbCMC], p[detector.ThumbMCP], p[detector.ThumbTip])
	if !ok || angle <= c.config.ThumbExtendedAngle {
		return None
	}

	wrist := p[detector.Wrist]
	palm := p[detector.IndexMCP].Midpoint(p[detector.PinkyMCP])

	thumbDir, ok := unit(p[detector.ThumbTip].Sub(wrist))
	if !ok {
		return None
	}
	palmDir, ok := unit(palm.Sub(wrist))
	if !ok {
		return None
	}

	// Overflowing coordinates leave NaN here, which matches no band.
	return orientation(thumbDir.Y*palmDir.Y, c.config)
}

// onlyDepthMissing reports whether the required landmarks have finite x and y and a z that
// is either finite or absent. Infinite depth is malformed, not missing.
func onlyDepthMissing(hand *detector.HandLandmarks) bool {
	for _, i := range required {
		p, ok := hand.Point(i)
		if !ok || !p.FiniteXY() || math.IsInf(p.Z, 0) {
			return false
		}
	}
	return true
}

func orientation(v float64, config ClassifierConfig) Symbol {
	switch {
	case v < -config.VerticalThreshold:
		return ThumbsUp
	case v > config.VerticalThreshold:
		return ThumbsDown
	case math.Abs(v) < config.SidewaysThreshold:
		return ThumbsSideways
	default:
		return None
	}
}

// jointAngle returns the angle at b between the rays b->a and b->c, in degrees.
func jointAngle(a, b, c detector.Point3D) (float64, bool) {
	ba := a.Sub(b)
	bc := c.Sub(b)
	n := ba.Norm() * bc.Norm()
	if n < 1e-12 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	cos := ba.Dot(bc) / n
	if math.IsNaN(cos) {
		return 0, false
	}
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, true
}

func unit(v detector.Point3D) (detector.Point3D, bool) {
	n := v.Norm()
	if n < 1e-12 || math.IsNaN(n) || math.IsInf(n, 0) {
		return detector.Point3D{}, false
	}
	return detector.Point3D{X: v.X / n, Y: v.Y / n, Z: v.Z / n}, true
}
