package gesture

import (
	"math"

	"github.com/ayusman/flashgesture/internal/detector"
)

// fingers pairs each non-thumb fingertip with its PIP joint.
var fingers = [][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// Classifier2D classifies screen-space landmarks. It counts curled fingers and reads the
// thumb direction from its offset to the wrist, so it can disagree with Classifier on the
// same pose.
type Classifier2D struct {
	config ClassifierConfig
}

// NewClassifier2D creates a screen-space classifier.
func NewClassifier2D(config ClassifierConfig) *Classifier2D {
	return &Classifier2D{config: config}
}

// Classify ignores depth entirely.
func (c *Classifier2D) Classify(hand *detector.HandLandmarks) Symbol {
	if !hand.Complete() {
		return None
	}
	return classify2D(hand, c.config)
}

func classify2D(hand *detector.HandLandmarks, config ClassifierConfig) Symbol {
	p := hand.Points
	for i := 0; i < detector.NumLandmarks; i++ {
		if !p[i].FiniteXY() {
			return None
		}
	}
	wrist := flat(p[detector.Wrist])

	scale := flat(p[detector.MiddleMCP]).Sub(wrist).Norm()
	if scale < 1e-12 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return None
	}

	curled := 0
	for _, f := range fingers {
		tip := flat(p[f[0]]).Sub(wrist).Norm()
		pip := flat(p[f[1]]).Sub(wrist).Norm()
		if tip < pip {
			curled++
		}
	}
	if curled < 3 {
		return Other
	}

	angle, ok := jointAngle(flat(p[detector.ThumbCMC]), flat(p[detector.ThumbMCP]), flat(p[detector.ThumbTip]))
	if !ok || angle <= config.Thumb2DAngle {
		return Other
	}

	tip := flat(p[detector.ThumbTip])
	dx := (tip.X - wrist.X) / scale
	dy := (tip.Y - wrist.Y) / scale

	switch {
	case dy < -config.Offset2D:
		return ThumbsUp
	case dy > config.Offset2D:
		return ThumbsDown
	case math.Abs(dx) > config.Offset2D:
		return ThumbsSideways
	default:
		return None
	}
}

func flat(p detector.Point3D) detector.Point3D {
	return detector.Point3D{X: p.X, Y: p.Y}
}
