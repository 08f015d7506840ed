// Package detector provides hand detection interfaces and landmark types.
package detector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

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

// Point3D is a landmark position. A missing depth is stored as NaN in Z.
type Point3D struct {
	X float64
	Y float64
	Z float64
}

// HasZ reports whether the point carries a depth value.
func (p Point3D) HasZ() bool {
	return !math.IsNaN(p.Z)
}

// Finite reports whether every coordinate is a finite number. A missing z is not finite.
func (p Point3D) Finite() bool {
	return finite(p.X) && finite(p.Y) && finite(p.Z)
}

// FiniteXY reports whether the image-plane coordinates are finite numbers.
func (p Point3D) FiniteXY() bool {
	return finite(p.X) && finite(p.Y)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Sub returns p - q.
func (p Point3D) Sub(q Point3D) Point3D {
	return Point3D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Dot returns the 3D dot product.
func (p Point3D) Dot(q Point3D) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Norm returns the Euclidean length.
func (p Point3D) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

// Midpoint returns the point halfway between p and q.
func (p Point3D) Midpoint(q Point3D) Point3D {
	return Point3D{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2, Z: (p.Z + q.Z) / 2}
}

type jsonPoint struct {
	X float64  `json:"x"`
	Y float64  `json:"y"`
	Z *float64 `json:"z,omitempty"`
}

// MarshalJSON omits z when it is missing.
func (p Point3D) MarshalJSON() ([]byte, error) {
	jp := jsonPoint{X: p.X, Y: p.Y}
	if p.HasZ() {
		z := p.Z
		jp.Z = &z
	}
	return json.Marshal(jp)
}

// UnmarshalJSON treats an absent or null z as missing.
func (p *Point3D) UnmarshalJSON(data []byte) error {
	var jp jsonPoint
	if err := json.Unmarshal(data, &jp); err != nil {
		return err
	}
	p.X, p.Y = jp.X, jp.Y
	if jp.Z != nil {
		p.Z = *jp.Z
	} else {
		p.Z = math.NaN()
	}
	return nil
}

// HandLandmarks is one detected hand. Points are indexed by the constants above;
// a frame may carry fewer points than NumLandmarks if the detector lost some.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64   `json:"score,omitempty"`
}

// Point returns the landmark at index i, or false if the hand does not carry it.
func (h *HandLandmarks) Point(i int) (Point3D, bool) {
	if h == nil || i < 0 || i >= len(h.Points) {
		return Point3D{}, false
	}
	return h.Points[i], true
}

// Has3D reports whether every listed landmark is present with finite x, y and z.
func (h *HandLandmarks) Has3D(indices ...int) bool {
	for _, i := range indices {
		p, ok := h.Point(i)
		if !ok || !p.Finite() {
			return false
		}
	}
	return true
}

// Complete reports whether the hand carries all NumLandmarks points.
func (h *HandLandmarks) Complete() bool {
	return h != nil && len(h.Points) >= NumLandmarks
}

// Normalize returns a copy translated so the wrist is at the origin and scaled so the
// wrist to middle-finger-MCP distance is 1.0. Missing depth values stay missing.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil || !h.Complete() {
		return nil
	}

	normalized := &HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	if !wrist.HasZ() {
		wrist.Z = 0
	}
	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = h.Points[i].Sub(wrist)
	}

	mid := normalized.Points[MiddleMCP]
	if !mid.HasZ() {
		mid.Z = 0
	}
	scale := mid.Norm()
	if scale < 1e-10 {
		return normalized
	}

	for i := range normalized.Points {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}
	return normalized
}

// FromXYZ builds a hand from raw coordinate triples, the layout used by the
// browser-side landmarker. Triples with fewer than three values have no depth.
func FromXYZ(coords [][]float64) *HandLandmarks {
	h := &HandLandmarks{Points: make([]Point3D, 0, len(coords))}
	for _, c := range coords {
		p := Point3D{Z: math.NaN()}
		if len(c) > 0 {
			p.X = c[0]
		}
		if len(c) > 1 {
			p.Y = c[1]
		}
		if len(c) > 2 {
			p.Z = c[2]
		}
		h.Points = append(h.Points, p)
	}
	return h
}

// DecodeHand parses a recorded pose. It accepts either a HandLandmarks object or a bare
// array of [x, y, z] triples.
func DecodeHand(data []byte) (*HandLandmarks, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var coords [][]float64
		if err := json.Unmarshal(data, &coords); err != nil {
			return nil, fmt.Errorf("decode landmark triples: %w", err)
		}
		return FromXYZ(coords), nil
	}

	var h HandLandmarks
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode hand: %w", err)
	}
	return &h, nil
}

// ReadHandFile loads a recorded pose from disk.
func ReadHandFile(path string) (*HandLandmarks, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeHand(data)
}
