package gesture

import (
	"fmt"

	"github.com/ayusman/flashgesture/internal/detector"
)

// Trainer turns recorded hands into calibration templates.
type Trainer struct{}

// NewTrainer creates a new Trainer instance.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// TrainStatic normalizes every sample and averages them landmark by landmark.
func (t *Trainer) TrainStatic(samples []detector.HandLandmarks) ([]detector.Point3D, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	normalized := make([][]detector.Point3D, 0, len(samples))
	for i := range samples {
		if samples[i].Complete() && !samples[i].Has3D(required...) {
			return nil, fmt.Errorf("sample %d has no depth on the thumb and palm landmarks", i)
		}
		n := samples[i].Normalize()
		if n == nil {
			return nil, fmt.Errorf("sample %d has %d landmarks, expected %d", i, len(samples[i].Points), detector.NumLandmarks)
		}
		normalized = append(normalized, n.Points)
	}

	averaged := make([]detector.Point3D, detector.NumLandmarks)
	n := float64(len(normalized))

	for i := 0; i < detector.NumLandmarks; i++ {
		var sumX, sumY, sumZ float64
		for _, landmarks := range normalized {
			sumX += landmarks[i].X
			sumY += landmarks[i].Y
			sumZ += landmarks[i].Z
		}
		averaged[i] = detector.Point3D{
			X: sumX / n,
			Y: sumY / n,
			Z: sumZ / n,
		}
	}

	return averaged, nil
}

// Train builds a template for symbol from samples.
func (t *Trainer) Train(id string, symbol Symbol, tolerance float64, samples []detector.HandLandmarks) (*Template, error) {
	if !symbol.Valid() {
		return nil, fmt.Errorf("unknown symbol %q", symbol)
	}
	if tolerance <= 0 {
		return nil, fmt.Errorf("tolerance must be positive, got %f", tolerance)
	}
	landmarks, err := t.TrainStatic(samples)
	if err != nil {
		return nil, err
	}
	return &Template{
		ID:        id,
		Symbol:    symbol,
		Landmarks: landmarks,
		Tolerance: tolerance,
		Samples:   len(samples),
	}, nil
}
