package gesture

import (
	"math"
	"sort"
	"sync"

	"github.com/ayusman/flashgesture/internal/detector"
)

// Template is a calibrated pose for one symbol.
type Template struct {
	ID        string             // Unique identifier for the template
	Symbol    Symbol             // Symbol reported when the template matches
	Landmarks []detector.Point3D // Normalized landmarks
	Tolerance float64            // Maximum distance for a match
	Samples   int                // Number of recordings averaged into Landmarks
}

// Match represents a matching result between input and a template.
type Match struct {
	Template *Template // The matched template
	Score    float64   // Match score (0-1, higher is better)
	Distance float64   // Summed per-landmark distance between input and template
}

// TemplateMatcher matches hands against user-calibrated templates.
// It is safe for concurrent use.
type TemplateMatcher struct {
	mu        sync.RWMutex
	templates []*Template
}

// NewTemplateMatcher creates an empty TemplateMatcher.
func NewTemplateMatcher() *TemplateMatcher {
	return &TemplateMatcher{
		templates: make([]*Template, 0),
	}
}

// AddTemplate adds a template. Templates for unknown symbols are ignored.
func (m *TemplateMatcher) AddTemplate(t *Template) {
	if t == nil || !t.Symbol.Valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates = append(m.templates, t)
}

// SetTemplates replaces every template.
func (m *TemplateMatcher) SetTemplates(ts []*Template) {
	m.mu.Lock()
	m.templates = make([]*Template, 0, len(ts))
	m.mu.Unlock()
	for _, t := range ts {
		m.AddTemplate(t)
	}
}

// RemoveTemplate removes a template by its ID.
func (m *TemplateMatcher) RemoveTemplate(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.templates {
		if t.ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return
		}
	}
}

// Len returns the number of templates.
func (m *TemplateMatcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.templates)
}

// List returns a copy of the template list.
func (m *TemplateMatcher) List() []*Template {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Template, len(m.templates))
	copy(out, m.templates)
	return out
}

// Match finds matching templates for the given hand landmarks.
// Returns matches sorted by score in descending order (best matches first).
// Templates are recorded in 3D, so a hand without finite depth on the thumb and palm
// landmarks matches nothing.
func (m *TemplateMatcher) Match(hand *detector.HandLandmarks) []Match {
	if !hand.Has3D(required...) {
		return nil
	}
	normalized := hand.Normalize()
	if normalized == nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match
	for _, template := range m.templates {
		distance := euclideanDistance(normalized.Points, template.Landmarks)
		if math.IsNaN(distance) || distance > template.Tolerance {
			continue
		}
		matches = append(matches, Match{
			Template: template,
			Score:    1.0 / (1.0 + distance),
			Distance: distance,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Classify returns the symbol of the best matching template, or None.
func (m *TemplateMatcher) Classify(hand *detector.HandLandmarks) Symbol {
	matches := m.Match(hand)
	if len(matches) == 0 {
		return None
	}
	return matches[0].Template.Symbol
}

// euclideanDistance sums the distances between corresponding points.
// A point missing depth on either side is compared in the image plane.
func euclideanDistance(a, b []detector.Point3D) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var totalDist float64
	for i := 0; i < minLen; i++ {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		var dz float64
		if a[i].HasZ() && b[i].HasZ() {
			dz = a[i].Z - b[i].Z
		}
		totalDist += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return totalDist
}

// Chain consults calibrated templates before falling back to geometry.
type Chain struct {
	Templates *TemplateMatcher
	Fallback  PoseClassifier
}

// NewChain creates a Chain. Either part may be nil.
func NewChain(templates *TemplateMatcher, fallback PoseClassifier) *Chain {
	return &Chain{Templates: templates, Fallback: fallback}
}

// Classify returns the first template match, otherwise the fallback's answer.
func (c *Chain) Classify(hand *detector.HandLandmarks) Symbol {
	if c.Templates != nil {
		if s := c.Templates.Classify(hand); s != None {
			return s
		}
	}
	if c.Fallback == nil {
		return None
	}
	return c.Fallback.Classify(hand)
}
