package gesture

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/flashgesture/internal/detector"
)

func templateOf(id string, symbol Symbol, h detector.HandLandmarks, tolerance float64) *Template {
	return &Template{
		ID:        id,
		Symbol:    symbol,
		Landmarks: h.Normalize().Points,
		Tolerance: tolerance,
		Samples:   1,
	}
}

func TestTemplateMatcher_Match(t *testing.T) {
	matcher := NewTemplateMatcher()
	matcher.AddTemplate(templateOf("thumbs-up", ThumbsUp, detector.ThumbsUpLandmarks(), 0.5))

	input := detector.ThumbsUpLandmarks()
	matches := matcher.Match(&input)

	require.NotEmpty(t, matches)
	assert.Equal(t, "thumbs-up", matches[0].Template.ID)
	assert.Greater(t, matches[0].Score, 0.9)
	assert.Less(t, matches[0].Distance, 0.1)
	assert.Equal(t, ThumbsUp, matcher.Classify(&input))
}

func TestTemplateMatcher_NoMatch(t *testing.T) {
	matcher := NewTemplateMatcher()
	matcher.AddTemplate(templateOf("thumbs-up", ThumbsUp, detector.ThumbsUpLandmarks(), 0.3))

	input := detector.OpenPalmLandmarks()
	assert.Empty(t, matcher.Match(&input))
	assert.Equal(t, None, matcher.Classify(&input))
}

func TestTemplateMatcher_AddRemoveTemplate(t *testing.T) {
	matcher := NewTemplateMatcher()

	matcher.AddTemplate(&Template{ID: "template-1", Symbol: ThumbsUp, Landmarks: make([]detector.Point3D, detector.NumLandmarks), Tolerance: 0.5})
	matcher.AddTemplate(&Template{ID: "template-2", Symbol: ThumbsDown, Landmarks: make([]detector.Point3D, detector.NumLandmarks), Tolerance: 0.5})
	matcher.AddTemplate(&Template{ID: "bogus", Symbol: Symbol("WAVE")})
	matcher.AddTemplate(nil)
	require.Equal(t, 2, matcher.Len())

	matcher.RemoveTemplate("template-1")
	require.Equal(t, 1, matcher.Len())
	assert.Equal(t, "template-2", matcher.templates[0].ID)

	listed := matcher.List()
	require.Len(t, listed, 1)
	listed[0] = nil
	assert.NotNil(t, matcher.templates[0], "List returns a copy")

	matcher.RemoveTemplate("non-existent")
	assert.Equal(t, 1, matcher.Len())

	matcher.SetTemplates(nil)
	assert.Equal(t, 0, matcher.Len())
}

func TestTemplateMatcher_MultipleMatches(t *testing.T) {
	matcher := NewTemplateMatcher()
	matcher.AddTemplate(templateOf("tight", ThumbsUp, detector.ThumbsUpLandmarks(), 0.5))
	matcher.AddTemplate(templateOf("loose", ThumbsUp, detector.ThumbsUpLandmarks(), 0.8))

	input := detector.ThumbsUpLandmarks()
	matches := matcher.Match(&input)

	require.Len(t, matches, 2)
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i].Score, matches[i-1].Score)
	}
}

func TestTemplateMatcher_NilInput(t *testing.T) {
	matcher := NewTemplateMatcher()
	matcher.AddTemplate(&Template{ID: "test", Symbol: ThumbsUp, Landmarks: make([]detector.Point3D, detector.NumLandmarks), Tolerance: 0.5})

	assert.Empty(t, matcher.Match(nil))
	assert.Equal(t, None, matcher.Classify(nil))
}

func TestEuclideanDistance(t *testing.T) {
	a := []detector.Point3D{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}}
	assert.Equal(t, 0.0, euclideanDistance(a, a))

	c := []detector.Point3D{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	d := []detector.Point3D{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}}
	assert.Equal(t, 1.0, euclideanDistance(c, d))

	assert.Equal(t, 0.0, euclideanDistance(nil, nil))

	flat := detector.WithoutDepth(detector.HandLandmarks{Points: []detector.Point3D{{X: 3, Y: 4, Z: 9}}})
	assert.Equal(t, 5.0, euclideanDistance(flat.Points, []detector.Point3D{{}}), "missing depth compares in 2D")
}

func TestChain_Classify(t *testing.T) {
	geometry := NewClassifier(DefaultClassifierConfig())

	t.Run("no templates uses geometry", func(t *testing.T) {
		chain := NewChain(NewTemplateMatcher(), geometry)
		assert.Equal(t, ThumbsDown, chain.Classify(hand(detector.ThumbsDownLandmarks())))
	})

	t.Run("template wins over geometry", func(t *testing.T) {
		matcher := NewTemplateMatcher()
		matcher.AddTemplate(templateOf("palm-easy", ThumbsUp, detector.OpenPalmLandmarks(), 0.3))
		chain := NewChain(matcher, geometry)

		assert.Equal(t, ThumbsUp, chain.Classify(hand(detector.OpenPalmLandmarks())))
		assert.Equal(t, ThumbsSideways, chain.Classify(hand(detector.ThumbsSidewaysLandmarks())))
	})

	t.Run("nil parts", func(t *testing.T) {
		assert.Equal(t, None, NewChain(nil, nil).Classify(hand(detector.ThumbsUpLandmarks())))
	})
}

func TestChain_MissingDepth(t *testing.T) {
	matcher := NewTemplateMatcher()
	matcher.AddTemplate(templateOf("up", ThumbsUp, detector.ThumbsUpLandmarks(), 0.5))

	noZ, err := detector.ReadHandFile(filepath.Join("..", "..", "testdata", "poses", "thumbs_up_no_z.json"))
	require.NoError(t, err)

	t.Run("template is skipped without depth", func(t *testing.T) {
		chain := NewChain(matcher, NewClassifier(DefaultClassifierConfig()))
		assert.Empty(t, matcher.Match(noZ))
		assert.Equal(t, None, chain.Classify(noZ))
		assert.Equal(t, None, chain.Classify(hand(detector.WithoutDepth(detector.ThumbsUpLandmarks()))))
	})

	t.Run("one required landmark without depth", func(t *testing.T) {
		chain := NewChain(matcher, NewClassifier(DefaultClassifierConfig()))
		for _, idx := range required {
			h := detector.ThumbsUpLandmarks()
			h.Points[idx].Z = math.NaN()
			assert.Equal(t, None, chain.Classify(&h), "landmark %d without z", idx)
		}
	})

	t.Run("depth on unused landmarks is not required", func(t *testing.T) {
		h := detector.ThumbsUpLandmarks()
		h.Points[detector.RingTip].Z = math.NaN()
		assert.Equal(t, ThumbsUp, matcher.Classify(&h))
	})

	t.Run("2D fallback still answers", func(t *testing.T) {
		cfg := DefaultClassifierConfig()
		cfg.Fallback2D = true
		chain := NewChain(matcher, NewClassifier(cfg))
		assert.Empty(t, matcher.Match(noZ))
		assert.Equal(t, ThumbsUp, chain.Classify(noZ))
	})
}
