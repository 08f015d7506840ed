package detector

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func filledHand() HandLandmarks {
	hand := HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.9,
	}
	for i := 0; i < NumLandmarks; i++ {
		hand.Points[i] = Point3D{
			X: 100.0 + float64(i)*10.0,
			Y: 200.0 + float64(i)*5.0,
			Z: 50.0 + float64(i)*2.0,
		}
	}
	return hand
}

func TestHandLandmarks_Normalize(t *testing.T) {
	t.Run("wrist at origin after normalization", func(t *testing.T) {
		hand := filledHand()
		hand.Points[Wrist] = Point3D{X: 100.0, Y: 200.0, Z: 50.0}
		hand.Points[MiddleMCP] = Point3D{X: 130.0, Y: 240.0, Z: 50.0}

		normalized := hand.Normalize()
		require.NotNil(t, normalized)

		assert.InDelta(t, 0, normalized.Points[Wrist].X, epsilon)
		assert.InDelta(t, 0, normalized.Points[Wrist].Y, epsilon)
		assert.InDelta(t, 0, normalized.Points[Wrist].Z, epsilon)
		assert.Equal(t, hand.Handedness, normalized.Handedness)
		assert.Equal(t, hand.Score, normalized.Score)
	})

	t.Run("distance from wrist to middle MCP is 1.0", func(t *testing.T) {
		hand := filledHand()
		hand.Points[Wrist] = Point3D{X: 10.0, Y: 20.0, Z: 5.0}
		hand.Points[MiddleMCP] = Point3D{X: 13.0, Y: 24.0, Z: 5.0}

		normalized := hand.Normalize()
		require.NotNil(t, normalized)
		assert.InDelta(t, 1.0, normalized.Points[MiddleMCP].Norm(), epsilon)
	})

	t.Run("missing depth stays missing", func(t *testing.T) {
		hand := WithoutDepth(ThumbsUpLandmarks())

		normalized := hand.Normalize()
		require.NotNil(t, normalized)
		assert.False(t, normalized.Points[ThumbTip].HasZ())
		assert.InDelta(t, 1.0, math.Hypot(normalized.Points[MiddleMCP].X, normalized.Points[MiddleMCP].Y), epsilon)
	})

	t.Run("nil hand returns nil", func(t *testing.T) {
		var hand *HandLandmarks
		assert.Nil(t, hand.Normalize())
	})

	t.Run("incomplete hand returns nil", func(t *testing.T) {
		hand := &HandLandmarks{Points: make([]Point3D, 5)}
		assert.Nil(t, hand.Normalize())
	})

	t.Run("zero scale returns translated only", func(t *testing.T) {
		hand := filledHand()
		hand.Points[Wrist] = Point3D{X: 10.0, Y: 20.0, Z: 5.0}
		hand.Points[MiddleMCP] = Point3D{X: 10.0, Y: 20.0, Z: 5.0}

		normalized := hand.Normalize()
		require.NotNil(t, normalized)
		assert.InDelta(t, 0, normalized.Points[Wrist].X, epsilon)
		assert.InDelta(t, 0, normalized.Points[MiddleMCP].Norm(), epsilon)
	})
}

func TestHandLandmarks_Has3D(t *testing.T) {
	hand := ThumbsUpLandmarks()
	assert.True(t, hand.Has3D(Wrist, ThumbTip, PinkyMCP))

	hand.Points[ThumbTip].Z = math.NaN()
	assert.False(t, hand.Has3D(Wrist, ThumbTip))
	assert.True(t, hand.Has3D(Wrist))

	hand = ThumbsUpLandmarks()
	hand.Points[ThumbTip].Z = math.Inf(1)
	assert.False(t, hand.Has3D(ThumbTip), "infinite depth is not depth")
	hand.Points[ThumbTip].Z = 0
	hand.Points[ThumbTip].X = math.NaN()
	assert.False(t, hand.Has3D(ThumbTip))
	assert.False(t, hand.Points[ThumbTip].FiniteXY())
	assert.True(t, Point3D{X: 1e200, Y: 1, Z: 1}.Finite())

	short := &HandLandmarks{Points: make([]Point3D, 3)}
	assert.False(t, short.Has3D(ThumbTip), "absent index is not 3D")

	_, ok := short.Point(-1)
	assert.False(t, ok)
}

func TestPoint3D_JSON(t *testing.T) {
	t.Run("absent z decodes as missing", func(t *testing.T) {
		var p Point3D
		require.NoError(t, json.Unmarshal([]byte(`{"x":0.1,"y":0.2}`), &p))
		assert.Equal(t, 0.1, p.X)
		assert.False(t, p.HasZ())

		out, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `{"x":0.1,"y":0.2}`, string(out))
	})

	t.Run("null z decodes as missing", func(t *testing.T) {
		var p Point3D
		require.NoError(t, json.Unmarshal([]byte(`{"x":0.1,"y":0.2,"z":null}`), &p))
		assert.False(t, p.HasZ())
	})

	t.Run("zero z is present", func(t *testing.T) {
		var p Point3D
		require.NoError(t, json.Unmarshal([]byte(`{"x":0.1,"y":0.2,"z":0}`), &p))
		assert.True(t, p.HasZ())
		assert.Equal(t, 0.0, p.Z)
	})
}

func TestFromXYZ(t *testing.T) {
	h := FromXYZ([][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5}})
	require.Len(t, h.Points, 2)
	assert.True(t, h.Points[0].HasZ())
	assert.Equal(t, 0.3, h.Points[0].Z)
	assert.False(t, h.Points[1].HasZ())
	assert.False(t, h.Complete())
}

func TestPrimary(t *testing.T) {
	assert.Nil(t, Primary(nil))

	low := ThumbsUpLandmarks()
	low.Score = 0.7
	high := ThumbsDownLandmarks()
	high.Score = 0.9

	best := Primary([]HandLandmarks{low, high})
	require.NotNil(t, best)
	assert.Equal(t, 0.9, best.Score)
}

func TestParseResponse(t *testing.T) {
	line := []byte(`{"hands":[{"points":[{"x":0.5,"y":0.5,"z":0}],"handedness":"Left","score":0.4},` +
		`{"points":[{"x":0.5,"y":0.5}],"handedness":"Right","score":0.8}]}` + "\n")

	hands, err := parseResponse(line, 0.6)
	require.NoError(t, err)
	require.Len(t, hands, 1)
	assert.Equal(t, "Right", hands[0].Handedness)
	assert.False(t, hands[0].Points[0].HasZ())

	_, err = parseResponse([]byte("not json"), 0.6)
	assert.Error(t, err)
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)
		assert.NoError(t, err)
		assert.Nil(t, hands)
		assert.Equal(t, 1, mock.Calls())
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{ThumbsUpLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)
		assert.NoError(t, err)
		assert.Len(t, hands, 2)
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)
		assert.Equal(t, expectedErr, err)
		assert.Nil(t, hands)
	})

	t.Run("Close returns nil", func(t *testing.T) {
		assert.NoError(t, NewMockDetector().Close())
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
	})
}

func TestFixtures(t *testing.T) {
	t.Run("thumbs up points up the image", func(t *testing.T) {
		h := ThumbsUpLandmarks()
		assert.True(t, h.Complete())
		assert.Less(t, h.Points[ThumbTip].Y, h.Points[ThumbMCP].Y)
		assert.Less(t, h.Points[ThumbTip].Y, h.Points[ThumbIP].Y)
	})

	t.Run("thumbs down points down the image", func(t *testing.T) {
		h := ThumbsDownLandmarks()
		assert.Greater(t, h.Points[ThumbTip].Y, h.Points[ThumbMCP].Y)
	})

	t.Run("fist fingers are curled", func(t *testing.T) {
		h := ThumbsSidewaysLandmarks()
		wrist := h.Points[Wrist]
		for _, f := range [][2]int{{IndexTip, IndexPIP}, {MiddleTip, MiddlePIP}, {RingTip, RingPIP}, {PinkyTip, PinkyPIP}} {
			tip := h.Points[f[0]].Sub(wrist).Norm()
			pip := h.Points[f[1]].Sub(wrist).Norm()
			assert.Less(t, tip, pip, "tip %d should be closer to the wrist than its PIP", f[0])
		}
	})

	t.Run("open palm fingers are extended", func(t *testing.T) {
		h := OpenPalmLandmarks()
		minExtension := 0.2
		assert.GreaterOrEqual(t, h.Points[IndexMCP].Y-h.Points[IndexTip].Y, minExtension)
		assert.GreaterOrEqual(t, h.Points[MiddleMCP].Y-h.Points[MiddleTip].Y, minExtension)
		assert.GreaterOrEqual(t, h.Points[RingMCP].Y-h.Points[RingTip].Y, minExtension)
		assert.GreaterOrEqual(t, h.Points[PinkyMCP].Y-h.Points[PinkyTip].Y, minExtension)
	})

	t.Run("without depth drops every z", func(t *testing.T) {
		h := WithoutDepth(ThumbsUpLandmarks())
		for i := range h.Points {
			assert.False(t, h.Points[i].HasZ())
		}
		assert.True(t, ThumbsUpLandmarks().Points[ThumbTip].HasZ(), "source is not modified")
	})
}
