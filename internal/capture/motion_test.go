package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

func blankFrame() gocv.Mat {
	return gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
}

func whiteFrame() gocv.Mat {
	m := blankFrame()
	m.SetTo(gocv.NewScalar(255, 255, 255, 0))
	return m
}

func TestNewMotionGate(t *testing.T) {
	g := NewMotionGate(5.0)
	defer g.Close()
	assert.Equal(t, 5.0, g.Threshold())
	assert.False(t, g.primed)

	g2 := NewMotionGate(0)
	defer g2.Close()
	assert.Equal(t, DefaultMotionThreshold, g2.Threshold())
}

func TestMotionGate_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	a, b := blankFrame(), blankFrame()
	defer a.Close()
	defer b.Close()

	moved, changed := g.Detect(&a)
	assert.False(t, moved, "first frame primes")
	assert.Zero(t, changed)

	moved, changed = g.Detect(&b)
	assert.False(t, moved, "identical frames, changed=%f", changed)
}

func TestMotionGate_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	black, white := blankFrame(), whiteFrame()
	defer black.Close()
	defer white.Close()

	g.Detect(&black)
	moved, changed := g.Detect(&white)
	assert.True(t, moved)
	assert.Greater(t, changed, 50.0)
}

func TestMotionGate_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	frame := blankFrame()
	defer frame.Close()

	g.Detect(&frame)
	assert.True(t, g.primed)

	g.Reset()
	assert.False(t, g.primed)
	assert.True(t, g.prev.Empty())
}

func TestMotionGate_SetThreshold(t *testing.T) {
	g := NewMotionGate(1.0)
	defer g.Close()

	g.SetThreshold(5.0)
	assert.Equal(t, 5.0, g.Threshold())

	g.SetThreshold(-1.0)
	assert.Equal(t, 5.0, g.Threshold(), "negative is ignored")
}

func TestMotionGate_CloseTwice(t *testing.T) {
	g := NewMotionGate(1.0)
	g.Close()
	g.Close()
}

func TestMotionGate_NilFrame(t *testing.T) {
	g := NewMotionGate(1.0)
	defer g.Close()

	moved, changed := g.Detect(nil)
	assert.False(t, moved)
	assert.Zero(t, changed)
}
