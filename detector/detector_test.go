package detector

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models/yolov2"
)

// mockEngine is an in-memory Engine: the input and output views are plain
// slices, and Run invokes a callback that plays the role of the forward
// pass by writing activations into the output view.
type mockEngine struct {
	in     inference.View
	out    inference.View
	runErr error
	onRun  func(out inference.View)
}

func (m *mockEngine) Input() inference.View  { return m.in }
func (m *mockEngine) Output() inference.View { return m.out }
func (m *mockEngine) Close() error           { return nil }

func (m *mockEngine) Run() error {
	if m.runErr != nil {
		return m.runErr
	}
	if m.onRun != nil {
		m.onRun(m.out)
	}
	return nil
}

// newMockEngine allocates views matching config's shapes.
func newMockEngine(t *testing.T, config *yolov2.Config) *mockEngine {
	t.Helper()
	grid := config.GridSize()
	in, err := inference.NewView(make([]float32, 3*config.InSize*config.InSize),
		3, config.InSize, config.InSize)
	require.NoError(t, err)
	out, err := inference.NewView(make([]float32, config.Depth()*grid*grid),
		config.Depth(), grid, grid)
	require.NoError(t, err)
	return &mockEngine{in: in, out: out}
}

func testConfig() *yolov2.Config {
	return &yolov2.Config{
		Input:      "input",
		Output:     "output",
		InSize:     128, // 4x4 grid at stride 32
		Anchors:    []yolov2.Anchor{{Height: 1, Width: 1}},
		LabelNames: []string{"person", "car"},
	}
}

func grayImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	return img
}

// TestPredictSingleDetection runs the whole pipeline over a mock forward
// pass: a 4x4 grid, one anchor, two classes, with activations chosen so
// exactly one cell/anchor/class clears the score threshold. The detection
// must come back in original image pixel coordinates.
//
// @example
// go test -v -run TestPredictSingleDetection
func TestPredictSingleDetection(t *testing.T) {
	config := testConfig()
	engine := newMockEngine(t, config)
	engine.onRun = func(out inference.View) {
		// Cell (y=1, x=2): zero location offsets, near-certain objectness,
		// class 0 dominant.
		out.Set(4, 1, 2, 10)
		out.Set(5, 1, 2, 10)
		out.Set(6, 1, 2, -10)
	}

	det, err := New(engine, config)
	require.NoError(t, err)

	boxes, err := det.Predict(grayImage(128, 128))
	require.NoError(t, err)
	require.Len(t, boxes, 1)

	b := boxes[0]
	assert.Equal(t, 0, b.Label)
	assert.Equal(t, "person", det.LabelName(&b))
	assert.InDelta(t, 1/(1+math32.Exp(-10)), b.Score, 1e-4)

	// Hand-computed: center (1.5, 2.5) on the 4x4 grid with a unit anchor
	// normalizes to top/left/bottom/right (0.25, 0.5, 0.5, 0.75); the image
	// matches the input square (scale 1), so pixels are (v-0.5)*128+64.
	assert.InDelta(t, 32.0, b.Top, 1e-3)
	assert.InDelta(t, 64.0, b.Left, 1e-3)
	assert.InDelta(t, 64.0, b.Bottom, 1e-3)
	assert.InDelta(t, 96.0, b.Right, 1e-3)
}

// TestPredictQuietGrid verifies the no-detections case: an all-zero output
// tensor stays under the score threshold everywhere.
func TestPredictQuietGrid(t *testing.T) {
	config := testConfig()
	det, err := New(newMockEngine(t, config), config)
	require.NoError(t, err)

	boxes, err := det.Predict(grayImage(64, 48))
	require.NoError(t, err)
	assert.Empty(t, boxes)
}

// TestPredictNonSquareImage verifies the inverse mapping against a
// hand-computed rectangle when the letterbox actually pads: a 128x64 image
// keeps scale 1 but recenters vertically around its own height.
func TestPredictNonSquareImage(t *testing.T) {
	config := testConfig()
	engine := newMockEngine(t, config)
	engine.onRun = func(out inference.View) {
		out.Set(4, 1, 2, 10)
		out.Set(5, 1, 2, 10)
		out.Set(6, 1, 2, -10)
	}

	det, err := New(engine, config)
	require.NoError(t, err)

	boxes, err := det.Predict(grayImage(128, 64))
	require.NoError(t, err)
	require.Len(t, boxes, 1)

	// Same normalized box as the square case; top/bottom recenter on the
	// 64-pixel image height: (v-0.5)*128 + 32.
	b := boxes[0]
	assert.InDelta(t, 0.0, b.Top, 1e-3)
	assert.InDelta(t, 64.0, b.Left, 1e-3)
	assert.InDelta(t, 32.0, b.Bottom, 1e-3)
	assert.InDelta(t, 96.0, b.Right, 1e-3)
}

// TestPredictEngineError verifies that a forward-pass failure is propagated
// verbatim as the sole runtime error path.
func TestPredictEngineError(t *testing.T) {
	config := testConfig()
	engine := newMockEngine(t, config)
	engine.runErr = errors.New("session run failed")

	det, err := New(engine, config)
	require.NoError(t, err)

	_, err = det.Predict(grayImage(32, 32))
	assert.ErrorIs(t, err, engine.runErr)
}

// TestNewShapeChecks verifies that configuration/tensor mismatches fail at
// construction time.
func TestNewShapeChecks(t *testing.T) {
	config := testConfig()

	t.Run("output depth mismatch", func(t *testing.T) {
		engine := newMockEngine(t, config)
		out, err := inference.NewView(make([]float32, 6*4*4), 6, 4, 4)
		require.NoError(t, err)
		engine.out = out

		_, err = New(engine, config)
		assert.Error(t, err)
	})

	t.Run("input not square to config", func(t *testing.T) {
		engine := newMockEngine(t, config)
		in, err := inference.NewView(make([]float32, 3*64*64), 3, 64, 64)
		require.NoError(t, err)
		engine.in = in

		_, err = New(engine, config)
		assert.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := testConfig()
		bad.Anchors = nil
		_, err := New(newMockEngine(t, testConfig()), bad)
		assert.Error(t, err)
	})
}

// TestLabelNameUnknown verifies the fallback for out-of-range labels.
func TestLabelNameUnknown(t *testing.T) {
	config := testConfig()
	det, err := New(newMockEngine(t, config), config)
	require.NoError(t, err)

	b := common.Box{Label: 9}
	assert.Equal(t, "unknown_9", det.LabelName(&b))
}
