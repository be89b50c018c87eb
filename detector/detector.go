// Package detector - End-to-end YOLOv2 prediction pipeline.
package detector

import (
	"fmt"
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models/yolov2"
)

const (
	// ScoreThreshold is the minimum objectness-scaled class score for a
	// candidate box to be kept.
	ScoreThreshold = 0.5
	// IoUThreshold is the overlap above which suppression drops a
	// same-label box.
	IoUThreshold = 0.45
)

// Detector runs the full pipeline: letterbox preprocessing, a forward pass
// on the engine, grid decode, suppression, and mapping back into source
// image coordinates.
//
// A Detector is single-caller: one prediction at a time per instance, since
// it holds exclusive access to the engine's tensors while a call is in
// flight. Independent instances with independent engines may run
// concurrently.
type Detector struct {
	engine inference.Engine
	config *yolov2.Config
}

// New builds a detector over an already-loaded engine.
//
// The engine's tensor shapes are checked against the configuration here so
// that anchor/channel mismatches fail at construction, not mid-prediction.
//
// Arguments:
//   - engine: The loaded inference engine.
//   - config: The model configuration, shared read-only.
//
// Returns:
//   - *Detector: The detector.
//   - error: An error if the configuration and tensor shapes disagree.
func New(engine inference.Engine, config *yolov2.Config) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	in := engine.Input()
	if in.Channels() != 3 || in.Height() != config.InSize || in.Width() != config.InSize {
		return nil, errors.Errorf("input tensor is %dx%dx%d, config needs 3x%dx%d",
			in.Channels(), in.Height(), in.Width(), config.InSize, config.InSize)
	}
	if err := config.CheckDepth(engine.Output().Channels()); err != nil {
		return nil, err
	}
	return &Detector{engine: engine, config: config}, nil
}

// NewFromONNX loads an ONNX model and builds a detector over it, deriving
// the tensor shapes from the configuration.
//
// Arguments:
//   - modelPath: Path to the .onnx file.
//   - config: The model configuration.
//
// Returns:
//   - *Detector: The detector, owning the underlying session.
//   - error: An error if validation or model loading fails.
func NewFromONNX(modelPath string, config *yolov2.Config) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	grid := config.GridSize()
	session, err := inference.NewSession(inference.SessionConfig{
		ModelPath:   modelPath,
		Input:       config.Input,
		Output:      config.Output,
		InputShape:  [3]int{3, config.InSize, config.InSize},
		OutputShape: [3]int{config.Depth(), grid, grid},
	})
	if err != nil {
		return nil, err
	}
	d, err := New(session, config)
	if err != nil {
		session.Close()
		return nil, err
	}
	return d, nil
}

// Predict detects objects in img.
//
// The returned boxes are in source image pixel coordinates, sorted by
// (label, score descending). The only failure modes are a non-3-channel
// input tensor and a propagated engine error.
//
// Arguments:
//   - img: The image to detect objects in, any size.
//
// Returns:
//   - []common.Box: The detections.
//   - error: An error if preprocessing or the forward pass fails.
func (d *Detector) Predict(img image.Image) ([]common.Box, error) {
	scale, err := images.Letterbox(d.engine.Input(), img)
	if err != nil {
		return nil, err
	}

	if err := d.engine.Run(); err != nil {
		return nil, err
	}

	boxes := yolov2.Decode(d.engine.Output(), d.config.Anchors, d.config.NumClasses(), ScoreThreshold)
	boxes = yolov2.Suppress(boxes, IoUThreshold)

	// Undo the letterbox: the decoder emits coordinates normalized to the
	// square input, so recenter around 0.5 and stretch back to pixels.
	stretch := float32(d.config.InSize) / scale
	imgH := float32(img.Bounds().Dy())
	imgW := float32(img.Bounds().Dx())
	for i := range boxes {
		boxes[i].Top = (boxes[i].Top-0.5)*stretch + imgH/2
		boxes[i].Left = (boxes[i].Left-0.5)*stretch + imgW/2
		boxes[i].Bottom = (boxes[i].Bottom-0.5)*stretch + imgH/2
		boxes[i].Right = (boxes[i].Right-0.5)*stretch + imgW/2
	}

	return boxes, nil
}

// LabelName returns the class name for a box's label index.
func (d *Detector) LabelName(b *common.Box) string {
	if b.Label >= 0 && b.Label < len(d.config.LabelNames) {
		return d.config.LabelNames[b.Label]
	}
	return fmt.Sprintf("unknown_%d", b.Label)
}

// Close releases the underlying engine.
func (d *Detector) Close() error {
	return d.engine.Close()
}
