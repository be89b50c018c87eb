// Package yolov2 - YOLOv2 output decoding and suppression.
package yolov2

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Stride is the YOLOv2 downsampling factor: the output grid is the input
// square divided by this. Needed because the session pre-allocates the output
// tensor instead of inferring its shape from the graph.
const Stride = 32

// Anchor is a fixed (height, width) prior describing a typical object shape.
// Per-cell regressions scale it multiplicatively.
type Anchor struct {
	Height float32
	Width  float32
}

// MarshalJSON encodes the anchor as a [height, width] pair.
func (a Anchor) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float32{a.Height, a.Width})
}

// UnmarshalJSON decodes the anchor from a [height, width] pair.
func (a *Anchor) UnmarshalJSON(data []byte) error {
	var pair [2]float32
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	a.Height = pair[0]
	a.Width = pair[1]
	return nil
}

// Config describes a YOLOv2 model: where its tensors are, the input square
// size, the anchor priors, and the class list. It is read-only once loaded
// and shared by reference across all decode calls.
type Config struct {
	// Input and Output name the model's tensors.
	Input  string `json:"input"  yaml:"input"`
	Output string `json:"output" yaml:"output"`
	// InSize is the side of the square input tensor, a multiple of Stride.
	InSize int `json:"insize" yaml:"insize"`
	// Anchors are the per-cell box priors, ordered.
	Anchors []Anchor `json:"anchors" yaml:"anchors"`
	// LabelNames lists the foreground classes, ordered; Box.Label indexes it.
	LabelNames []string `json:"label_names" yaml:"label_names"`
}

// LoadConfig reads and validates a JSON config file.
//
// Arguments:
//   - path: Path to the config file.
//
// Returns:
//   - *Config: The loaded configuration.
//   - error: An error if reading, decoding, or validation fails.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// NumClasses returns the number of foreground classes.
func (c *Config) NumClasses() int {
	return len(c.LabelNames)
}

// Depth returns the expected channel depth of the output tensor:
// one (4 location + 1 objectness + classes) block per anchor.
func (c *Config) Depth() int {
	return len(c.Anchors) * (5 + c.NumClasses())
}

// GridSize returns the side of the output grid.
func (c *Config) GridSize() int {
	return c.InSize / Stride
}

// Validate checks the configuration for internal consistency. Violations are
// configuration mistakes, not runtime conditions, so callers should fail
// immediately on error.
func (c *Config) Validate() error {
	if c.Input == "" || c.Output == "" {
		return errors.New("config requires input and output tensor names")
	}
	if c.InSize <= 0 || c.InSize%Stride != 0 {
		return errors.Errorf("insize %d must be a positive multiple of %d", c.InSize, Stride)
	}
	if len(c.Anchors) == 0 {
		return errors.New("config requires at least one anchor")
	}
	if len(c.LabelNames) == 0 {
		return errors.New("config requires at least one label name")
	}
	return nil
}

// CheckDepth verifies the output tensor's channel depth against the anchor
// and class counts.
//
// Arguments:
//   - channels: The channel extent of the model's output tensor.
//
// Returns:
//   - error: An error describing the mismatch, nil when consistent.
func (c *Config) CheckDepth(channels int) error {
	if depth := c.Depth(); depth != channels {
		return errors.Errorf(
			"output tensor has %d channels, %d anchors x (5 + %d classes) needs %d",
			channels, len(c.Anchors), c.NumClasses(), depth)
	}
	return nil
}
