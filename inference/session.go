// Package inference - ONNX Runtime sessions.
package inference

import (
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

// SessionConfig describes how to load a model into an ONNX Runtime session.
//
// The runtime pre-allocates both tensors, so unlike engines that infer the
// output shape from the graph, the caller must state it up front.
type SessionConfig struct {
	// ModelPath is the path to the .onnx file.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// Input and Output name the graph tensors to bind.
	Input  string `json:"input"  yaml:"input"`
	Output string `json:"output" yaml:"output"`
	// InputShape and OutputShape are channel/height/width extents; the batch
	// axis is implied and fixed at 1.
	InputShape  [3]int `json:"input_shape"  yaml:"input_shape"`
	OutputShape [3]int `json:"output_shape" yaml:"output_shape"`
	// IntraOpThreads and InterOpThreads tune execution parallelism inside and
	// across graph nodes. Zero keeps the runtime default.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads"`
}

// Session wraps an ONNX Runtime session together with its pre-allocated
// input and output tensors. It implements Engine.
type Session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	in      View
	out     View
}

// NewSession loads an ONNX model and binds its tensors.
//
// Arguments:
//   - config: The session configuration.
//
// Returns:
//   - *Session: The loaded session.
//   - error: An error if the runtime library is missing or loading fails.
func NewSession(config SessionConfig) (*Session, error) {
	libPath := GetSharedLibPath()
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("ONNX Runtime library not found at %s: %w", libPath, err)
	}
	ort.SetSharedLibraryPath(libPath)

	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("error initializing ORT environment: %w", err)
		}
	}

	inShape := ort.NewShape(1,
		int64(config.InputShape[0]), int64(config.InputShape[1]), int64(config.InputShape[2]))
	inputTensor, err := ort.NewEmptyTensor[float32](inShape)
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}

	outShape := ort.NewShape(1,
		int64(config.OutputShape[0]), int64(config.OutputShape[1]), int64(config.OutputShape[2]))
	outputTensor, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("error creating ORT session options: %w", err)
	}
	defer options.Destroy()

	options.SetIntraOpNumThreads(config.IntraOpThreads)
	options.SetInterOpNumThreads(config.InterOpThreads)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{config.Input},
		[]string{config.Output},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("error creating ORT session: %w", err)
	}

	in, err := NewView(inputTensor.GetData(),
		config.InputShape[0], config.InputShape[1], config.InputShape[2])
	if err != nil {
		session.Destroy()
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	out, err := NewView(outputTensor.GetData(),
		config.OutputShape[0], config.OutputShape[1], config.OutputShape[2])
	if err != nil {
		session.Destroy()
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("output tensor: %w", err)
	}

	return &Session{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
		in:      in,
		out:     out,
	}, nil
}

// Input returns the mutable view over the model input tensor.
func (s *Session) Input() View { return s.in }

// Output returns the view over the model output tensor.
func (s *Session) Output() View { return s.out }

// Run executes the forward pass.
//
// Returns:
//   - error: The runtime's error, if any, unchanged.
func (s *Session) Run() error {
	return s.session.Run()
}

// Close releases the resources associated with the Session.
func (s *Session) Close() error {
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	return nil
}
