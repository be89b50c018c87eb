// Package inference - Inference engine boundary.
package inference

// Engine is the forward-pass collaborator the detection pipeline runs
// against. It owns the model and its tensors; callers borrow the tensor
// views, fill the input, execute, and read the output. Implementations are
// not safe for concurrent predictions on the same instance.
type Engine interface {
	// Input returns a mutable view over the model input tensor, batch axis
	// stripped.
	Input() View
	// Output returns a view over the model output tensor, batch axis
	// stripped.
	Output() View
	// Run executes the forward pass. Any failure is engine-specific and is
	// propagated to the caller verbatim.
	Run() error
	// Close releases the engine's resources. Views obtained earlier are
	// invalid afterwards.
	Close() error
}
