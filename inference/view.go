package inference

import "fmt"

// View is a borrowed channel-height-width window over a tensor's backing
// floats. The data slice is owned by the engine (the ONNX runtime keeps the
// allocation alive for the lifetime of its session); a View never copies and
// must not be used after the owning session is closed. While a prediction is
// in flight the caller has exclusive access: mutable over the input view
// during preprocessing, read-only over the output view during decoding.
type View struct {
	data []float32
	c    int
	h    int
	w    int
}

// NewView wraps data as a CHW view.
//
// Arguments:
//   - data: The backing floats, length at least c*h*w.
//   - c, h, w: Channel, height, and width extents.
//
// Returns:
//   - View: The wrapped view.
//   - error: An error if the slice is too short for the shape.
func NewView(data []float32, c, h, w int) (View, error) {
	if len(data) < c*h*w {
		return View{}, fmt.Errorf("backing slice holds %d floats, shape %dx%dx%d needs %d",
			len(data), c, h, w, c*h*w)
	}
	return View{data: data, c: c, h: h, w: w}, nil
}

// Channels returns the channel extent of the view.
func (v View) Channels() int { return v.c }

// Height returns the height extent of the view.
func (v View) Height() int { return v.h }

// Width returns the width extent of the view.
func (v View) Width() int { return v.w }

// At reads the value at (channel, y, x).
func (v View) At(c, y, x int) float32 {
	return v.data[(c*v.h+y)*v.w+x]
}

// Set writes the value at (channel, y, x).
func (v View) Set(c, y, x int, value float32) {
	v.data[(c*v.h+y)*v.w+x] = value
}

// Fill writes value into every element of the view.
func (v View) Fill(value float32) {
	n := v.c * v.h * v.w
	for i := 0; i < n; i++ {
		v.data[i] = value
	}
}
