// Package common - Detection result types shared across the pipeline.
package common

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// Box represents a single detection: a labeled, scored rectangle.
//
// Coordinates are floating point and live in whichever space the current
// pipeline stage uses: the decoder emits them normalized to [0,1] against the
// output grid, and the detector rewrites them into original image pixels.
// After decode, Top < Bottom and Left < Right hold for finite activations;
// degenerate boxes are not filtered here.
type Box struct {
	Top    float32
	Left   float32
	Bottom float32
	Right  float32
	// Label indexes the configured class list, in [0, len(labels)).
	Label int
	Score float32
}

// String formats the box for display.
//
// Returns:
//   - A formatted string containing label index, score, and coordinates.
func (b *Box) String() string {
	return fmt.Sprintf("Box label=%d (score %f): (%f, %f), (%f, %f)",
		b.Label, b.Score, b.Left, b.Top, b.Right, b.Bottom)
}

// ToRect converts the box to an image.Rectangle, truncating the
// floating-point coordinates. Useful for drawing with the standard image
// packages once the box is in pixel space.
func (b *Box) ToRect() image.Rectangle {
	return image.Rect(int(b.Left), int(b.Top), int(b.Right), int(b.Bottom)).Canon()
}

// Area returns the area of the box, or 0 for degenerate boxes.
func (b *Box) Area() float32 {
	h := b.Bottom - b.Top
	w := b.Right - b.Left
	if h <= 0 || w <= 0 {
		return 0
	}
	return h * w
}

// Intersection calculates the overlapping area between two boxes.
//
// Arguments:
//   - other: The other box, in the same coordinate space as b.
//
// Returns:
//   - The intersection area, 0 when the boxes do not overlap.
func (b *Box) Intersection(other *Box) float32 {
	top := math32.Max(b.Top, other.Top)
	left := math32.Max(b.Left, other.Left)
	bottom := math32.Min(b.Bottom, other.Bottom)
	right := math32.Min(b.Right, other.Right)
	if bottom <= top || right <= left {
		return 0
	}
	return (bottom - top) * (right - left)
}

// Union calculates the combined area covered by two boxes.
func (b *Box) Union(other *Box) float32 {
	return b.Area() + other.Area() - b.Intersection(other)
}

// IoU calculates the Intersection over Union between two boxes.
//
// This is the overlap metric used by non-maximum suppression. It is symmetric
// and lands in [0,1]: 1 for identical boxes, 0 for disjoint ones. A zero
// union (both boxes degenerate) yields 0 rather than dividing by zero.
//
// Arguments:
//   - other: The other box to compare against.
//
// Returns:
//   - The IoU value between 0 and 1.
func (b *Box) IoU(other *Box) float32 {
	union := b.Union(other)
	if union == 0 {
		return 0
	}
	return b.Intersection(other) / union
}
