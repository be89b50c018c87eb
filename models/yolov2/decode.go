package yolov2

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-yolo/common"
	"github.com/nvr-ai/go-yolo/inference"
)

// Decode converts the raw output tensor into candidate boxes.
//
// Channel layout per anchor block: 4 location activations, 1 objectness
// activation, then one logit per class. For each cell and anchor the center
// is the cell origin plus a sigmoid offset, the size is the anchor prior
// scaled by an exponential, and the class scores are an exp-normalized
// distribution multiplied by the objectness probability, so the score mass of
// one anchor sums to sigmoid(obj), not 1. Every class at or above thresh
// emits its own box, so one anchor can produce several.
//
// Size activations are not clamped; extreme positive logits flow through as
// extreme (or infinite) box dimensions.
//
// The view's channel depth must equal len(anchors)*(5+numClasses); validate
// with Config.CheckDepth before calling.
//
// Arguments:
//   - out: The output tensor view, batch axis stripped.
//   - anchors: The box priors, in grid-cell units.
//   - numClasses: The number of foreground classes.
//   - thresh: The minimum objectness-scaled class score to emit a box.
//
// Returns:
//   - The candidate boxes, coordinates normalized by the grid dimensions.
func Decode(out inference.View, anchors []Anchor, numClasses int, thresh float32) []common.Box {
	outH, outW := out.Height(), out.Width()

	var boxes []common.Box
	scores := make([]float32, numClasses)
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			for a := range anchors {
				base := a * (5 + numClasses)

				cy := float32(y) + sigmoid(out.At(base+0, y, x))
				cx := float32(x) + sigmoid(out.At(base+1, y, x))
				h := anchors[a].Height * math32.Exp(out.At(base+2, y, x))
				w := anchors[a].Width * math32.Exp(out.At(base+3, y, x))

				obj := sigmoid(out.At(base+4, y, x))
				var sum float32
				for lb := 0; lb < numClasses; lb++ {
					scores[lb] = math32.Exp(out.At(base+5+lb, y, x))
					sum += scores[lb]
				}

				for lb := 0; lb < numClasses; lb++ {
					score := scores[lb] * obj / sum
					if score >= thresh {
						boxes = append(boxes, common.Box{
							Top:    (cy - h/2) / float32(outH),
							Left:   (cx - w/2) / float32(outW),
							Bottom: (cy + h/2) / float32(outH),
							Right:  (cx + w/2) / float32(outW),
							Label:  lb,
							Score:  score,
						})
					}
				}
			}
		}
	}
	return boxes
}

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}
