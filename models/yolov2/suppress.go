package yolov2

import (
	"sort"

	"github.com/nvr-ai/go-yolo/common"
)

// Suppress removes same-label near-duplicates from boxes in place and
// returns the surviving slice.
//
// Boxes are stably sorted by label ascending, then score descending; a NaN
// score compares equal to everything, keeping the pre-sort order. The scan
// then drops any box whose immediate predecessor in the sorted order has the
// same label and overlaps it above thresh.
//
// Each box is only ever compared against its direct predecessor, never
// against all previously kept boxes. In a chain of three mutually-overlapping
// boxes the third is checked against the second even when the second was
// dropped, so near-duplicates can survive where full greedy NMS would remove
// them. Downstream consumers depend on this exact behavior.
//
// Arguments:
//   - boxes: The candidate boxes. Reordered and truncated in place.
//   - thresh: The IoU above which a box is considered a duplicate.
//
// Returns:
//   - The kept boxes, sorted by (label, score descending).
func Suppress(boxes []common.Box, thresh float32) []common.Box {
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Label != boxes[j].Label {
			return boxes[i].Label < boxes[j].Label
		}
		return boxes[i].Score > boxes[j].Score
	})

	kept := boxes[:0]
	for i := range boxes {
		// Safe to compact in place: slot i-1 is only overwritten when nothing
		// before it was dropped, in which case it still holds boxes[i-1].
		if i > 0 && boxes[i].Label == boxes[i-1].Label && boxes[i].IoU(&boxes[i-1]) > thresh {
			continue
		}
		kept = append(kept, boxes[i])
	}
	return kept
}
