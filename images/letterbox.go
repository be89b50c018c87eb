// Package images - Image-to-tensor preprocessing.
package images

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"

	"github.com/nvr-ai/go-yolo/inference"
)

// FillValue is the neutral gray written into the letterbox padding bands.
const FillValue = 0.5

// Letterbox writes img into dst preserving aspect ratio.
//
// The image is scaled by min(dstH/imgH, dstW/imgW) with a nearest-neighbor
// filter, normalized from [0,255] to [0,1] per channel, and centered in the
// tensor; the remaining border keeps FillValue. Padding remainders split by
// integer division, so an odd remainder leaves the extra row/column on the
// bottom-right edge.
//
// Arguments:
//   - dst: The input tensor view to fill. Must have exactly 3 channels.
//   - img: The source image, any size.
//
// Returns:
//   - float32: The applied scale, needed to map detections back into source
//     image coordinates.
//   - error: An error if dst does not have 3 channels.
func Letterbox(dst inference.View, img image.Image) (float32, error) {
	if dst.Channels() != 3 {
		return 0, fmt.Errorf("input tensor has %d channels, letterboxing needs 3", dst.Channels())
	}

	inH, inW := dst.Height(), dst.Width()
	imgH := img.Bounds().Dy()
	imgW := img.Bounds().Dx()

	scale := math32.Min(float32(inH)/float32(imgH), float32(inW)/float32(imgW))
	h := int(math32.Round(float32(imgH) * scale))
	w := int(math32.Round(float32(imgW) * scale))
	if h > inH {
		h = inH
	}
	if w > inW {
		w = inW
	}
	resized := resize.Resize(uint(w), uint(h), img, resize.NearestNeighbor)

	dst.Fill(FillValue)

	top := (inH - h) / 2
	left := (inW - w) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			dst.Set(0, y+top, x+left, float32(r>>8)/255.0)
			dst.Set(1, y+top, x+left, float32(g>>8)/255.0)
			dst.Set(2, y+top, x+left, float32(b>>8)/255.0)
		}
	}

	return scale, nil
}
