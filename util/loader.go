package util

import (
	"image"
	// Register the decoders the loader supports.
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ImageFile represents a decoded image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Image is the decoded image.
	Image image.Image
	// Frame is the frame number parsed from the file name.
	Frame int
}

// LoadImageFile decodes a single JPEG or PNG file.
//
// Arguments:
// - path: Path to the image file.
//
// Returns:
// - image.Image: The decoded image.
// - error: Error if opening or decoding fails.
func LoadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening image")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return img, nil
}

// LoadDirectoryImageFiles decodes all image files from a directory, ordered
// by the frame number in their "frame-N" file names.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of decoded images in frame order.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var imgs []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		switch ext {
		case ".jpg", ".jpeg", ".png":
			imgPath := filepath.Join(dir, file.Name())
			img, err := LoadImageFile(imgPath)
			if err != nil {
				return nil, err
			}
			frame, err := strconv.Atoi(strings.TrimSuffix(strings.ReplaceAll(file.Name(), "frame-", ""), ext))
			if err != nil {
				return nil, err
			}
			imgs = append(imgs, ImageFile{
				Path:  imgPath,
				Image: img,
				Frame: frame,
			})
		}
	}

	sort.Slice(imgs, func(i, j int) bool {
		return imgs[i].Frame < imgs[j].Frame
	})

	return imgs, nil
}
