package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"github.com/nvr-ai/go-yolo/detector"
	"github.com/nvr-ai/go-yolo/models/yolov2"
	"github.com/nvr-ai/go-yolo/util"
)

func main() {
	var (
		modelPath  string
		configPath string
		imagePath  string
	)
	flag.StringVar(&modelPath, "model", "yolov2.onnx", "Path to YOLOv2 ONNX model file")
	flag.StringVar(&configPath, "config", "yolov2.json", "Path to model config file")
	flag.StringVar(&imagePath, "image", "", "Path to an image file, or a directory of frame-N images")
	flag.Parse()

	if imagePath == "" {
		log.Fatal("missing required -image flag")
	}

	config, err := yolov2.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	det, err := detector.NewFromONNX(modelPath, config)
	if err != nil {
		log.Fatalf("Error loading model: %v", err)
	}
	defer det.Close()

	info, err := os.Stat(imagePath)
	if err != nil {
		log.Fatalf("Error reading input: %v", err)
	}

	if info.IsDir() {
		frames, err := util.LoadDirectoryImageFiles(imagePath)
		if err != nil {
			log.Fatalf("Error loading frames: %v", err)
		}
		for _, frame := range frames {
			if err := predict(det, frame.Path, frame.Image); err != nil {
				log.Fatalf("Error predicting %s: %v", frame.Path, err)
			}
		}
		return
	}

	img, err := util.LoadImageFile(imagePath)
	if err != nil {
		log.Fatalf("Error loading image: %v", err)
	}
	if err := predict(det, imagePath, img); err != nil {
		log.Fatalf("Error predicting: %v", err)
	}
}

// predict runs one image through the detector and prints its detections.
func predict(det *detector.Detector, path string, img image.Image) error {
	start := time.Now()
	boxes, err := det.Predict(img)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d objects in %.2fms\n", path, len(boxes),
		float64(time.Since(start).Microseconds())/1000.0)
	for i := range boxes {
		b := &boxes[i]
		fmt.Printf("  %s (confidence %.2f): (%.1f, %.1f), (%.1f, %.1f)\n",
			det.LabelName(b), b.Score, b.Left, b.Top, b.Right, b.Bottom)
	}
	return nil
}
