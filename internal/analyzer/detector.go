package analyzer

import "image"

// Report describes how readable overlaid text would be on an image.
type Report struct {
	MeanLuma    float64 // 0-255
	EdgeDensity float64 // share of pixels on an edge, 0.0-1.0
	// Light is true when dark text reads better than light text.
	Light bool
	// Busy is true when the image is too detailed for text without a backdrop.
	Busy bool
}

// Detector is the interface for image analysis strategies
type Detector interface {
	Detect(img image.Image) (Report, error)
}
