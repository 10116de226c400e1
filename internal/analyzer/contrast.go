package analyzer

import (
	"errors"
	"image"
	"image/color"
	"math"
)

var errEmpty = errors.New("empty image")

// ContrastDetector rates an image by brightness and Sobel edge density
type ContrastDetector struct {
	LightThreshold float64 // mean luma above which the image counts as light
	EdgeThreshold  float64 // gradient magnitude threshold
	BusyDensity    float64 // edge density above which the image counts as busy
}

// NewContrastDetector creates a new contrast-based detector with default settings
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		LightThreshold: 140,
		EdgeThreshold:  30.0,
		BusyDensity:    0.12,
	}
}

// Detect measures luminance and edge density of img
func (d *ContrastDetector) Detect(img image.Image) (Report, error) {
	b := img.Bounds()
	if b.Empty() {
		return Report{}, errEmpty
	}

	gray := toGrayscale(img)
	edges := sobelEdgeDetection(gray, d.EdgeThreshold)

	luma := meanLuma(gray)
	density := coverage(edges)
	return Report{
		MeanLuma:    luma,
		EdgeDensity: density,
		Light:       luma > d.LightThreshold,
		Busy:        density > d.BusyDensity,
	}, nil
}

// LumaDetector only looks at brightness; it never reports an image as busy.
type LumaDetector struct {
	Threshold float64
}

func (d *LumaDetector) Detect(img image.Image) (Report, error) {
	if img.Bounds().Empty() {
		return Report{}, errEmpty
	}
	luma := meanLuma(toGrayscale(img))
	return Report{MeanLuma: luma, Light: luma > d.Threshold}, nil
}

// toGrayscale converts an image to grayscale
func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	return gray
}

func meanLuma(gray *image.Gray) float64 {
	b := gray.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	sum := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += int(gray.GrayAt(x, y).Y)
		}
	}
	return float64(sum) / float64(n)
}

// coverage is the share of white pixels in an edge map
func coverage(edges *image.Gray) float64 {
	b := edges.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	on := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if edges.GrayAt(x, y).Y > 128 {
				on++
			}
		}
	}
	return float64(on) / float64(n)
}

// sobelEdgeDetection applies Sobel operator to detect edges
func sobelEdgeDetection(gray *image.Gray, threshold float64) *image.Gray {
	bounds := gray.Bounds()
	edges := image.NewGray(bounds)

	// Sobel kernels
	gx := [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	gy := [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += pixel * float64(gx[ky+1][kx+1])
					sumY += pixel * float64(gy[ky+1][kx+1])
				}
			}

			if math.Sqrt(sumX*sumX+sumY*sumY) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return edges
}
