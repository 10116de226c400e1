package system

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Thumbnail scales img to fit inside w x h, preserving its aspect ratio, and
// letterboxes it on a black canvas. The scratch buffer comes from the shared
// pool; the returned image is a fresh copy the caller owns.
func Thumbnail(img image.Image, w, h int) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rectangle{})
	}
	size := image.Pt(w, h)
	canvas := GetImage(size)
	defer PutImage(canvas)

	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	if img != nil {
		sb := img.Bounds()
		if sb.Dx() > 0 && sb.Dy() > 0 {
			dst := fit(sb.Size(), size)
			draw.CatmullRom.Scale(canvas, dst, img, sb, draw.Over, nil)
		}
	}

	out := image.NewRGBA(canvas.Bounds())
	copy(out.Pix, canvas.Pix)
	return out
}

// fit returns the centred rectangle of src's aspect inside bounds.
func fit(src, bounds image.Point) image.Rectangle {
	w, h := bounds.X, bounds.X*src.Y/src.X
	if h > bounds.Y {
		w, h = bounds.Y*src.X/src.Y, bounds.Y
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x := (bounds.X - w) / 2
	y := (bounds.Y - h) / 2
	return image.Rect(x, y, x+w, y+h)
}
