package geom

// Point is a position in page (document) coordinates.
type Point struct {
	X float64
	Y float64
}

// Rect represents an element's bounding box in document coordinates.
// Y grows downwards, so Y is the element's top edge.
type Rect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Translate returns r moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// IntersectsSpan reports whether the vertical span [top, bottom) overlaps r.
func (r Rect) IntersectsSpan(top, bottom float64) bool {
	return r.Y < bottom && r.Y+r.H > top
}
