package director

import "github.com/ivlev/folio/internal/geom"

// Layout is the page placed in document coordinates (pixels, Y down).
type Layout struct {
	Version  string       `yaml:"version"`
	Width    float64      `yaml:"width"`
	Viewport float64      `yaml:"viewport"`
	Height   float64      `yaml:"height"` // total document height
	Hero     geom.Rect    `yaml:"hero"`
	Sections []SectionBox `yaml:"sections"`
	Contact  geom.Rect    `yaml:"contact"`
	Footer   FooterBox    `yaml:"footer"`
}

// SectionBox is one section with its header and cards
type SectionBox struct {
	ID      string    `yaml:"id"`
	Layout  string    `yaml:"layout"`
	Bounds  geom.Rect `yaml:"bounds"`
	Header  geom.Rect `yaml:"header"`
	Content geom.Rect `yaml:"content"`
	Cards   []CardBox `yaml:"cards"`
}

// CardBox is a single card: its outer box and the image and text halves
type CardBox struct {
	Index     int       `yaml:"index"`
	Bounds    geom.Rect `yaml:"bounds"`
	Image     geom.Rect `yaml:"image"`
	Text      geom.Rect `yaml:"text"`
	ImageLeft bool      `yaml:"image_left"`
}

// FooterBox holds the animated footer parts
type FooterBox struct {
	Bounds geom.Rect `yaml:"bounds"`
	Line   geom.Rect `yaml:"line"`
	Social geom.Rect `yaml:"social"`
	Text   geom.Rect `yaml:"text"`
}

// Section returns the section box with the given id.
func (l *Layout) Section(id string) (SectionBox, bool) {
	for _, s := range l.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return SectionBox{}, false
}

// MaxScroll is the largest meaningful scroll position.
func (l *Layout) MaxScroll() float64 {
	if m := l.Height - l.Viewport; m > 0 {
		return m
	}
	return 0
}
