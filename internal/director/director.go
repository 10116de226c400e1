package director

import (
	"fmt"
	"math"

	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/geom"
)

// Director places the site's sections and cards on the page
type Director struct {
	ViewportWidth  float64
	ViewportHeight float64
	Margin         float64 // horizontal page margin
	Padding        float64 // vertical padding around each section
	Gap            float64 // space between cards
	HeaderHeight   float64 // section title block
	ServiceHeight  float64 // full-width service card
	ProjectHeight  float64 // grid project card
	ContactHeight  float64
	FooterHeight   float64
}

// NewDirector creates a new Director with default settings
func NewDirector(viewportWidth, viewportHeight float64) *Director {
	return &Director{
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
		Margin:         64,
		Padding:        96,
		Gap:            32,
		HeaderHeight:   160,
		ServiceHeight:  400,
		ProjectHeight:  360,
		ContactHeight:  560,
		FooterHeight:   320,
	}
}

// Layout stacks hero, sections, contact and footer from top to bottom
func (d *Director) Layout(site *config.Site) (*Layout, error) {
	if site == nil || len(site.Sections) == 0 {
		return nil, fmt.Errorf("no sections to lay out")
	}
	if d.ViewportWidth <= 0 || d.ViewportHeight <= 0 {
		return nil, fmt.Errorf("invalid viewport %.0fx%.0f", d.ViewportWidth, d.ViewportHeight)
	}

	l := &Layout{
		Version:  site.Version,
		Width:    d.ViewportWidth,
		Viewport: d.ViewportHeight,
		Hero:     geom.Rect{X: 0, Y: 0, W: d.ViewportWidth, H: d.ViewportHeight},
	}

	y := l.Hero.Bottom()
	for _, s := range site.Sections {
		box := d.placeSection(s, y)
		l.Sections = append(l.Sections, box)
		y = box.Bounds.Bottom()
	}

	l.Contact = geom.Rect{X: 0, Y: y, W: d.ViewportWidth, H: d.ContactHeight}
	y = l.Contact.Bottom()

	l.Footer = d.placeFooter(y)
	l.Height = l.Footer.Bounds.Bottom()
	return l, nil
}

func (d *Director) margin() float64 {
	// 5% of the width on narrow screens
	return math.Min(d.Margin, d.ViewportWidth*0.05)
}

func (d *Director) placeSection(s config.Section, top float64) SectionBox {
	m := d.margin()
	inner := d.ViewportWidth - 2*m

	box := SectionBox{
		ID:     s.ID,
		Layout: s.Layout,
		Header: geom.Rect{X: m, Y: top + d.Padding, W: inner, H: d.HeaderHeight},
	}
	contentTop := box.Header.Bottom() + d.Gap

	switch s.Layout {
	case "projects":
		box.Cards = d.gridCards(s.Cards, m, contentTop, inner)
	default:
		box.Cards = d.stackCards(s.Cards, m, contentTop, inner)
	}

	bottom := contentTop
	for _, c := range box.Cards {
		bottom = math.Max(bottom, c.Bounds.Bottom())
	}
	box.Content = geom.Rect{X: m, Y: contentTop, W: inner, H: bottom - contentTop}
	box.Bounds = geom.Rect{X: 0, Y: top, W: d.ViewportWidth, H: bottom + d.Padding - top}
	return box
}

// stackCards lays service cards one per row with the image on the configured side.
func (d *Director) stackCards(cards []config.Card, x, y, w float64) []CardBox {
	out := make([]CardBox, 0, len(cards))
	for i, c := range cards {
		b := geom.Rect{X: x, Y: y, W: w, H: d.ServiceHeight}
		half := w / 2
		img := geom.Rect{X: x, Y: y, W: half, H: b.H}
		text := geom.Rect{X: x + half, Y: y, W: w - half, H: b.H}
		left := c.ImagePosition != "right"
		if !left {
			img.X, text.X = x+w-half, x
		}
		out = append(out, CardBox{Index: i, Bounds: b, Image: img, Text: text, ImageLeft: left})
		y = b.Bottom() + d.Gap
	}
	return out
}

// gridCards lays project cards in two columns, one on narrow screens.
func (d *Director) gridCards(cards []config.Card, x, y, w float64) []CardBox {
	cols := 2
	if w < 800 {
		cols = 1
	}
	cw := (w - float64(cols-1)*d.Gap) / float64(cols)

	out := make([]CardBox, 0, len(cards))
	for i := range cards {
		col, row := i%cols, i/cols
		b := geom.Rect{
			X: x + float64(col)*(cw+d.Gap),
			Y: y + float64(row)*(d.ProjectHeight+d.Gap),
			W: cw,
			H: d.ProjectHeight,
		}
		imgH := math.Round(b.H * 0.6)
		out = append(out, CardBox{
			Index:     i,
			Bounds:    b,
			Image:     geom.Rect{X: b.X, Y: b.Y, W: b.W, H: imgH},
			Text:      geom.Rect{X: b.X, Y: b.Y + imgH, W: b.W, H: b.H - imgH},
			ImageLeft: true,
		})
	}
	return out
}

func (d *Director) placeFooter(top float64) FooterBox {
	m := d.margin()
	inner := d.ViewportWidth - 2*m
	return FooterBox{
		Bounds: geom.Rect{X: 0, Y: top, W: d.ViewportWidth, H: d.FooterHeight},
		Line:   geom.Rect{X: m, Y: top + 40, W: inner, H: 2},
		Social: geom.Rect{X: m, Y: top + 80, W: inner, H: 48},
		Text:   geom.Rect{X: m, Y: top + 160, W: inner, H: 80},
	}
}
