package engine

import (
	"github.com/ivlev/folio/internal/card"
	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/contact"
	"github.com/ivlev/folio/internal/director"
	"github.com/ivlev/folio/internal/geom"
)

// Offset is the animated state of a simple page element.
type Offset struct {
	Y       float64
	Opacity float64
}

func offsetOf(e *card.Element) Offset {
	return Offset{Y: e.Value("y", 0), Opacity: e.Value("opacity", 1)}
}

// SectionView is a section with its header and parallax offsets.
type SectionView struct {
	Spec        config.Section
	Box         director.SectionBox
	Header      []Offset
	BackgroundY float64
	ContentY    float64
}

// FooterView carries the footer reveal state.
type FooterView struct {
	Spec      config.Footer
	Box       director.FooterBox
	LineScale float64
	Social    []Offset
	Text      []Offset
}

// ModalView is the contact dialog snapshot. Nil in PageView when closed.
type ModalView struct {
	Overlay Offset
	Content Offset
	Form    contact.Form
	Field   int
	Busy    bool
	Email   string
	QR      [][]bool
}

// PageView is everything a renderer needs for one frame.
type PageView struct {
	Title    string
	ScrollY  float64
	Viewport geom.Rect // document coordinates
	Layout   *director.Layout
	Sections []SectionView
	Cards    []card.View
	Focus    int
	Contact  config.Contact
	// ContactQR is the mailto QR matrix of the contact address.
	ContactQR [][]bool
	Footer    FooterView
	Modal     *ModalView
	Notice    *contact.Notice
	Stats     Stats
}

// View snapshots the page.
func (s *Site) View() PageView {
	s.mu.Lock()
	v := PageView{
		Title:    s.Spec.Title,
		ScrollY:  s.scrollY,
		Layout:   s.layout,
		Contact:  s.Spec.Contact,
		Notice:   s.notice,
		Stats:    s.stats,
		Viewport: geom.Rect{X: 0, Y: s.scrollY, W: s.layout.Width, H: s.layout.Viewport},
	}
	cards := s.cards
	sections := s.sections
	footer := s.footer
	s.mu.Unlock()
	v.Focus = s.Focused()
	v.ContactQR = s.modal.QR()

	for _, c := range cards {
		v.Cards = append(v.Cards, c.View())
	}
	for _, sec := range sections {
		sv := SectionView{
			Spec:        sec.spec,
			Box:         sec.box,
			BackgroundY: sec.Background.Value("y", 0),
			ContentY:    sec.Content.Value("y", 0),
		}
		for _, h := range sec.Header {
			sv.Header = append(sv.Header, offsetOf(h))
		}
		v.Sections = append(v.Sections, sv)
	}
	if footer != nil {
		fv := FooterView{
			Spec:      footer.spec,
			Box:       footer.box,
			LineScale: footer.Line.Value("scaleX", 1),
		}
		for _, e := range footer.Social {
			fv.Social = append(fv.Social, offsetOf(e))
		}
		for _, e := range footer.Text {
			fv.Text = append(fv.Text, offsetOf(e))
		}
		v.Footer = fv
	}

	if m := s.modal; m.IsOpen() {
		v.Modal = &ModalView{
			Overlay: offsetOf(m.Overlay),
			Content: offsetOf(m.Content),
			Form:    m.Form(),
			Field:   m.Field(),
			Busy:    m.Busy(),
			Email:   m.Email(),
			QR:      m.QR(),
		}
	}
	return v
}
