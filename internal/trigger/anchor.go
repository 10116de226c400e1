package trigger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/folio/internal/geom"
)

// Anchor is a scroll predicate: it is met when a line on the element
// reaches a line on the viewport.
type Anchor struct {
	Element  float64 // 0 = element top, 1 = element bottom
	Viewport float64 // 0 = viewport top, 1 = viewport bottom
	Offset   float64 // pixels added to the viewport line
}

// ScrollY returns the page scroll position at which the anchor is met.
func (a Anchor) ScrollY(bounds geom.Rect, viewportHeight float64) float64 {
	return bounds.Y + a.Element*bounds.H - (a.Viewport*viewportHeight + a.Offset)
}

func (a Anchor) String() string {
	s := fmt.Sprintf("%s %s", edgeName(a.Element), edgeName(a.Viewport))
	if a.Offset > 0 {
		s += fmt.Sprintf("+=%g", a.Offset)
	} else if a.Offset < 0 {
		s += fmt.Sprintf("-=%g", -a.Offset)
	}
	return s
}

func edgeName(v float64) string {
	switch v {
	case 0:
		return "top"
	case 0.5:
		return "center"
	case 1:
		return "bottom"
	}
	return fmt.Sprintf("%g%%", v*100)
}

// Common anchors.
var (
	TopBottom    = Anchor{Element: 0, Viewport: 1}
	TopCenter    = Anchor{Element: 0, Viewport: 0.5}
	TopTop       = Anchor{Element: 0, Viewport: 0}
	BottomTop    = Anchor{Element: 1, Viewport: 0}
	BottomCenter = Anchor{Element: 1, Viewport: 0.5}
)

// ParseAnchor parses "<element> <viewport>" pairs such as "top bottom",
// "top center+=100" or "bottom 80%".
func ParseAnchor(s string) (Anchor, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Anchor{}, fmt.Errorf("anchor %q: expected \"<element> <viewport>\"", s)
	}

	elem, err := parseEdge(fields[0])
	if err != nil {
		return Anchor{}, fmt.Errorf("anchor %q: %w", s, err)
	}

	vpToken := fields[1]
	offset := 0.0
	if i := strings.IndexAny(vpToken, "+-"); i > 0 && i+1 < len(vpToken) && vpToken[i+1] == '=' {
		n, err := strconv.ParseFloat(vpToken[i+2:], 64)
		if err != nil {
			return Anchor{}, fmt.Errorf("anchor %q: bad offset: %w", s, err)
		}
		if vpToken[i] == '-' {
			n = -n
		}
		offset = n
		vpToken = vpToken[:i]
	}

	vp, err := parseEdge(vpToken)
	if err != nil {
		return Anchor{}, fmt.Errorf("anchor %q: %w", s, err)
	}
	return Anchor{Element: elem, Viewport: vp, Offset: offset}, nil
}

func parseEdge(tok string) (float64, error) {
	switch tok {
	case "top":
		return 0, nil
	case "center":
		return 0.5, nil
	case "bottom":
		return 1, nil
	}
	if strings.HasSuffix(tok, "%") {
		n, err := strconv.ParseFloat(strings.TrimSuffix(tok, "%"), 64)
		if err != nil {
			return 0, err
		}
		return n / 100, nil
	}
	return 0, fmt.Errorf("unknown edge %q", tok)
}
