package renderer

import (
	"fmt"
	"image"
	"log"
	"math"
	"path"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ivlev/folio/internal/analyzer"
	"github.com/ivlev/folio/internal/card"
	"github.com/ivlev/folio/internal/contact"
	"github.com/ivlev/folio/internal/engine"
	"github.com/ivlev/folio/internal/geom"
	"github.com/ivlev/folio/internal/source"
	"github.com/ivlev/folio/internal/system"
	"github.com/ivlev/folio/internal/textsplit"
)

// Default cell size in document pixels.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// Painter draws page views onto a terminal screen. One document pixel row
// pair maps to one half-block cell for images.
type Painter struct {
	Screen    tcell.Screen
	CellW     float64
	CellH     float64
	Library   *source.Library
	Detector  analyzer.Detector
	ShowStats bool
	logger    *log.Logger

	mu      sync.Mutex
	scaled  map[thumbKey]*image.RGBA
	reports map[string]analyzer.Report
}

type thumbKey struct {
	ref  string
	w, h int
}

// NewPainter creates a painter. lib and det may be nil.
func NewPainter(screen tcell.Screen, lib *source.Library, det analyzer.Detector, logger *log.Logger) *Painter {
	if logger == nil {
		logger = log.Default()
	}
	return &Painter{
		Screen:   screen,
		CellW:    CellWidth,
		CellH:    CellHeight,
		Library:  lib,
		Detector: det,
		logger:   logger,
		scaled:   make(map[thumbKey]*image.RGBA),
		reports:  make(map[string]analyzer.Report),
	}
}

// Viewport returns the screen size in document pixels.
func (p *Painter) Viewport() (w, h float64) {
	cols, rows := p.Screen.Size()
	return float64(cols) * p.CellW, float64(rows) * p.CellH
}

// Point converts a cell to the viewport position of its centre.
func (p *Painter) Point(col, row int) geom.Point {
	return geom.Point{X: (float64(col) + 0.5) * p.CellW, Y: (float64(row) + 0.5) * p.CellH}
}

// Paint draws one frame.
func (p *Painter) Paint(v engine.PageView) {
	cols, rows := p.Screen.Size()
	c := &canvas{p: p, cols: cols, rows: rows, scrollY: v.ScrollY}
	p.Screen.Fill(' ', Style(Ink, Black))

	if v.Layout != nil {
		c.hero(v)
		for _, sv := range v.Sections {
			c.section(sv)
		}
		for i, cv := range v.Cards {
			c.card(cv, i == v.Focus)
		}
		c.contact(v)
		c.footer(v.Footer)
	}
	if v.Modal != nil {
		c.modal(v.Modal)
	}
	if v.Notice != nil {
		c.notice(*v.Notice)
	}
	if p.ShowStats {
		st := v.Stats
		c.text(0, 0, fmt.Sprintf(" %.0ffps  cards %d  animating %d  triggers %d  y %.0f ",
			st.FPS, st.Cards, st.Animating, st.Triggers, v.ScrollY), Style(Black, Violet), cols)
	}
	p.Screen.Show()
}

// thumb returns the frame scaled to w x h pixels, nil when not loaded.
func (p *Painter) thumb(ref string, w, h int) *image.RGBA {
	if p.Library == nil || w <= 0 || h <= 0 {
		return nil
	}
	key := thumbKey{ref, w, h}
	p.mu.Lock()
	img, ok := p.scaled[key]
	p.mu.Unlock()
	if ok {
		return img
	}
	src, ok := p.Library.Thumbnail(ref)
	if !ok {
		return nil
	}
	img = system.Thumbnail(src, w, h)
	p.mu.Lock()
	p.scaled[key] = img
	p.mu.Unlock()
	return img
}

// report returns the caption readability report of a loaded frame.
func (p *Painter) report(ref string) (analyzer.Report, bool) {
	if p.Library == nil || p.Detector == nil {
		return analyzer.Report{}, false
	}
	p.mu.Lock()
	r, ok := p.reports[ref]
	p.mu.Unlock()
	if ok {
		return r, true
	}
	src, ok := p.Library.Thumbnail(ref)
	if !ok {
		return analyzer.Report{}, false
	}
	r, err := p.Detector.Detect(src)
	if err != nil {
		p.logger.Printf("[!] analyze %s: %v", ref, err)
		return analyzer.Report{}, false
	}
	p.mu.Lock()
	p.reports[ref] = r
	p.mu.Unlock()
	return r, true
}

type canvas struct {
	p          *Painter
	cols, rows int
	scrollY    float64
}

func (c *canvas) cell(x, y float64) (int, int) {
	return int(math.Floor(x / c.p.CellW)), int(math.Floor((y - c.scrollY) / c.p.CellH))
}

func (c *canvas) cells(r geom.Rect) (col, row, w, h int) {
	col, row = c.cell(r.X, r.Y)
	return col, row, int(r.W / c.p.CellW), int(r.H / c.p.CellH)
}

func (c *canvas) visible(r geom.Rect) bool {
	return r.IntersectsSpan(c.scrollY, c.scrollY+float64(c.rows)*c.p.CellH)
}

func (c *canvas) put(col, row int, r rune, style tcell.Style) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.p.Screen.SetContent(col, row, r, nil, style)
}

// text draws s from col, clipped to maxw columns. It returns the columns used.
func (c *canvas) text(col, row int, s string, style tcell.Style, maxw int) int {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if used+w > maxw {
			break
		}
		c.put(col+used, row, r, style)
		used += w
	}
	return used
}

func (c *canvas) centered(col, row, w int, s string, style tcell.Style) {
	sw := runewidth.StringWidth(s)
	if sw > w {
		sw = w
	}
	c.text(col+(w-sw)/2, row, s, style, w)
}

func (c *canvas) box(r geom.Rect, style tcell.Style, double bool) {
	col, row, w, h := c.cells(r)
	if w < 2 || h < 2 {
		return
	}
	hz, vt, tl, tr, bl, br := '─', '│', '╭', '╮', '╰', '╯'
	if double {
		hz, vt, tl, tr, bl, br = '═', '║', '╔', '╗', '╚', '╝'
	}
	for x := 1; x < w-1; x++ {
		c.put(col+x, row, hz, style)
		c.put(col+x, row+h-1, hz, style)
	}
	for y := 1; y < h-1; y++ {
		c.put(col, row+y, vt, style)
		c.put(col+w-1, row+y, vt, style)
	}
	c.put(col, row, tl, style)
	c.put(col+w-1, row, tr, style)
	c.put(col, row+h-1, bl, style)
	c.put(col+w-1, row+h-1, br, style)
}

func (c *canvas) hero(v engine.PageView) {
	h := v.Layout.Hero
	if !c.visible(h) {
		return
	}
	col, row, w, hc := c.cells(h)
	c.centered(col, row+hc/2-1, w, strings.ToUpper(v.Title), Style(Ink, Black).Bold(true))
	c.centered(col, row+hc/2+1, w, v.Contact.Heading, Style(Violet, Black))
	c.centered(col, row+hc-2, w, "scroll ↓", Style(Muted, Black))
}

func (c *canvas) section(sv engine.SectionView) {
	b := sv.Box.Bounds
	if !c.visible(b) {
		return
	}

	// background dots drift with the background parallax
	col, row, w, h := c.cells(b)
	shift := int(math.Round(sv.BackgroundY / c.p.CellH))
	dot := Style(Blend(Black, Muted, 0.35), Black)
	for y := 0; y < h; y++ {
		if (y-shift)%6 != 0 {
			continue
		}
		for x := (y / 6 % 2) * 4; x < w; x += 8 {
			c.put(col+x, row+y, '·', dot)
		}
	}

	hd := sv.Box.Header.Translate(0, sv.ContentY)
	hcol, hrow, hw, _ := c.cells(hd)
	lines := []string{strings.ToUpper(sv.Spec.Title), sv.Spec.Subtitle}
	for i, off := range sv.Header {
		dy := int(math.Round(off.Y / c.p.CellH))
		fg := Blend(Black, Ink, off.Opacity)
		if i > 0 {
			fg = Blend(Black, Violet, off.Opacity)
		}
		c.centered(hcol, hrow+2+2*i+dy, hw, lines[i], Style(fg, Black).Bold(i == 0))
	}
}

func (c *canvas) card(v card.View, focused bool) {
	b := v.Bounds
	if v.Opacity <= 0.05 || !c.visible(b) {
		return
	}

	border := Blend(Black, Muted, v.Opacity)
	switch {
	case v.Transform.Scale < 1:
		border = Blend(Black, Accent, v.Opacity)
	case focused:
		border = Blend(Black, Violet, v.Opacity)
	}
	c.box(b, Style(border, Black), focused)

	img, text := split(b, v)
	c.image(img, v.Image, v.ImageOpacity*v.Opacity)
	if v.ImageCount > 1 {
		col, row, w, h := c.cells(img)
		dots := make([]rune, 0, 2*v.ImageCount)
		for i := 0; i < v.ImageCount; i++ {
			d := '○'
			if i == v.ImageIndex {
				d = '●'
			}
			dots = append(dots, d, ' ')
		}
		c.centered(col, row+h, w, strings.TrimSpace(string(dots)), Style(Violet, Black))
	}

	col, row, w, _ := c.cells(text)
	used := c.units(v.Title, col+2, row+1, w-4, Ink, v.Opacity, true)
	used += c.units(v.Description, col+2, row+2+used, w-4, Blend(Black, Ink, 0.75), v.Opacity, false)
	if len(v.Spec.Technologies) > 0 {
		c.text(col+2, row+3+used, strings.Join(v.Spec.Technologies, " · "), Style(Blend(Black, Violet, v.Opacity*v.Revealed), Black), w-4)
	}
	if v.Spec.ComingSoon {
		c.text(col+2, row+4+used, "coming soon", Style(Black, Blend(Black, Violet, v.Opacity)), w-4)
	}

	if v.Glow.Opacity > 0 {
		gc, gr := c.cell(b.X+v.Glow.X, b.Y+v.Glow.Y)
		c.put(gc, gr, '✦', Style(Violet, Black))
	}
}

// split returns the image and text halves of a card at its visual position.
func split(b geom.Rect, v card.View) (img, text geom.Rect) {
	if v.Layout == "projects" {
		ih := math.Round(b.H * 0.6)
		return geom.Rect{X: b.X, Y: b.Y, W: b.W, H: ih}, geom.Rect{X: b.X, Y: b.Y + ih, W: b.W, H: b.H - ih}
	}
	half := b.W / 2
	img = geom.Rect{X: b.X, Y: b.Y, W: half, H: b.H}
	text = geom.Rect{X: b.X + half, Y: b.Y, W: b.W - half, H: b.H}
	if !v.ImageLeft {
		img.X, text.X = b.X+b.W-half, b.X
	}
	return img, text
}

// units flows split text into w columns. Each unit keeps its own opacity and
// vertical offset. It returns the number of rows used.
func (c *canvas) units(units []*textsplit.Unit, col, row, w int, fg RGB, alpha float64, bold bool) int {
	if w <= 0 || len(units) == 0 {
		return 0
	}
	x, line, last := 0, 0, units[0].Line
	for _, u := range units {
		if u.Line != last {
			line += u.Line - last
			last = u.Line
			x = 0
		}
		if u.Space {
			if x > 0 && u.Text != "\n" {
				x += u.Width
			}
			continue
		}
		if x+u.Width > w && x > 0 {
			line++
			x = 0
		}
		op := u.Value("opacity", 1) * alpha
		if op > 0.02 {
			dy := int(math.Round(u.Value("y", 0) / c.p.CellH))
			c.text(col+x, row+line+dy, u.Text, Style(Blend(Black, fg, op), Black).Bold(bold), w-x)
		}
		x += u.Width
	}
	return line + 1
}

func (c *canvas) image(r geom.Rect, ref string, alpha float64) {
	r = geom.Rect{X: r.X + c.p.CellW, Y: r.Y + c.p.CellH, W: r.W - 2*c.p.CellW, H: r.H - 2*c.p.CellH}
	col, row, w, h := c.cells(r)
	if w <= 0 || h <= 0 {
		return
	}

	img := c.p.thumb(ref, w, 2*h)
	if img == nil {
		shade := Style(Blend(Black, Muted, alpha*0.6), Black)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c.put(col+x, row+y, '░', shade)
			}
		}
		c.centered(col, row+h/2, w, path.Base(ref), Style(Blend(Black, Ink, alpha), Black))
		return
	}

	for y := 0; y < h; y++ {
		if row+y < 0 || row+y >= c.rows {
			continue
		}
		for x := 0; x < w; x++ {
			top := img.RGBAAt(x, 2*y)
			bot := img.RGBAAt(x, 2*y+1)
			c.put(col+x, row+y, '▀', Style(
				Blend(Black, RGB{int32(top.R), int32(top.G), int32(top.B)}, alpha),
				Blend(Black, RGB{int32(bot.R), int32(bot.G), int32(bot.B)}, alpha),
			))
		}
	}

	caption := Style(Ink, Black)
	if rep, ok := c.p.report(ref); ok {
		switch {
		case rep.Busy:
			caption = Style(Ink, Panel)
		case rep.Light:
			caption = Style(Black, Ink)
		}
	}
	c.text(col, row+h-1, " "+path.Base(ref)+" ", caption, w)
}

func (c *canvas) contact(v engine.PageView) {
	r := v.Layout.Contact
	if !c.visible(r) {
		return
	}
	col, row, w, h := c.cells(r)
	c.centered(col, row+3, w, "LET'S CONNECT", Style(Violet, Black))
	c.centered(col, row+5, w, v.Contact.Heading, Style(Ink, Black).Bold(true))
	c.centered(col, row+8, w, "[ c ] Send Message", Style(Ink, Accent))
	c.centered(col, row+10, w, "or reach out directly:", Style(Violet, Black))
	c.centered(col, row+11, w, v.Contact.Email, Style(Ink, Black).Bold(true))

	if q := v.ContactQR; len(q) > 0 {
		qw := len(q[0])
		qc := col + w - qw - 4
		qr := row + h - (len(q)+1)/2 - 2
		c.qr(q, qc, qr)
	}
}

// qr draws the matrix with two modules per cell.
func (c *canvas) qr(bits [][]bool, col, row int) {
	style := func(top, bot bool) tcell.Style {
		fg, bg := Ink, Ink
		if top {
			fg = Black
		}
		if bot {
			bg = Black
		}
		return Style(fg, bg)
	}
	for y := 0; y < len(bits); y += 2 {
		for x := range bits[y] {
			bot := y+1 < len(bits) && bits[y+1][x]
			c.put(col+x, row+y/2, '▀', style(bits[y][x], bot))
		}
	}
}

func (c *canvas) footer(f engine.FooterView) {
	if !c.visible(f.Box.Bounds) {
		return
	}
	col, row, w, _ := c.cells(f.Box.Line)
	n := int(math.Round(float64(w) * f.LineScale))
	for x := 0; x < n; x++ {
		c.put(col+(w-n)/2+x, row, '─', Style(Violet, Black))
	}

	col, row, w, _ = c.cells(f.Box.Social)
	x := 0
	for i, l := range f.Spec.Social {
		if i >= len(f.Social) {
			break
		}
		o := f.Social[i]
		dy := int(math.Round(o.Y / c.p.CellH))
		x += c.text(col+x, row+1+dy, "["+l.Label+"]", Style(Blend(Black, Ink, o.Opacity), Black), w-x) + 2
	}

	col, row, w, _ = c.cells(f.Box.Text)
	lines := []string{f.Spec.Tagline}
	for _, l := range f.Spec.Links {
		lines = append(lines, l.Label)
	}
	for i, s := range lines {
		if i >= len(f.Text) {
			break
		}
		o := f.Text[i]
		dy := int(math.Round(o.Y / c.p.CellH))
		fg := Blend(Black, Muted, o.Opacity)
		if i == 0 {
			fg = Blend(Black, Ink, o.Opacity)
		}
		c.text(col, row+i+dy, s, Style(fg, Black), w)
	}
}

// dim darkens what is already on screen by a.
func (c *canvas) dim(a float64) {
	for y := 0; y < c.rows; y++ {
		for x := 0; x < c.cols; x++ {
			r, comb, style, _ := c.p.Screen.GetContent(x, y)
			fg, bg, attr := style.Decompose()
			c.p.Screen.SetContent(x, y, r, comb, tcell.StyleDefault.
				Foreground(darken(fg, a)).Background(darken(bg, a)).Attributes(attr))
		}
	}
}

func darken(col tcell.Color, a float64) tcell.Color {
	r, g, b := col.RGB()
	if r < 0 {
		return col
	}
	return Blend(RGB{r, g, b}, Black, a).Color()
}

func (c *canvas) modal(m *engine.ModalView) {
	c.dim(0.8 * m.Overlay.Opacity)

	w := min(64, c.cols-4)
	h := 16
	col := (c.cols - w) / 2
	row := (c.rows-h)/2 + int(math.Round(m.Content.Y/c.p.CellH))
	a := m.Content.Opacity
	panel := Blend(Black, Panel, a)
	bg := Style(panel, panel)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.put(col+x, row+y, ' ', bg)
		}
	}
	border := Style(Blend(panel, Violet, a), panel)
	c.box(geom.Rect{
		X: float64(col) * c.p.CellW,
		Y: c.scrollY + float64(row)*c.p.CellH,
		W: float64(w) * c.p.CellW,
		H: float64(h) * c.p.CellH,
	}, border, false)

	c.text(col+3, row+1, "Send a Message", Style(Blend(panel, Violet, a), panel).Bold(true), w-6)
	c.text(col+w-6, row+1, "esc", Style(Blend(panel, Muted, a), panel), 3)

	f := m.Form
	values := []string{f.FromName, f.ReplyTo, f.Subject, f.Message}
	labels := []string{"Name", "Email", "Subject", "Message"}
	for i, label := range labels {
		y := row + 3 + 2*i
		ls := Style(Blend(panel, Muted, a), panel)
		if i == m.Field {
			ls = Style(Blend(panel, Violet, a), panel).Bold(true)
		}
		c.text(col+3, y, label, ls, 9)
		val := values[i]
		if i == m.Field && !m.Busy {
			val += "▏"
		}
		// keep the tail visible
		room := w - 16
		if rw := []rune(val); len(rw) > room && room > 0 {
			val = string(rw[len(rw)-room:])
		}
		c.text(col+13, y, val, Style(Blend(panel, Ink, a), panel), w-16)
	}

	btn := "[ enter ] Send"
	if m.Busy {
		btn = "Sending…"
	}
	c.text(col+3, row+h-3, btn, Style(Blend(panel, Ink, a), Blend(panel, Accent, a)), w-6)
	c.text(col+3, row+h-2, "to "+f.ToEmail, Style(Blend(panel, Muted, a), panel), w-6)
}

func (c *canvas) notice(n contact.Notice) {
	fg := Positive
	mark := "✓ "
	if n.Status != contact.Sent {
		fg, mark = Danger, "! "
	}
	s := " " + mark + n.Message + " "
	sw := runewidth.StringWidth(s)
	c.text(c.cols-sw-2, c.rows-2, s, Style(fg, Panel), sw)
}
