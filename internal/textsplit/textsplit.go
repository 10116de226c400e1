package textsplit

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/ivlev/folio/internal/timeline"
)

// Granularity selects the unit size of a split.
type Granularity int

const (
	Char Granularity = iota
	Word
)

func (g Granularity) String() string {
	if g == Word {
		return "word"
	}
	return "char"
}

// ParseGranularity accepts "char"/"chars" and "word"/"words".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "char", "chars", "":
		return Char, nil
	case "word", "words":
		return Word, nil
	}
	return Char, fmt.Errorf("unknown split granularity %q", s)
}

// Unit is one positioned piece of a split text block. Units are animation
// targets: a timeline writes their properties and the renderer reads them back.
// Line and Column are the unit's fixed cell position inside the block, so
// animating a unit never reflows its neighbours.
type Unit struct {
	Text   string
	Index  int
	Line   int
	Column int
	Width  int
	Space  bool

	block *Block
	props map[string]float64
}

// Set implements timeline.Target. It fails with timeline.ErrStaleTarget after
// the owning block has been torn down.
func (u *Unit) Set(property string, value float64) error {
	u.block.mu.Lock()
	defer u.block.mu.Unlock()
	if u.block.torn {
		return timeline.ErrStaleTarget
	}
	if u.props == nil {
		u.props = make(map[string]float64)
	}
	u.props[property] = value
	return nil
}

// Value returns the last written value of property, or def if none was written.
func (u *Unit) Value(property string, def float64) float64 {
	u.block.mu.Lock()
	defer u.block.mu.Unlock()
	if v, ok := u.props[property]; ok {
		return v
	}
	return def
}

// Block is a text split into units.
type Block struct {
	mu          sync.Mutex
	source      string
	granularity Granularity
	units       []*Unit
	torn        bool
}

// Split decomposes text into units in reading order. Char granularity yields
// one unit per grapheme cluster; word granularity yields alternating runs of
// word and whitespace. Newlines are space units that start a new line.
func Split(text string, g Granularity) *Block {
	b := &Block{source: text, granularity: g}

	line, col := 0, 0
	add := func(s string, space bool) {
		u := &Unit{
			Text:   s,
			Index:  len(b.units),
			Line:   line,
			Column: col,
			Space:  space,
			block:  b,
		}
		if s == "\n" {
			line++
			col = 0
		} else {
			u.Width = runewidth.StringWidth(s)
			col += u.Width
		}
		b.units = append(b.units, u)
	}

	if g == Char {
		gr := uniseg.NewGraphemes(text)
		for gr.Next() {
			s := gr.Str()
			add(s, isSpace(s))
		}
		return b
	}

	var run strings.Builder
	runSpace := false
	flush := func() {
		if run.Len() > 0 {
			add(run.String(), runSpace)
			run.Reset()
		}
	}
	for _, r := range text {
		if r == '\n' {
			flush()
			add("\n", true)
			continue
		}
		space := unicode.IsSpace(r)
		if space != runSpace {
			flush()
			runSpace = space
		}
		run.WriteRune(r)
	}
	flush()
	return b
}

func isSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return s != ""
}

// Units returns the block's units in reading order.
func (b *Block) Units() []*Unit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Unit(nil), b.units...)
}

// Granularity returns the split granularity.
func (b *Block) Granularity() Granularity {
	return b.granularity
}

// Lines returns the number of text lines in the block.
func (b *Block) Lines() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.units) == 0 {
		return 0
	}
	return b.units[len(b.units)-1].Line + 1
}

// TornDown reports whether Teardown was called.
func (b *Block) TornDown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.torn
}

// Teardown detaches every unit and returns the original text. Timelines still
// holding units see timeline.ErrStaleTarget on their next write.
func (b *Block) Teardown() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.torn {
		b.torn = true
		for _, u := range b.units {
			u.props = nil
		}
	}
	return Join(b.units)
}

// Join concatenates units back into text.
func Join(units []*Unit) string {
	var sb strings.Builder
	for _, u := range units {
		sb.WriteString(u.Text)
	}
	return sb.String()
}

// Reveal configures a staggered entrance of a block's units.
type Reveal struct {
	From     timeline.PropertySet
	To       timeline.PropertySet
	Duration float64 // per unit, seconds
	Stagger  float64 // delay between consecutive units, seconds
	Offset   float64 // first unit relative to the end of the preceding step
	Easing   timeline.EasingFunc
}

// AnimateReveal builds the stagger group for units. Whitespace units are not
// animated, so unit i of the group starts i*Stagger after the first visible unit.
func AnimateReveal(units []*Unit, r Reveal) []timeline.Step {
	targets := make([]timeline.Target, 0, len(units))
	for _, u := range units {
		if u.Space {
			continue
		}
		targets = append(targets, u)
	}
	return timeline.Stagger(targets, r.From, r.To, r.Duration, r.Easing, r.Offset, r.Stagger)
}
