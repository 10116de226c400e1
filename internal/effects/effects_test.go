package effects

import (
	"math"
	"testing"

	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/timeline"
)

type box struct{ values map[string]float64 }

func newBox() *box { return &box{values: make(map[string]float64)} }

func (b *box) Set(prop string, v float64) error {
	b.values[prop] = v
	return nil
}

func TestDefaultEffectTimings(t *testing.T) {
	card := newBox()
	r, err := (&DefaultEffect{}).Build(Targets{Card: card, Title: "Full Stack", Description: "End to end"}, config.CardParams{})
	if err != nil {
		t.Fatal(err)
	}

	// 1 card step + 9 visible title chars + 3 description words
	if len(r.Steps) != 13 {
		t.Fatalf("expected 13 steps, got %d", len(r.Steps))
	}

	tl := timeline.New(nil, r.Steps...)
	// title starts at 0.5, last char at 0.5+8*0.02, ends +0.8 = 1.46;
	// description starts at 1.16, last word at 1.18, ends 1.98
	if d := tl.Duration(); math.Abs(d-1.98) > 1e-9 {
		t.Errorf("duration = %v, expected 1.98", d)
	}

	if err := tl.Seek(0); err != nil {
		t.Fatal(err)
	}
	if card.values["y"] != 100 {
		t.Errorf("card y at start = %v, expected 100", card.values["y"])
	}
	first := r.Title.Units()[0]
	if first.Value("rotateX", 0) != -90 || first.Value("opacity", 1) != 0 {
		t.Errorf("first title char not at its from-values")
	}

	tl.Seek(1)
	if card.values["y"] != 0 {
		t.Errorf("card y at end = %v", card.values["y"])
	}
	for _, u := range r.Description.Units() {
		if !u.Space && u.Value("opacity", 0) != 1 {
			t.Errorf("word %q not revealed", u.Text)
		}
	}

	r.Teardown()
	if !r.Title.TornDown() || !r.Description.TornDown() {
		t.Error("Teardown should restore both blocks")
	}
}

func TestScenarioEffect(t *testing.T) {
	card, image := newBox(), newBox()
	steps := []config.StepSpec{
		{Target: "card", From: map[string]float64{"y": 40}, To: map[string]float64{"y": 0}, Duration: 1, Ease: "power3.out"},
		{Target: "title", Split: "words", From: map[string]float64{"opacity": 0}, To: map[string]float64{"opacity": 1}, Duration: 0.5, Position: "-=0.5", Stagger: 0.1},
		{Target: "image", To: map[string]float64{"opacity": 1}, Duration: 0.3, Position: "<"},
	}
	r, err := NewScenarioEffect(steps).Build(Targets{Card: card, Image: image, Title: "Two words", Description: "x"}, config.CardParams{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := len(r.Title.Units()); got != 3 {
		t.Errorf("title split by words should give 3 units, got %d", got)
	}
	if len(r.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(r.Steps))
	}

	// title words at 0.5 and 0.6; image starts with the last word at 0.6
	tl := timeline.New(nil, r.Steps...)
	if d := tl.Duration(); math.Abs(d-1.1) > 1e-9 {
		t.Errorf("duration = %v, expected 1.1", d)
	}
	tl.Seek(1)
	if image.values["opacity"] != 1 {
		t.Errorf("image opacity = %v", image.values["opacity"])
	}
}

func TestScenarioEffectErrors(t *testing.T) {
	tests := []struct {
		name string
		step config.StepSpec
	}{
		{"bad ease", config.StepSpec{Target: "card", To: map[string]float64{"y": 0}, Ease: "wobble"}},
		{"bad position", config.StepSpec{Target: "card", To: map[string]float64{"y": 0}, Position: "later"}},
		{"bad target", config.StepSpec{Target: "footer", To: map[string]float64{"y": 0}}},
		{"bad split", config.StepSpec{Target: "title", Split: "lines", To: map[string]float64{"y": 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScenarioEffect([]config.StepSpec{tt.step}).Build(Targets{Card: newBox()}, config.CardParams{})
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in     string
		offset float64
		pos    timeline.Position
		err    bool
	}{
		{"", 0, timeline.AfterPrevious, false},
		{"-=0.5", -0.5, timeline.AfterPrevious, false},
		{"+=1", 1, timeline.AfterPrevious, false},
		{"<", 0, timeline.WithPrevious, false},
		{"<0.2", 0.2, timeline.WithPrevious, false},
		{"<+0.3", 0.3, timeline.WithPrevious, false},
		{"=1", 0, 0, true},
	}
	for _, tt := range tests {
		off, pos, err := ParsePosition(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParsePosition(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.err && (math.Abs(off-tt.offset) > 1e-9 || pos != tt.pos) {
			t.Errorf("ParsePosition(%q) = %v, %v", tt.in, off, pos)
		}
	}
}

func TestRegistry(t *testing.T) {
	tests := []struct {
		name    string
		layout  string
		spec    config.Reveal
		want    string
		wantErr bool
	}{
		{"services default", "services", config.Reveal{}, "*effects.DefaultEffect", false},
		{"projects default", "projects", config.Reveal{}, "*effects.RiseEffect", false},
		{"explicit none", "projects", config.Reveal{Effect: "none"}, "*effects.NoneEffect", false},
		{"scenario without steps", "services", config.Reveal{Effect: "scenario"}, "", true},
		{"unknown", "services", config.Reveal{Effect: "explode"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff, err := ForLayout(tt.layout, tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if got := typeName(eff); got != tt.want {
					t.Errorf("effect = %s, expected %s", got, tt.want)
				}
			}
		})
	}
}

func typeName(e Effect) string {
	switch e.(type) {
	case *DefaultEffect:
		return "*effects.DefaultEffect"
	case *RiseEffect:
		return "*effects.RiseEffect"
	case *NoneEffect:
		return "*effects.NoneEffect"
	case *ScenarioEffect:
		return "*effects.ScenarioEffect"
	}
	return "?"
}
