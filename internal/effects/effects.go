package effects

import (
	"fmt"

	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/textsplit"
	"github.com/ivlev/folio/internal/timeline"
)

// Targets are the animatable parts of a card handed to an effect.
type Targets struct {
	Card        timeline.Target
	Image       timeline.Target
	Title       string
	Description string
}

// Reveal is a card's entrance: the steps of its toggled timeline and the text
// blocks the steps animate. The card owns the blocks and tears them down on unmount.
type Reveal struct {
	Steps       []timeline.Step
	Title       *textsplit.Block
	Description *textsplit.Block
}

// Teardown restores both text blocks.
func (r *Reveal) Teardown() {
	if r.Title != nil {
		r.Title.Teardown()
	}
	if r.Description != nil {
		r.Description.Teardown()
	}
}

// Effect builds a card's reveal.
type Effect interface {
	Build(t Targets, p config.CardParams) (*Reveal, error)
}

// DefaultEffect is the service card entrance: the card rises, the title
// flips in character by character and the description fades in word by word.
type DefaultEffect struct{}

func (e *DefaultEffect) Build(t Targets, p config.CardParams) (*Reveal, error) {
	r := &Reveal{
		Title:       textsplit.Split(t.Title, textsplit.Char),
		Description: textsplit.Split(t.Description, textsplit.Word),
	}

	r.Steps = append(r.Steps, timeline.Step{
		Target:   t.Card,
		From:     timeline.PropertySet{"y": 100},
		To:       timeline.PropertySet{"y": 0},
		Duration: 1,
		Easing:   timeline.EaseOutQuart,
	})
	r.Steps = append(r.Steps, textsplit.AnimateReveal(r.Title.Units(), textsplit.Reveal{
		From:     timeline.PropertySet{"opacity": 0, "y": 50, "rotateX": -90},
		To:       timeline.PropertySet{"opacity": 1, "y": 0, "rotateX": 0},
		Duration: 0.8,
		Stagger:  0.02,
		Offset:   -0.5,
		Easing:   timeline.BackOut(1.7),
	})...)
	r.Steps = append(r.Steps, textsplit.AnimateReveal(r.Description.Units(), textsplit.Reveal{
		From:     timeline.PropertySet{"opacity": 0, "y": 20},
		To:       timeline.PropertySet{"opacity": 1, "y": 0},
		Duration: 0.8,
		Stagger:  0.01,
		Offset:   -0.3,
		Easing:   timeline.EaseOutCubic,
	})...)
	return r, nil
}

// RiseEffect lifts the whole card without splitting its text; project tiles use it.
type RiseEffect struct{}

func (e *RiseEffect) Build(t Targets, p config.CardParams) (*Reveal, error) {
	return &Reveal{
		Title:       textsplit.Split(t.Title, textsplit.Word),
		Description: textsplit.Split(t.Description, textsplit.Word),
		Steps: []timeline.Step{{
			Target:   t.Card,
			From:     timeline.PropertySet{"y": 100},
			To:       timeline.PropertySet{"y": 0},
			Duration: 1,
			Easing:   timeline.EaseInOutQuint,
		}},
	}, nil
}

// NoneEffect shows the card as is.
type NoneEffect struct{}

func (e *NoneEffect) Build(t Targets, p config.CardParams) (*Reveal, error) {
	return &Reveal{
		Title:       textsplit.Split(t.Title, textsplit.Word),
		Description: textsplit.Split(t.Description, textsplit.Word),
	}, nil
}

// New returns the effect registered under name. "scenario" reads its steps
// from the card's reveal block.
func New(name string, spec config.Reveal) (Effect, error) {
	switch name {
	case "", "service":
		return &DefaultEffect{}, nil
	case "rise":
		return &RiseEffect{}, nil
	case "none":
		return &NoneEffect{}, nil
	case "scenario":
		if len(spec.Steps) == 0 {
			return nil, fmt.Errorf("scenario effect has no steps")
		}
		return NewScenarioEffect(spec.Steps), nil
	default:
		return nil, fmt.Errorf("unknown reveal effect: %s", name)
	}
}

// ForLayout picks the effect for a card, defaulting by section layout.
func ForLayout(layout string, spec config.Reveal) (Effect, error) {
	name := spec.Effect
	if name == "" && layout == "projects" {
		name = "rise"
	}
	return New(name, spec)
}
