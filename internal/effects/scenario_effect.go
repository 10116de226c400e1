package effects

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/textsplit"
	"github.com/ivlev/folio/internal/timeline"
)

// ScenarioEffect builds a reveal from authored steps in the site file
type ScenarioEffect struct {
	Steps []config.StepSpec
}

// NewScenarioEffect creates a new ScenarioEffect
func NewScenarioEffect(steps []config.StepSpec) *ScenarioEffect {
	return &ScenarioEffect{Steps: steps}
}

// Build converts every step spec into timeline steps. Text targets are split
// with the granularity of the first step that animates them.
func (e *ScenarioEffect) Build(t Targets, p config.CardParams) (*Reveal, error) {
	// Гранулярность разбиения берём из первого шага для каждого текста,
	// иначе заголовок по символам, описание по словам
	titleSplit, descSplit := textsplit.Char, textsplit.Word
	seenTitle, seenDesc := false, false
	for i, st := range e.Steps {
		if st.Split == "" {
			continue
		}
		g, err := textsplit.ParseGranularity(st.Split)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		switch {
		case st.Target == "title" && !seenTitle:
			titleSplit, seenTitle = g, true
		case st.Target == "description" && !seenDesc:
			descSplit, seenDesc = g, true
		}
	}

	r := &Reveal{
		Title:       textsplit.Split(t.Title, titleSplit),
		Description: textsplit.Split(t.Description, descSplit),
	}

	for i, st := range e.Steps {
		ease, err := timeline.ParseEasing(st.Ease)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		offset, pos, err := ParsePosition(st.Position)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		from := timeline.PropertySet(st.From)
		to := timeline.PropertySet(st.To)

		// Шаг для карточки или картинки один, для текста это группа со сдвигом
		switch st.Target {
		case "card", "image":
			target := t.Card
			if st.Target == "image" {
				target = t.Image
			}
			r.Steps = append(r.Steps, timeline.Step{
				Target:   target,
				From:     from,
				To:       to,
				Duration: st.Duration,
				Easing:   ease,
				Offset:   offset,
				Position: pos,
			})
		case "title", "description":
			block := r.Title
			if st.Target == "description" {
				block = r.Description
			}
			group := textsplit.AnimateReveal(block.Units(), textsplit.Reveal{
				From:     from,
				To:       to,
				Duration: st.Duration,
				Stagger:  st.Stagger,
				Offset:   offset,
				Easing:   ease,
			})
			// Позиция относится к группе целиком, поэтому только у первого шага
			if len(group) > 0 {
				group[0].Position = pos
			}
			r.Steps = append(r.Steps, group...)
		default:
			return nil, fmt.Errorf("step %d: unknown target %q", i, st.Target)
		}
	}
	return r, nil
}

// ParsePosition reads a step position relative to the previous step:
// "" or "+=x" / "-=x" after its end, "<" or "<x" after its start.
func ParsePosition(s string) (float64, timeline.Position, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return 0, timeline.AfterPrevious, nil
	case strings.HasPrefix(s, "<"):
		if s == "<" {
			return 0, timeline.WithPrevious, nil
		}
		v, err := strconv.ParseFloat(strings.TrimPrefix(s[1:], "+"), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("bad position %q", s)
		}
		return v, timeline.WithPrevious, nil
	case strings.HasPrefix(s, "+="), strings.HasPrefix(s, "-="):
		v, err := strconv.ParseFloat(s[2:], 64)
		if err != nil {
			return 0, 0, fmt.Errorf("bad position %q", s)
		}
		if s[0] == '-' {
			v = -v
		}
		return v, timeline.AfterPrevious, nil
	}
	return 0, 0, fmt.Errorf("bad position %q", s)
}
