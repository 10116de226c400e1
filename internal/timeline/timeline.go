package timeline

import (
	"errors"
	"log"
	"math"
	"sort"
	"sync"
	"time"
)

var (
	// ErrStaleTarget is returned by a Target whose visual element no longer exists.
	// Steps writing to such a target are dropped; siblings keep running.
	ErrStaleTarget = errors.New("animation target destroyed")

	// ErrDestroyed is returned when operating on a destroyed timeline.
	ErrDestroyed = errors.New("timeline destroyed")
)

// writeEpsilon is the smallest change that is worth pushing to a target.
const writeEpsilon = 1e-6

// PropertySet maps an animatable property ("opacity", "y", "rotateX", ...) to a value.
type PropertySet map[string]float64

// Target receives interpolated property values. Implementations must be
// comparable (pointer types) because the timeline tracks writes per target.
type Target interface {
	Set(property string, value float64) error
}

// Direction is the playback direction of a timeline.
type Direction int

const (
	Forward Direction = 1
	Reverse Direction = -1
)

// Reverse flips the direction.
func (d Direction) Reverse() Direction {
	if d == Reverse {
		return Forward
	}
	return Reverse
}

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Position selects what a step's Offset is relative to.
type Position int

const (
	// AfterPrevious places the step Offset seconds after the previous step ends ("-=0.5" is Offset -0.5).
	AfterPrevious Position = iota
	// WithPrevious places the step Offset seconds after the previous step starts ("<").
	WithPrevious
)

// Step is a single interpolation of one target from From to To.
// Properties present in To but missing from From start at 0.
type Step struct {
	Target   Target
	From     PropertySet
	To       PropertySet
	Duration float64 // seconds
	Easing   EasingFunc
	Offset   float64
	Position Position
}

type scheduled struct {
	Step
	start float64
	props []string
}

func (s *scheduled) end() float64 {
	return s.start + math.Max(s.Duration, 0)
}

// progress returns the local linear progress of the step at cursor c.
func (s *scheduled) progress(c float64) float64 {
	if c >= s.end() {
		return 1
	}
	if s.Duration <= 0 {
		if c >= s.start {
			return 1
		}
		return 0
	}
	return Clamp01((c - s.start) / s.Duration)
}

type writeKey struct {
	target Target
	prop   string
}

type pendingWrite struct {
	key   writeKey
	value float64
	step  int
	edge  bool // step sits at its start or end
}

// Timeline is an ordered set of steps sharing one playback cursor in [0, Duration()].
// Create timelines through an Engine so they are advanced every frame.
type Timeline struct {
	mu         sync.Mutex
	steps      []scheduled
	owned      []map[string]bool // props an earlier step already declared on the same target
	dropped    []bool
	total      float64
	cursor     float64
	dir        Direction
	playing    bool
	destroyed  bool
	written    map[writeKey]float64
	onComplete func(Direction)
	logger     *log.Logger
}

// New builds a detached timeline. Most callers want Engine.Create instead.
func New(logger *log.Logger, steps ...Step) *Timeline {
	if logger == nil {
		logger = log.Default()
	}
	tl := &Timeline{
		dir:     Forward,
		written: make(map[writeKey]float64),
		logger:  logger,
	}
	tl.build(steps)
	return tl
}

func (tl *Timeline) build(steps []Step) {
	var prevStart, prevEnd float64
	declared := make(map[writeKey]bool)

	for i, st := range steps {
		base := prevEnd
		if st.Position == WithPrevious {
			base = prevStart
		}
		if i == 0 {
			base = 0
		}
		start := math.Max(0, base+st.Offset)
		if st.Easing == nil {
			st.Easing = EaseLinear
		}

		props := make([]string, 0, len(st.To))
		for p := range st.To {
			props = append(props, p)
		}
		sort.Strings(props)

		owned := make(map[string]bool)
		for _, p := range props {
			k := writeKey{target: st.Target, prop: p}
			if declared[k] {
				owned[p] = true
			}
			declared[k] = true
		}

		s := scheduled{Step: st, start: start, props: props}
		tl.steps = append(tl.steps, s)
		tl.owned = append(tl.owned, owned)
		tl.dropped = append(tl.dropped, false)

		prevStart = start
		prevEnd = s.end()
		if prevEnd > tl.total {
			tl.total = prevEnd
		}
	}
}

// Duration returns the total duration in seconds.
func (tl *Timeline) Duration() float64 {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.total
}

// Cursor returns the playback cursor in seconds.
func (tl *Timeline) Cursor() float64 {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.cursor
}

// Progress returns the cursor as a fraction of the total duration.
func (tl *Timeline) Progress() float64 {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.total <= 0 {
		return 0
	}
	return tl.cursor / tl.total
}

// Direction returns the current playback direction.
func (tl *Timeline) Direction() Direction {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.dir
}

// IsPlaying reports whether the cursor is moving.
func (tl *Timeline) IsPlaying() bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.playing
}

// Destroyed reports whether Destroy was called.
func (tl *Timeline) Destroyed() bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.destroyed
}

// OnComplete sets a callback invoked when playback reaches either end.
func (tl *Timeline) OnComplete(fn func(Direction)) {
	tl.mu.Lock()
	tl.onComplete = fn
	tl.mu.Unlock()
}

// Play starts moving the cursor toward the end (Forward) or the start (Reverse).
// The current state is rendered immediately so from-values show before the first frame.
func (tl *Timeline) Play(dir Direction) error {
	tl.mu.Lock()
	if tl.destroyed {
		tl.mu.Unlock()
		return ErrDestroyed
	}
	tl.dir = dir
	tl.playing = true
	tl.render()
	done := tl.atEnd()
	var cb func(Direction)
	if done {
		tl.playing = false
		cb = tl.onComplete
	}
	tl.mu.Unlock()

	if cb != nil {
		cb(dir)
	}
	return nil
}

// Reverse flips the direction of playback and keeps playing from the current cursor.
func (tl *Timeline) Reverse() error {
	return tl.Play(tl.Direction().Reverse())
}

// Pause stops the cursor where it is.
func (tl *Timeline) Pause() {
	tl.mu.Lock()
	tl.playing = false
	tl.mu.Unlock()
}

// Seek jumps the cursor to progress p (clamped to [0,1]) and applies only the
// values sampled there. Playback stops.
func (tl *Timeline) Seek(p float64) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.destroyed {
		return ErrDestroyed
	}
	tl.playing = false
	tl.cursor = Clamp01(p) * tl.total
	tl.render()
	return nil
}

// Advance moves a playing cursor by dt in the current direction.
func (tl *Timeline) Advance(dt time.Duration) {
	tl.mu.Lock()
	if tl.destroyed || !tl.playing {
		tl.mu.Unlock()
		return
	}
	tl.cursor += float64(tl.dir) * dt.Seconds()
	if tl.cursor < 0 {
		tl.cursor = 0
	} else if tl.cursor > tl.total {
		tl.cursor = tl.total
	}
	tl.render()

	var cb func(Direction)
	dir := tl.dir
	if tl.atEnd() {
		tl.playing = false
		cb = tl.onComplete
	}
	tl.mu.Unlock()

	if cb != nil {
		cb(dir)
	}
}

// Destroy detaches the timeline; no further values are written. Safe to call twice.
func (tl *Timeline) Destroy() {
	tl.mu.Lock()
	tl.destroyed = true
	tl.playing = false
	tl.onComplete = nil
	tl.mu.Unlock()
}

// Must be called with lock held
func (tl *Timeline) atEnd() bool {
	if tl.dir == Forward {
		return tl.cursor >= tl.total
	}
	return tl.cursor <= 0
}

// render samples every step at the cursor and writes changed values.
// Later-declared steps win for a shared target+property once they have started;
// before a step starts it only shows its from-values when no earlier step owns the property.
// Must be called with lock held
func (tl *Timeline) render() {
	var writes []pendingWrite
	index := make(map[writeKey]int)

	for i := range tl.steps {
		if tl.dropped[i] {
			continue
		}
		st := &tl.steps[i]
		started := tl.cursor >= st.start
		p := st.progress(tl.cursor)
		eased := st.Easing(p)
		edge := p <= 0 || p >= 1

		for _, prop := range st.props {
			if !started && tl.owned[i][prop] {
				continue
			}
			v := Lerp(st.From[prop], st.To[prop], eased)
			k := writeKey{target: st.Target, prop: prop}
			if j, ok := index[k]; ok {
				writes[j].value = v
				writes[j].step = i
				writes[j].edge = edge
				continue
			}
			index[k] = len(writes)
			writes = append(writes, pendingWrite{key: k, value: v, step: i, edge: edge})
		}
	}

	for _, w := range writes {
		if tl.dropped[w.step] {
			continue
		}
		// endpoint values are always pushed so a step lands exactly on From/To
		if last, ok := tl.written[w.key]; ok {
			if last == w.value || (!w.edge && math.Abs(last-w.value) < writeEpsilon) {
				continue
			}
		}
		if w.key.target == nil {
			tl.drop(w.step, ErrStaleTarget)
			continue
		}
		if err := w.key.target.Set(w.key.prop, w.value); err != nil {
			tl.drop(w.step, err)
			continue
		}
		tl.written[w.key] = w.value
	}
}

// Must be called with lock held
func (tl *Timeline) drop(step int, err error) {
	tl.dropped[step] = true
	if errors.Is(err, ErrStaleTarget) {
		tl.logger.Printf("[!] timeline: step %d dropped, target is gone", step)
		return
	}
	tl.logger.Printf("[!] timeline: step %d dropped: %v", step, err)
}

// Stagger builds one step per target with identical from/to values, each unit
// starting each seconds after the previous one. The first unit is placed offset
// seconds after the preceding step in the timeline ends.
func Stagger(targets []Target, from, to PropertySet, duration float64, easing EasingFunc, offset, each float64) []Step {
	steps := make([]Step, 0, len(targets))
	for i, t := range targets {
		st := Step{
			Target:   t,
			From:     from,
			To:       to,
			Duration: duration,
			Easing:   easing,
		}
		if i == 0 {
			st.Offset = offset
			st.Position = AfterPrevious
		} else {
			st.Offset = each
			st.Position = WithPrevious
		}
		steps = append(steps, st)
	}
	return steps
}
