package timeline

import (
	"bytes"
	"log"
	"math"
	"testing"
	"time"
)

// recorder is a Target that remembers every write.
type recorder struct {
	values map[string]float64
	writes int
	dead   bool
}

func newRecorder() *recorder {
	return &recorder{values: make(map[string]float64)}
}

func (r *recorder) Set(prop string, v float64) error {
	if r.dead {
		return ErrStaleTarget
	}
	r.values[prop] = v
	r.writes++
	return nil
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestEasingEndpoints(t *testing.T) {
	easings := map[string]EasingFunc{
		"linear":       EaseLinear,
		"power1.out":   EaseOutQuad,
		"power2.out":   EaseOutCubic,
		"power3.out":   EaseOutQuart,
		"power4.out":   EaseOutQuint,
		"power4.inOut": EaseInOutQuint,
		"expo.out":     EaseOutExpo,
		"back.out":     EaseBackOut,
	}
	for name, fn := range easings {
		t.Run(name, func(t *testing.T) {
			if fn(0) != 0 {
				t.Errorf("%s(0) = %v, expected 0", name, fn(0))
			}
			if fn(1) != 1 {
				t.Errorf("%s(1) = %v, expected 1", name, fn(1))
			}
		})
	}

	if v := EaseOutCubic(0.5); !near(v, 0.875) {
		t.Errorf("EaseOutCubic(0.5) = %v, expected 0.875", v)
	}
}

func TestBackOutOvershoots(t *testing.T) {
	peak := 0.0
	for i := 0; i <= 100; i++ {
		v := EaseBackOut(float64(i) / 100)
		if v > peak {
			peak = v
		}
	}
	if peak <= 1 {
		t.Errorf("expected back.out to overshoot 1, peak %.4f", peak)
	}
	t.Logf("back.out peak: %.4f", peak)
}

func TestParseEasing(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"none", false},
		{"power3.out", false},
		{"power4.inOut", false},
		{"back.out(1.7)", false},
		{"back.out(x)", true},
		{"bounce.out", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEasing(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseEasing(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}

	custom, _ := ParseEasing("back.out(1.7)")
	if !near(custom(0.5), BackOut(1.7)(0.5)) {
		t.Errorf("parsed overshoot does not match BackOut(1.7)")
	}
}

func TestStepScheduling(t *testing.T) {
	a, b, c := newRecorder(), newRecorder(), newRecorder()
	lg, _ := quietLogger()
	tl := New(lg,
		Step{Target: a, From: PropertySet{"y": 100}, To: PropertySet{"y": 0}, Duration: 1},
		Step{Target: b, From: PropertySet{"opacity": 0}, To: PropertySet{"opacity": 1}, Duration: 0.8, Offset: -0.5},
		Step{Target: c, From: PropertySet{"opacity": 0}, To: PropertySet{"opacity": 1}, Duration: 0.8, Offset: -0.3},
	)

	// a: [0,1], b: [0.5,1.3], c: [1.0,1.8]
	if !near(tl.Duration(), 1.8) {
		t.Fatalf("expected total 1.8s, got %v", tl.Duration())
	}

	if err := tl.Seek(0.5 / 1.8); err != nil {
		t.Fatal(err)
	}
	if !near(a.values["y"], 50) {
		t.Errorf("a.y at 0.5s = %v, expected 50", a.values["y"])
	}
	if !near(b.values["opacity"], 0) {
		t.Errorf("b.opacity at its start = %v, expected 0", b.values["opacity"])
	}
	if !near(c.values["opacity"], 0) {
		t.Errorf("c.opacity before its start should show from-value 0, got %v", c.values["opacity"])
	}
}

func TestPlayForwardAndReverse(t *testing.T) {
	target := newRecorder()
	lg, _ := quietLogger()
	tl := New(lg, Step{Target: target, From: PropertySet{"y": 100}, To: PropertySet{"y": 0}, Duration: 1})

	var completed []Direction
	tl.OnComplete(func(d Direction) { completed = append(completed, d) })

	tl.Play(Forward)
	if !near(target.values["y"], 100) {
		t.Fatalf("expected immediate render of from-value, got %v", target.values["y"])
	}
	tl.Advance(250 * time.Millisecond)
	if !near(target.values["y"], 75) {
		t.Errorf("y after 0.25s = %v, expected 75", target.values["y"])
	}
	tl.Advance(2 * time.Second)
	if !near(target.values["y"], 0) || tl.IsPlaying() {
		t.Errorf("expected finished at y=0, got y=%v playing=%v", target.values["y"], tl.IsPlaying())
	}

	tl.Play(Reverse)
	tl.Advance(500 * time.Millisecond)
	if !near(target.values["y"], 50) {
		t.Errorf("y halfway back = %v, expected 50", target.values["y"])
	}
	tl.Advance(time.Second)
	if !near(target.values["y"], 100) {
		t.Errorf("y after reverse = %v, expected 100", target.values["y"])
	}

	if len(completed) != 2 || completed[0] != Forward || completed[1] != Reverse {
		t.Errorf("unexpected completions: %v", completed)
	}
}

func TestFramesLandOnExactEndValues(t *testing.T) {
	tests := []struct {
		name   string
		easing EasingFunc
		from   float64
		to     float64
	}{
		{"power3.out", EaseOutQuart, 50, 0},
		{"back.out", EaseBackOut, 0, 1},
		{"expo.out", EaseOutExpo, 0.1, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newRecorder()
			lg, _ := quietLogger()
			tl := New(lg, Step{Target: target, From: PropertySet{"y": tt.from}, To: PropertySet{"y": tt.to}, Duration: 0.5, Easing: tt.easing})

			tl.Play(Forward)
			if target.values["y"] != tt.from {
				t.Fatalf("start y = %v, expected exactly %v", target.values["y"], tt.from)
			}
			for i := 0; i < 100 && tl.IsPlaying(); i++ {
				tl.Advance(16 * time.Millisecond)
			}
			if tl.IsPlaying() {
				t.Fatal("timeline still playing")
			}
			if target.values["y"] != tt.to {
				t.Errorf("end y = %v, expected exactly %v", target.values["y"], tt.to)
			}

			tl.Play(Reverse)
			for i := 0; i < 100 && tl.IsPlaying(); i++ {
				tl.Advance(16 * time.Millisecond)
			}
			if target.values["y"] != tt.from {
				t.Errorf("reversed y = %v, expected exactly %v", target.values["y"], tt.from)
			}
		})
	}
}

func TestSeekAppliesOnlyFinalValues(t *testing.T) {
	target := newRecorder()
	lg, _ := quietLogger()
	tl := New(lg, Step{Target: target, From: PropertySet{"x": 0}, To: PropertySet{"x": 10}, Duration: 2})

	tl.Seek(0.9)
	if target.writes != 1 {
		t.Errorf("expected exactly one write, got %d", target.writes)
	}
	if !near(target.values["x"], 9) {
		t.Errorf("x = %v, expected 9", target.values["x"])
	}

	// Same position again: no redundant write.
	tl.Seek(0.9)
	if target.writes != 1 {
		t.Errorf("expected redundant seek to be skipped, writes = %d", target.writes)
	}
}

func TestSharedPropertyLaterStepWins(t *testing.T) {
	target := newRecorder()
	lg, _ := quietLogger()
	tl := New(lg,
		Step{Target: target, From: PropertySet{"opacity": 0}, To: PropertySet{"opacity": 1}, Duration: 1},
		Step{Target: target, From: PropertySet{"opacity": 1}, To: PropertySet{"opacity": 0.5}, Duration: 1},
	)

	tl.Seek(0.25) // cursor 0.5s: only the first step has started
	if !near(target.values["opacity"], 0.5) {
		t.Errorf("opacity at 0.5s = %v, expected 0.5 from the first step", target.values["opacity"])
	}
	tl.Seek(1)
	if !near(target.values["opacity"], 0.5) {
		t.Errorf("opacity at end = %v, expected the second step's end value", target.values["opacity"])
	}
}

func TestStaleTargetDropsOnlyItsStep(t *testing.T) {
	alive, dead := newRecorder(), newRecorder()
	dead.dead = true
	lg, buf := quietLogger()
	tl := New(lg,
		Step{Target: dead, From: PropertySet{"y": 0}, To: PropertySet{"y": 1}, Duration: 1},
		Step{Target: alive, From: PropertySet{"y": 0}, To: PropertySet{"y": 1}, Duration: 1, Position: WithPrevious},
	)

	tl.Play(Forward)
	tl.Advance(2 * time.Second)

	if !near(alive.values["y"], 1) {
		t.Errorf("sibling step should finish, y = %v", alive.values["y"])
	}
	if buf.Len() == 0 {
		t.Errorf("expected the dropped step to be logged")
	}
	t.Logf("log: %s", buf.String())
}

func TestDestroyStopsWrites(t *testing.T) {
	target := newRecorder()
	lg, _ := quietLogger()
	tl := New(lg, Step{Target: target, From: PropertySet{"y": 0}, To: PropertySet{"y": 1}, Duration: 1})
	tl.Play(Forward)
	writes := target.writes

	tl.Destroy()
	tl.Destroy()
	tl.Advance(500 * time.Millisecond)

	if target.writes != writes {
		t.Errorf("destroyed timeline wrote %d more values", target.writes-writes)
	}
	if err := tl.Seek(1); err != ErrDestroyed {
		t.Errorf("Seek on destroyed timeline: got %v, expected ErrDestroyed", err)
	}
}

func TestStaggerOffsets(t *testing.T) {
	targets := []Target{newRecorder(), newRecorder(), newRecorder(), newRecorder()}
	lg, _ := quietLogger()
	lead := newRecorder()

	steps := []Step{{Target: lead, From: PropertySet{"y": 100}, To: PropertySet{"y": 0}, Duration: 1}}
	steps = append(steps, Stagger(targets, PropertySet{"opacity": 0}, PropertySet{"opacity": 1}, 0.8, EaseBackOut, -0.5, 0.02)...)
	tl := New(lg, steps...)

	for i := range targets {
		want := 0.5 + float64(i)*0.02
		if got := tl.steps[i+1].start; !near(got, want) {
			t.Errorf("unit %d starts at %v, expected %v", i, got, want)
		}
	}
	if want := 0.5 + 3*0.02 + 0.8; !near(tl.Duration(), want) {
		t.Errorf("duration %v, expected %v", tl.Duration(), want)
	}
}

func TestEngineUpdateAndFollower(t *testing.T) {
	lg, _ := quietLogger()
	e := NewEngine(lg)
	target := newRecorder()
	tl := e.Create(Step{Target: target, From: PropertySet{"y": 0}, To: PropertySet{"y": 100}, Duration: 1})

	start := time.Unix(0, 0)
	e.Update(start)
	tl.Play(Forward)
	e.Update(start.Add(500 * time.Millisecond))
	if !near(target.values["y"], 50) {
		t.Errorf("y after 0.5s wall clock = %v, expected 50", target.values["y"])
	}

	scrubbed := newRecorder()
	stl := e.Create(Step{Target: scrubbed, From: PropertySet{"x": 0}, To: PropertySet{"x": 1}, Duration: 1})
	f := e.Follow(stl, time.Second)
	f.SetTarget(0)
	f.SetTarget(1)
	if !f.Settling() {
		t.Fatalf("follower should lag behind its target")
	}
	prev := f.Current()
	for i := 0; i < 20; i++ {
		e.Step(100 * time.Millisecond)
		if f.Current() < prev {
			t.Fatalf("follower moved backwards: %v -> %v", prev, f.Current())
		}
		prev = f.Current()
	}
	if prev < 0.8 {
		t.Errorf("after 2s of 1s lag progress should be past 0.8, got %v", prev)
	}

	e.DestroyAll()
	if e.Len() != 0 || e.Active() {
		t.Errorf("engine should be empty after DestroyAll")
	}
}
